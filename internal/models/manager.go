package models

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/model-hub/internal/cache"
	"github.com/any-hub/model-hub/internal/fetch"
	"github.com/any-hub/model-hub/internal/logging"
	"github.com/any-hub/model-hub/internal/metrics"
)

// DefaultArtifactExt 为 List 默认过滤的模型文件扩展名。
const DefaultArtifactExt = ".gguf"

const msgUnavailable = "download source is not available: set Source to a registered kind (see /-/sources) to enable downloads"

// Reference 描述一次模型请求：Name 为本地缓存键，Repo/File 为可选的远端坐标，
// 只在未命中时使用。
type Reference struct {
	Name string `json:"name"`
	Repo string `json:"repo,omitempty"`
	File string `json:"file,omitempty"`
}

// HasSource 表示是否同时提供了远端仓库与文件名。
func (r Reference) HasSource() bool {
	return r.Repo != "" && r.File != ""
}

// Options 控制 Manager 的可选行为。
type Options struct {
	// Logger 接收所有诊断输出；为空时丢弃。
	Logger logrus.FieldLogger
	// ArtifactExt 为 List 过滤的扩展名，默认 DefaultArtifactExt。
	ArtifactExt string
}

// Manager 管理本地模型缓存目录，并在缺失时委托 Fetcher 下载。
type Manager struct {
	store   cache.Store
	fetcher fetch.Fetcher
	logger  logrus.FieldLogger
	ext     string
}

// NewManager 创建（或复用）root 目录并返回 Manager。fetcher 可以为空，
// 此时所有下载请求都按“下载能力不可用”处理。返回的错误为初始化失败。
func NewManager(root string, fetcher fetch.Fetcher, opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ext := opts.ArtifactExt
	if ext == "" {
		ext = DefaultArtifactExt
	}

	store, err := cache.NewStore(root)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"action": "cache_init",
		"root":   store.Root(),
	}).Infof("model cache initialized with directory: %s", store.Root())

	return &Manager{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
		ext:     ext,
	}, nil
}

// Root 返回缓存根目录的绝对路径。
func (m *Manager) Root() string {
	return m.store.Root()
}

// Ensure 返回 ref 对应的本地文件路径，必要时先下载。第二个返回值为 false 表示
// 模型不可用；任何下载失败都不会以 error 形式返回，由调用方决定后续处理。
//
// 命中判断先查 Root/Name；若 File 与 Name 不同，再查 Root/File，避免以不同
// 逻辑名重复下载同一文件；File 逃逸出根目录时跳过这一步。下载成功后以
// Root/File 作为校验路径。
func (m *Manager) Ensure(ctx context.Context, ref Reference) (string, bool) {
	fields := logging.ArtifactFields(ref.Name, ref.Repo, ref.File)
	fields["action"] = "ensure"
	log := m.logger.WithFields(fields)

	if path, ok := m.lookup(ref.Name); ok {
		metrics.CacheHits.Inc()
		log.WithField("path", path).Infof("model found at %s", path)
		return path, true
	}
	if ref.File != "" && ref.File != ref.Name {
		if path, ok := m.lookupFile(ref.File); ok {
			metrics.CacheHits.Inc()
			log.WithField("path", path).Infof("model found at %s", path)
			return path, true
		}
	}
	metrics.CacheMisses.Inc()

	if !ref.HasSource() {
		log.Warnf("model not found and no download info provided: %s", ref.Name)
		return "", false
	}

	return m.download(ctx, ref, log)
}

func (m *Manager) download(ctx context.Context, ref Reference, log logrus.FieldLogger) (string, bool) {
	log = log.WithField("action", "fetch")
	if m.fetcher == nil {
		metrics.FetchTotal.WithLabelValues(metrics.FetchResultUnavailable).Inc()
		log.Error(msgUnavailable)
		return "", false
	}

	log.Infof("downloading %s from %s", ref.File, ref.Repo)
	log.Info("this may take several minutes for large models")

	started := time.Now()
	reported, err := m.fetcher.Fetch(ctx, ref.Repo, ref.File, m.store.Root())
	metrics.FetchDuration.Observe(time.Since(started).Seconds())
	log = log.WithField("elapsed_ms", time.Since(started).Milliseconds())

	if err != nil {
		if errors.Is(err, fetch.ErrUnavailable) {
			metrics.FetchTotal.WithLabelValues(metrics.FetchResultUnavailable).Inc()
			log.WithError(err).Error(msgUnavailable)
			return "", false
		}
		metrics.FetchTotal.WithLabelValues(metrics.FetchResultError).Inc()
		log.WithError(err).Errorf("error downloading model: %v", err)
		log.Warn("please check your internet connection and repository credentials")
		return "", false
	}

	if path, ok := m.lookupFile(ref.File); ok {
		metrics.FetchTotal.WithLabelValues(metrics.FetchResultSuccess).Inc()
		log.WithField("path", path).Infof("model downloaded successfully to %s", path)
		return path, true
	}

	log.WithField("reported_path", reported).Warn("model download completed but file not found at expected location")
	if reported != "" && isFile(reported) {
		metrics.FetchTotal.WithLabelValues(metrics.FetchResultFallback).Inc()
		return reported, true
	}
	metrics.FetchTotal.WithLabelValues(metrics.FetchResultMissing).Inc()
	return "", false
}

// List 非递归列出缓存目录中扩展名匹配的文件名（不含路径），顺序由目录枚举决定。
func (m *Manager) List() []string {
	names, err := m.store.List(m.ext)
	if err != nil {
		fields := logrus.Fields{"action": "list", "root": m.store.Root()}
		if errors.Is(err, cache.ErrNotFound) {
			m.logger.WithFields(fields).Warnf("models directory does not exist: %s", m.store.Root())
		} else {
			m.logger.WithFields(fields).WithError(err).Warn("list models failed")
		}
		return []string{}
	}
	return names
}

func (m *Manager) lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	entry, err := m.store.Stat(name)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			m.logger.WithError(err).WithField("model", name).Debug("stat cached model failed")
		}
		return "", false
	}
	return entry.FilePath, true
}

// lookupFile 与 lookup 相同，但远端文件名逃逸出根目录时直接视为未命中。
func (m *Manager) lookupFile(file string) (string, bool) {
	if _, err := cache.ValidName(file); err != nil {
		return "", false
	}
	return m.lookup(file)
}

// isFile 仅以文件是否存在为准，不校验大小或内容。
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
