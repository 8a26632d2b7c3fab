package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRoot 为未配置 StoragePath 时使用的缓存目录（相对工作目录）。
const DefaultRoot = "models"

// NewStore 以 basePath 为根目录构建磁盘缓存，目录及缺失的父目录会被立即创建，
// 目录已存在时直接复用。返回的错误视为初始化失败，调用方不应尝试恢复。
func NewStore(basePath string) (Store, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = DefaultRoot
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}

	return &fileStore{basePath: abs}, nil
}

// fileStore 不做任何加锁：并发拉取同一模型时以最后一次 rename 为准。
type fileStore struct {
	basePath string
}

func (s *fileStore) Root() string {
	return s.basePath
}

func (s *fileStore) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

func (s *fileStore) Stat(name string) (*Entry, error) {
	filePath := s.Path(name)
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	return &Entry{
		Name:      name,
		FilePath:  filePath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

func (s *fileStore) List(ext string) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *fileStore) Put(ctx context.Context, name string, body io.Reader) (*Entry, error) {
	filePath, err := s.writePath(name)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(filePath), ".download-*")
	if err != nil {
		return nil, err
	}
	tempName := tempFile.Name()

	written, err := copyWithContext(ctx, tempFile, body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return nil, err
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Name:      name,
		FilePath:  filePath,
		SizeBytes: written,
		ModTime:   info.ModTime(),
	}, nil
}

// ValidName 校验 name 是否为根目录内的相对路径：拒绝空名、绝对路径以及
// 清理后为 `..` 或以 `../` 开头的名字。返回清理后的相对路径。
func ValidName(name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	if rel == "." || rel == "" || filepath.IsAbs(rel) {
		return "", ErrInvalidName
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidName
	}
	return rel, nil
}

// writePath 只在写入侧拒绝逃逸出根目录的名字；读取侧按原样拼接。
func (s *fileStore) writePath(name string) (string, error) {
	rel, err := ValidName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, rel), nil
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 256*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
