package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/any-hub/model-hub/internal/config"
)

func TestConfigureDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
}

func TestInitLoggerFallbackWhenDirUnavailable(t *testing.T) {
	dir := t.TempDir()
	occupied := filepath.Join(dir, "occupied")
	if err := os.WriteFile(occupied, nil, 0o644); err != nil {
		t.Fatalf("创建占位文件失败: %v", err)
	}

	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(occupied, "sub", "model-hub.log"),
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "model-hub.log")
	cfg := config.GlobalConfig{LogLevel: "debug", LogFilePath: path}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestNewWritesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf)
	logger.WithFields(ArtifactFields("model.gguf", "org/repo", "model.gguf")).Info("cache_hit")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("日志应为 JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "cache_hit" || entry["model"] != "model.gguf" {
		t.Fatalf("日志字段缺失: %v", entry)
	}
}

func TestArtifactFieldsOmitsEmptyCoordinates(t *testing.T) {
	fields := ArtifactFields("model.bin", "", "")
	if _, ok := fields["repo"]; ok {
		t.Fatalf("未提供 repo 时不应输出该字段")
	}
	fields = ArtifactFields("model.bin", "org/repo", "model.bin")
	if fields["repo"] != "org/repo" || fields["file"] != "model.bin" {
		t.Fatalf("远端坐标字段缺失: %v", fields)
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}
