package config

import "testing"

func TestLoadFailsWithMissingFile(t *testing.T) {
	if _, err := Load(testConfigPath(t, "does-not-exist.toml")); err == nil {
		t.Fatalf("缺失配置文件应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
StoragePath = "./models"
UpstreamTimeout = "boom"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAcceptsIntegerSeconds(t *testing.T) {
	cfg := `
StoragePath = "./models"
UpstreamTimeout = 90
ArtifactExt = ".bin"
Endpoint = "http://mirror.local/"
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.UpstreamTimeout.DurationValue().Seconds() != 90 {
		t.Fatalf("整数秒应被解析为 90s，得到 %s", loaded.Global.UpstreamTimeout.DurationValue())
	}
	if loaded.Global.Endpoint != "http://mirror.local" {
		t.Fatalf("Endpoint 末尾斜杠应被移除: %s", loaded.Global.Endpoint)
	}
	if loaded.Global.ArtifactExt != ".bin" {
		t.Fatalf("ArtifactExt 应为 .bin: %s", loaded.Global.ArtifactExt)
	}
	if len(loaded.Models) != 0 {
		t.Fatalf("未配置模型时清单应为空")
	}
}
