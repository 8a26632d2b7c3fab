package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv(TokenEnv, "")
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if !filepath.IsAbs(cfg.Global.StoragePath) {
		t.Fatalf("StoragePath 应被解析为绝对路径: %s", cfg.Global.StoragePath)
	}
	if cfg.Global.ArtifactExt != ".gguf" {
		t.Fatalf("ArtifactExt 默认应为 .gguf，得到 %s", cfg.Global.ArtifactExt)
	}
	if cfg.Global.Endpoint != "https://huggingface.co" {
		t.Fatalf("Endpoint 默认值错误: %s", cfg.Global.Endpoint)
	}
	if cfg.Global.Revision != "main" {
		t.Fatalf("Revision 默认值错误: %s", cfg.Global.Revision)
	}
	if cfg.Global.UpstreamTimeout.DurationValue() != 10*time.Minute {
		t.Fatalf("UpstreamTimeout 应被解析为 10m，得到 %s", cfg.Global.UpstreamTimeout.DurationValue())
	}
	if len(cfg.Models) != 2 {
		t.Fatalf("期望 2 个模型条目，得到 %d", len(cfg.Models))
	}
	if cfg.Models[0].Repo == "" || cfg.Models[0].File == "" || cfg.Models[1].Repo != "" {
		t.Fatalf("模型坐标解析不符合预期: %+v", cfg.Models)
	}
	if cfg.Global.AuthMode() != "anonymous" {
		t.Fatalf("未配置 Token 时应为 anonymous")
	}
}

func TestLoadTokenFromEnv(t *testing.T) {
	t.Setenv(TokenEnv, "hf_secret")
	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.Token != "hf_secret" {
		t.Fatalf("Token 应来自 %s，得到 %q", TokenEnv, cfg.Global.Token)
	}
	if cfg.Global.AuthMode() != "credentialed" {
		t.Fatalf("配置 Token 时应为 credentialed")
	}
}

func TestValidateRejectsModelWithoutFile(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateArtifactExt(t *testing.T) {
	testCases := []struct {
		name      string
		ext       string
		shouldErr bool
	}{
		{"gguf ok", ".gguf", false},
		{"bin ok", ".bin", false},
		{"missing dot", "gguf", true},
		{"dot only", ".", true},
		{"empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Global.ArtifactExt = tc.ext
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for ext %q", tc.ext)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for ext %q: %v", tc.ext, err)
			}
		})
	}
}

func TestValidateEndpointScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Global.Endpoint = "ftp://models.local"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("非 http/https Endpoint 应报错")
	}
}

func TestValidateRejectsDuplicateModels(t *testing.T) {
	cfg := validConfig()
	cfg.Models = append(cfg.Models, cfg.Models[0])
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("重复模型名应报错")
	}
	fieldErr, ok := err.(FieldError)
	if !ok || fieldErr.Field != "Model[phi-2.gguf].Name" {
		t.Fatalf("期望 FieldError 指向重复字段，得到 %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:      5000,
			StoragePath:     "./models",
			ArtifactExt:     ".gguf",
			Source:          "huggingface",
			Endpoint:        "https://huggingface.co",
			Revision:        "main",
			UpstreamTimeout: Duration(time.Minute),
		},
		Models: []ModelConfig{
			{
				Name: "phi-2.gguf",
				Repo: "TheBloke/phi-2-GGUF",
				File: "phi-2.Q4_K_M.gguf",
			},
		},
	}
}
