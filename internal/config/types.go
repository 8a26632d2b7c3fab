package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述全局运行时行为：日志、缓存目录以及远端模型仓库。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	StoragePath     string   `mapstructure:"StoragePath"`
	ArtifactExt     string   `mapstructure:"ArtifactExt"`
	Source          string   `mapstructure:"Source"`
	Endpoint        string   `mapstructure:"Endpoint"`
	Revision        string   `mapstructure:"Revision"`
	Token           string   `mapstructure:"Token"`
	Proxy           string   `mapstructure:"Proxy"`
	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
}

// ModelConfig 将逻辑模型名映射到远端仓库坐标；Repo/File 同时为空表示仅使用本地文件。
type ModelConfig struct {
	Name string `mapstructure:"Name"`
	Repo string `mapstructure:"Repo"`
	File string `mapstructure:"File"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig  `mapstructure:",squash"`
	Models []ModelConfig `mapstructure:"Model"`
}

// AuthMode 输出 `credentialed` 或 `anonymous`，供日志字段使用。
func (g GlobalConfig) AuthMode() string {
	if g.Token != "" {
		return "credentialed"
	}
	return "anonymous"
}

// ModelNames 返回清单中的逻辑模型名，供启动日志使用。
func ModelNames(models []ModelConfig) []string {
	if len(models) == 0 {
		return nil
	}
	result := make([]string, len(models))
	for i, m := range models {
		result[i] = m.Name
	}
	return result
}
