package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if strings.TrimSpace(g.StoragePath) == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if !strings.HasPrefix(g.ArtifactExt, ".") || len(g.ArtifactExt) < 2 {
		return newFieldError("Global.ArtifactExt", "必须以 . 开头，例如 .gguf")
	}
	if g.Source == "" {
		return newFieldError("Global.Source", "不能为空")
	}
	if err := validateURL(g.Endpoint); err != nil {
		return fmt.Errorf("Global.Endpoint: %w", err)
	}
	if g.Proxy != "" {
		if err := validateURL(g.Proxy); err != nil {
			return fmt.Errorf("Global.Proxy: %w", err)
		}
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}

	seenNames := map[string]struct{}{}
	for i := range c.Models {
		model := &c.Models[i]
		if model.Name == "" {
			return newFieldError("Model[].Name", "不能为空")
		}
		if _, exists := seenNames[model.Name]; exists {
			return newFieldError(modelField(model.Name, "Name"), "重复")
		}
		seenNames[model.Name] = struct{}{}

		if (model.Repo == "") != (model.File == "") {
			return newFieldError(modelField(model.Name, "Repo/File"), "必须同时提供或同时留空")
		}
	}

	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("缺少地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}
