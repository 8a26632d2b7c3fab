package server

import (
	"errors"
	"fmt"
	"sort"

	"github.com/any-hub/model-hub/internal/config"
	"github.com/any-hub/model-hub/internal/models"
)

// Catalog 将配置中的 [[Model]] 清单转换为逻辑名到远端坐标的映射，
// 供 CLI 与 HTTP 入口在调用 Ensure 前补全 Repo/File。
type Catalog struct {
	refs map[string]models.Reference
}

// NewCatalog 根据配置构建清单。调用方应在启动阶段创建一次并复用。
func NewCatalog(cfg *config.Config) (*Catalog, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	catalog := &Catalog{refs: make(map[string]models.Reference, len(cfg.Models))}
	for _, m := range cfg.Models {
		if m.Name == "" {
			return nil, errors.New("model name is required")
		}
		if _, exists := catalog.refs[m.Name]; exists {
			return nil, fmt.Errorf("model %s is declared twice", m.Name)
		}
		catalog.refs[m.Name] = models.Reference{Name: m.Name, Repo: m.Repo, File: m.File}
	}
	return catalog, nil
}

// Lookup 返回 name 对应的引用；清单中不存在时只带 Name，不含远端坐标。
func (c *Catalog) Lookup(name string) (models.Reference, bool) {
	if c == nil {
		return models.Reference{Name: name}, false
	}
	ref, ok := c.refs[name]
	if !ok {
		return models.Reference{Name: name}, false
	}
	return ref, true
}

// Resolve 在清单结果上应用显式的 repo/file 覆盖，两者需同时提供才生效。
func (c *Catalog) Resolve(name, repo, file string) models.Reference {
	ref, _ := c.Lookup(name)
	if repo != "" && file != "" {
		ref.Repo = repo
		ref.File = file
	}
	return ref
}

// List 返回按名称排序的清单条目；未配置时返回空切片。
func (c *Catalog) List() []models.Reference {
	if c == nil || len(c.refs) == 0 {
		return []models.Reference{}
	}
	result := make([]models.Reference, 0, len(c.refs))
	for _, ref := range c.refs {
		result = append(result, ref)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
