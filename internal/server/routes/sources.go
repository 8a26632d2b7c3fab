package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/model-hub/internal/fetch"
)

// RegisterSourceRoutes 暴露 /-/sources 诊断接口，列出已编译进来的下载 source
// 以及当前配置选用的 source 是否可用。
func RegisterSourceRoutes(app *fiber.App, active string) {
	if app == nil {
		return
	}

	app.Get("/-/sources", func(c fiber.Ctx) error {
		return c.JSON(encodeSources(fetch.Kinds(), active))
	})
}

type sourcesPayload struct {
	Registered []string `json:"registered"`
	Active     string   `json:"active"`
	Available  bool     `json:"available"`
}

func encodeSources(kinds []string, active string) sourcesPayload {
	payload := sourcesPayload{
		Registered: append([]string{}, kinds...),
		Active:     active,
	}
	_, payload.Available = fetch.Resolve(active)
	return payload
}
