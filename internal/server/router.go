package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/model-hub/internal/cache"
	"github.com/any-hub/model-hub/internal/models"
)

// Resolver describes the model cache operations the HTTP surface needs. It
// allows injecting fakes during tests.
type Resolver interface {
	Ensure(ctx context.Context, ref models.Reference) (string, bool)
	List() []string
	Root() string
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	Resolver   Resolver
	Catalog    *Catalog
	ListenPort int
}

const contextKeyRequestID = "_modelhub_request_id"

// NewApp builds a Fiber application exposing the model cache and metrics.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/-/models", listHandler(opts))
	app.Get("/-/models/*", ensureHandler(opts))

	return app, nil
}

// requestIDMiddleware 为每个请求生成 ID，写入 Locals 与响应头。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func listHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"root":    opts.Resolver.Root(),
			"models":  opts.Resolver.List(),
			"catalog": opts.Catalog.List(),
		})
	}
}

// ensureHandler 按清单补全远端坐标后调用 Ensure；query 中的 repo/file 可覆盖清单。
// name、repo、file 均须是缓存根目录内的相对路径，否则返回 400。
func ensureHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		started := time.Now()
		name := strings.TrimPrefix(c.Params("*"), "/")
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "model_name_required"})
		}

		repo, file := c.Query("repo"), c.Query("file")
		for _, value := range []string{name, repo, file} {
			if value == "" {
				continue
			}
			if _, err := cache.ValidName(value); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid_model_name",
					"model": name,
				})
			}
		}

		ref := opts.Catalog.Resolve(name, repo, file)

		ctx := c.UserContext()
		if ctx == nil {
			ctx = context.Background()
		}
		path, ok := opts.Resolver.Ensure(ctx, ref)

		fields := logrus.Fields{
			"action":     "http_ensure",
			"model":      ref.Name,
			"available":  ok,
			"elapsed_ms": time.Since(started).Milliseconds(),
		}
		if reqID := RequestID(c); reqID != "" {
			fields["request_id"] = reqID
		}
		opts.Logger.WithFields(fields).Info("ensure_complete")

		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "model_unavailable",
				"model": ref.Name,
			})
		}
		return c.JSON(fiber.Map{
			"name": ref.Name,
			"path": path,
		})
	}
}

// RequestID returns the request identifier stored by the request id middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
