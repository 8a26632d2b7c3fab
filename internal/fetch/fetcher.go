package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Fetcher 下载 repo 中的 file 到 destDir，返回落盘后的本地路径。
type Fetcher interface {
	Fetch(ctx context.Context, repo, file, destDir string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, repo, file, destDir string) (string, error)

// Fetch makes FetcherFunc satisfy Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, repo, file, destDir string) (string, error) {
	return f(ctx, repo, file, destDir)
}

// ErrUnavailable 表示下载能力本身不可用（未注册的 source 或未注入 Fetcher）。
var ErrUnavailable = errors.New("fetch source unavailable")

// Error 描述一次已发起但失败的下载：网络错误、鉴权失败或远端不存在。
type Error struct {
	Repo   string
	File   string
	Status int
	Err    error
}

func (e *Error) Error() string {
	target := e.Repo + "/" + e.File
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: upstream status %d %s", target, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("fetch %s: %v", target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options 汇总构建 source 所需的参数，来自全局配置。
type Options struct {
	Endpoint  string
	Revision  string
	Token     string
	Proxy     *url.URL
	Timeout   time.Duration
	UserAgent string

	// Client 非空时直接复用，忽略 Proxy/Timeout。
	Client *http.Client
}
