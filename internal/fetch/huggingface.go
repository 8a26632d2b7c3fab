package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/any-hub/model-hub/internal/cache"
	"github.com/any-hub/model-hub/internal/metrics"
)

const (
	// KindHuggingFace 为内置的 Hugging Face Hub source。
	KindHuggingFace = "huggingface"

	defaultEndpoint = "https://huggingface.co"
	defaultRevision = "main"
)

func init() {
	MustRegister(KindHuggingFace, func(opts Options) (Fetcher, error) {
		f, err := NewHTTPFetcher(opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// HTTPFetcher 通过 {Endpoint}/{repo}/resolve/{revision}/{file} 下载单个文件，
// 与 Hugging Face Hub 及其镜像的下载协议一致。
type HTTPFetcher struct {
	endpoint  *url.URL
	revision  string
	token     string
	userAgent string
	client    *http.Client
}

// NewHTTPFetcher 校验 Endpoint 并构建 HTTPFetcher。
func NewHTTPFetcher(opts Options) (*HTTPFetcher, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if raw == "" {
		raw = defaultEndpoint
	}
	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("endpoint must be http/https: %s", raw)
	}

	revision := strings.TrimSpace(opts.Revision)
	if revision == "" {
		revision = defaultRevision
	}

	client := opts.Client
	if client == nil {
		client = NewClient(opts.Timeout, opts.Proxy)
	}

	return &HTTPFetcher{
		endpoint:  endpoint,
		revision:  revision,
		token:     opts.Token,
		userAgent: opts.UserAgent,
		client:    client,
	}, nil
}

// Fetch 单次下载，不做重试；响应体经 cache.Store 的临时文件 + rename 落盘。
func (f *HTTPFetcher) Fetch(ctx context.Context, repo, file, destDir string) (string, error) {
	if strings.TrimSpace(repo) == "" || strings.TrimSpace(file) == "" {
		return "", &Error{Repo: repo, File: file, Err: errors.New("repo and file are required")}
	}

	store, err := cache.NewStore(destDir)
	if err != nil {
		return "", &Error{Repo: repo, File: file, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ResolveURL(repo, file), nil)
	if err != nil {
		return "", &Error{Repo: repo, File: file, Err: err}
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{Repo: repo, File: file, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return "", &Error{Repo: repo, File: file, Status: resp.StatusCode}
	}

	entry, err := store.Put(ctx, file, resp.Body)
	if err != nil {
		return "", &Error{Repo: repo, File: file, Err: err}
	}
	metrics.FetchedBytes.Add(float64(entry.SizeBytes))
	return entry.FilePath, nil
}

// ResolveURL 拼出下载地址，repo 与 file 的每个路径段分别转义。
func (f *HTTPFetcher) ResolveURL(repo, file string) string {
	segments := []string{strings.TrimRight(f.endpoint.String(), "/")}
	segments = append(segments, escapeSegments(repo)...)
	segments = append(segments, "resolve", url.PathEscape(f.revision))
	segments = append(segments, escapeSegments(file)...)
	return strings.Join(segments, "/")
}

func escapeSegments(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return parts
}
