package fetch

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout 为未配置 UpstreamTimeout 时单次下载的整体超时。
const DefaultTimeout = 30 * time.Minute

// 模型文件体积大、连接少，保留少量长连接即可。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          10,
	MaxIdleConnsPerHost:   4,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 60 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// NewClient 返回下载专用的 http.Client；proxy 非空时覆盖环境变量代理。
func NewClient(timeout time.Duration, proxy *url.URL) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := defaultTransport.Clone()
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
