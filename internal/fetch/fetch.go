// 包 fetch 封装 HTTP 客户端（代理/超时/UA），将 HTTP 层状态作为数据返回：
// 非 2xx 不是错误，只有传输层失败（DNS/连接/超时）才返回 error。
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Page 为一次抓取的结果：重定向已被透明跟随，FinalURL 为落点地址。
type Page struct {
	Status   int
	OK       bool // 2xx
	Body     string
	FinalURL string
}

// Client 为带传输层重试的 HTTP 客户端。
type Client struct {
	http  *http.Client
	retry int
}

// Options 为客户端构造参数。
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	// Retry 仅对传输层失败生效；HTTP 状态码从不触发重试
	Retry int
}

// maxBodyBytes 限制单页读取量，防御异常超大响应。
const maxBodyBytes = 4 << 20

// New 创建客户端，支持 http/https 代理与基础超时配置。
func New(opts Options) (*Client, error) {
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && opts.ProxyHTTPS != "" {
				return url.Parse(opts.ProxyHTTPS)
			}
			if req.URL.Scheme == "http" && opts.ProxyHTTP != "" {
				return url.Parse(opts.ProxyHTTP)
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	cl := &http.Client{Transport: transport}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	cl.Timeout = opts.Timeout
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &Client{http: cl, retry: opts.Retry}, nil
}

// Get 抓取页面并读取全文。传输层失败按线性回退重试（retry 次），
// 任何 HTTP 响应（含 404/5xx）都视为成功抓取并原样返回。
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	var lastErr error
	attempts := c.retry + 1
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		// 使用常见浏览器 UA，减少 403/反爬误判；支持环境变量覆盖（FRC_UA）
		ua := os.Getenv("FRC_UA")
		if ua == "" {
			ua = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
		}
		req.Header.Set("User-Agent", ua)
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i+1) * 300 * time.Millisecond):
			}
			continue
		}
		b, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read body: %w", readErr)
			continue
		}
		finalURL := rawURL
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}
		return &Page{
			Status:   resp.StatusCode,
			OK:       resp.StatusCode >= 200 && resp.StatusCode < 300,
			Body:     string(b),
			FinalURL: finalURL,
		}, nil
	}
	return nil, lastErr
}
