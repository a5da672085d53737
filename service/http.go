package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPExplainer 调用外部文案服务（如 LLM 网关）生成解释。
//
// REST API 格式：
//   - 端点：POST {Endpoint}
//   - 请求体：ExplainRequest 的 JSON
//   - 响应：{"explanation": "..."}（或纯文本，按 Content-Type 区分）
//
// 远端失败时调用方应降级到 TemplateExplainer；本类型不自己吞错，
// 让调用方决定降级策略。
type HTTPExplainer struct {
	// Endpoint 服务端点，例如 "http://localhost:8080/v1/explain"
	Endpoint string

	// Timeout 超时时间，默认 10s。文案是非关键路径，超时宜短。
	Timeout time.Duration

	// APIKey 可选，设置后以 Bearer Token 发送
	APIKey string

	httpClient *http.Client
}

// NewHTTPExplainer 创建一个 HTTP 文案服务客户端。
func NewHTTPExplainer(endpoint string, opts ...HTTPExplainerOption) *HTTPExplainer {
	c := &HTTPExplainer{
		Endpoint: endpoint,
		Timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// HTTPExplainerOption 客户端配置选项
type HTTPExplainerOption func(*HTTPExplainer)

// WithExplainerTimeout 设置超时时间
func WithExplainerTimeout(timeout time.Duration) HTTPExplainerOption {
	return func(c *HTTPExplainer) {
		c.Timeout = timeout
		if c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithExplainerAPIKey 设置 Bearer Token
func WithExplainerAPIKey(key string) HTTPExplainerOption {
	return func(c *HTTPExplainer) {
		c.APIKey = key
	}
}

// WithExplainerHTTPClient 注入自定义 HTTP 客户端（测试用）
func WithExplainerHTTPClient(client *http.Client) HTTPExplainerOption {
	return func(c *HTTPExplainer) {
		c.httpClient = client
	}
}

func (c *HTTPExplainer) Name() string { return "explainer.http" }

func (c *HTTPExplainer) Explain(ctx context.Context, req *ExplainRequest) (string, error) {
	if req == nil || req.Bundle == nil {
		return "", fmt.Errorf("service: explain request is empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("service: marshal explain request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("service: build explain request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("service: call explain service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("service: read explain response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("service: explain service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var out struct {
			Explanation string `json:"explanation"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("service: decode explain response: %w", err)
		}
		if out.Explanation == "" {
			return "", fmt.Errorf("service: explain service returned empty explanation")
		}
		return out.Explanation, nil
	}
	return strings.TrimSpace(string(raw)), nil
}

func (c *HTTPExplainer) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ Explainer = (*HTTPExplainer)(nil)
