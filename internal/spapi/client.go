package spapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL 上游 Selling Partner API 默认入口
const DefaultBaseURL = "https://sellingpartnerapi-na.amazon.com/"

// Client 上游目录/定价 API 客户端
//
// 认证通过 x-amz-access-token 请求头携带，所有请求都走 GET。
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// Config API 客户端配置
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewClient 创建新的 API 客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// DoRequest 执行 HTTP 请求
func (c *Client) DoRequest(ctx context.Context, endpoint string, params map[string]string) (*http.Response, error) {
	if c.logger != nil {
		c.logger.Debug("sending API request",
			zap.String("endpoint", endpoint),
			zap.Any("params", params),
		)
	}

	// 1. 构建完整的 URL
	fullURL, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to build URL",
				zap.String("base_url", c.baseURL),
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	// 2. 解析 URL 以便添加查询参数
	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to parse URL",
				zap.String("url", fullURL),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	// 3. 构建查询参数
	query := parsedURL.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	parsedURL.RawQuery = query.Encode()
	finalURL := parsedURL.String()

	// 4. 创建 HTTP 请求（使用 context 支持超时和取消）
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to create request",
				zap.String("url", finalURL),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 认证通过请求头携带（必需）
	if c.accessToken == "" {
		err := fmt.Errorf("access token is required but not set")
		if c.logger != nil {
			c.logger.Error("access token missing", zap.Error(err))
		}
		return nil, err
	}
	req.Header.Set("x-amz-access-token", c.accessToken)
	req.Header.Set("User-Agent", "amazon-sem-segredos/1.0")
	req.Header.Set("Accept", "application/json")

	// 5. 发送请求
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("HTTP request failed",
				zap.String("url", finalURL),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	// 6. 检查响应状态码
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		err := fmt.Errorf("HTTP error: status code %d", resp.StatusCode)
		if c.logger != nil {
			c.logger.Error("HTTP response error",
				zap.Int("status_code", resp.StatusCode),
				zap.String("status", resp.Status),
				zap.String("url", finalURL),
			)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("HTTP request succeeded",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", finalURL),
		)
	}

	return resp, nil
}

// GetRawData 获取原始数据
func (c *Client) GetRawData(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	// 1. 调用 DoRequest 获取响应
	resp, err := c.DoRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 2. 读取响应体
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to read response body",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("response body read successfully",
			zap.String("endpoint", endpoint),
			zap.Int("body_size", len(body)),
		)
	}

	return body, nil
}
