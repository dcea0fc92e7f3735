package proxmox

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ProxmoxClient struct {
	baseUrl    *url.URL
	httpClient *http.Client
	Token      string // API Token 认证（格式：PVEAPIToken=userId=userToken）

	// 上传大文件使用单独的长超时客户端
	uploadClient *http.Client
	// 任务轮询间隔
	PollInterval time.Duration
}

func newTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
}

func NewProxmoxClient(apiURL string, userId, userToken string) (*ProxmoxClient, error) {
	baseUrl, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("invalid proxmox api url %q", apiURL)
	}
	return &ProxmoxClient{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newTransport(),
		},
		uploadClient: &http.Client{
			Timeout:   60 * time.Minute,
			Transport: newTransport(),
		},
		Token:        fmt.Sprintf("PVEAPIToken=%s=%s", userId, userToken),
		PollInterval: 2 * time.Second,
	}, nil
}

func (c *ProxmoxClient) endpoint(path string, query url.Values) string {
	endpoint := c.baseUrl.JoinPath("/api2/json", path).String()
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *ProxmoxClient) Request(ctx context.Context, req *http.Request, result interface{}) error {
	return c.do(ctx, c.httpClient, req, result)
}

func (c *ProxmoxClient) do(ctx context.Context, hc *http.Client, req *http.Request, result interface{}) error {
	req.Header.Set("Authorization", c.Token)

	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp, body)
	}

	if result != nil {
		var apiResp struct {
			Data interface{} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return err
		}
		if apiResp.Data != nil {
			data, _ := json.Marshal(apiResp.Data)
			return json.Unmarshal(data, result)
		}
	}
	return nil
}

// parseAPIError PVE 的错误信息可能在 errors、message 或 HTTP status 文本中
func parseAPIError(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp struct {
		Message string                 `json:"message"`
		Errors  map[string]interface{} `json:"errors,omitempty"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		apiErr.Errors = errResp.Errors
		apiErr.Message = errResp.Message
	}
	if apiErr.Message == "" {
		// PVE 常把原因放在状态行里，例如 "500 VM is locked (clone)"
		if _, reason, ok := strings.Cut(resp.Status, " "); ok {
			apiErr.Message = reason
		}
	}
	if apiErr.Message == "" && len(apiErr.Errors) == 0 {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func (c *ProxmoxClient) Get(ctx context.Context, path string, result interface{}) error {
	return c.GetWithQuery(ctx, path, nil, result)
}

func (c *ProxmoxClient) GetWithQuery(ctx context.Context, path string, query url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	return c.Request(ctx, req, result)
}

func (c *ProxmoxClient) Post(ctx context.Context, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Request(ctx, req, result)
}

// PostQuery 参数通过 query string 传递，无 body
func (c *ProxmoxClient) PostQuery(ctx context.Context, path string, query url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	return c.Request(ctx, req, result)
}

func (c *ProxmoxClient) Delete(ctx context.Context, path string, query url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	return c.Request(ctx, req, result)
}

// PostForm 发送 application/x-www-form-urlencoded 请求
func (c *ProxmoxClient) PostForm(ctx context.Context, path string, form url.Values, result interface{}) error {
	return c.sendForm(ctx, http.MethodPost, path, form, result)
}

// PutForm 发送 PUT 方法的 application/x-www-form-urlencoded 请求
func (c *ProxmoxClient) PutForm(ctx context.Context, path string, form url.Values, result interface{}) error {
	return c.sendForm(ctx, http.MethodPut, path, form, result)
}

func (c *ProxmoxClient) sendForm(ctx context.Context, method, path string, form url.Values, result interface{}) error {
	body := strings.NewReader(form.Encode())
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), body)
	if err != nil {
		return err
	}
	// 即使 body 为空，也设置 Content-Type
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Request(ctx, req, result)
}

// GetVersion 获取 Proxmox VE 版本信息（用于验证连接）
// GET /api2/json/version
func (c *ProxmoxClient) GetVersion(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.Get(ctx, "/version", &result); err != nil {
		return nil, err
	}
	return result, nil
}
