// Package gateway talks to a running roadmap service over its REST API and
// serves as the persistence gateway of the interactive editor.
// Package gateway 通过 REST API 访问路线图服务，作为交互式编辑器的持久化网关
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTimeout 单次请求默认超时
const DefaultTimeout = 10 * time.Second

// maxResponseBytes 响应体大小上限
const maxResponseBytes = 64 << 20

var jsonAPI = sonic.ConfigStd

// envelope 服务端统一响应结构，失败响应没有 data
type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client HTTP 持久化网关
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

var (
	_ roadmap.Gateway = (*Client)(nil)
	_ roadmap.Fetcher = (*Client)(nil)
)

// Option Client 配置项
type Option func(*Client)

// WithTimeout 设置单次请求超时，<=0 表示只受调用方 context 控制
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New 创建网关客户端，serverURL 形如 http://127.0.0.1:9000
func New(serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return nil, errors.Wrapf(err, "parse server url %q", serverURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("server url %q must use http or https", serverURL)
	}
	if u.Host == "" {
		return nil, errors.Errorf("server url %q has no host", serverURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL 服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateNode POST /api/roadmap/node
func (c *Client) CreateNode(ctx context.Context, n *roadmap.Node) (*roadmap.NodeResult, error) {
	var data struct {
		Node *roadmap.Node `json:"node"`
	}
	ok, err := c.do(ctx, http.MethodPost, "/api/roadmap/node", n, &data)
	if err != nil {
		return nil, err
	}
	return &roadmap.NodeResult{Success: ok, Node: data.Node}, nil
}

// UpdateNode PUT /api/roadmap/node/:id
func (c *Client) UpdateNode(ctx context.Context, id string, p roadmap.Patch) (*roadmap.NodeResult, error) {
	var data struct {
		Node *roadmap.Node `json:"node"`
	}
	ok, err := c.do(ctx, http.MethodPut, "/api/roadmap/node/"+url.PathEscape(id), p, &data)
	if err != nil {
		return nil, err
	}
	return &roadmap.NodeResult{Success: ok, Node: data.Node}, nil
}

// DeleteNode DELETE /api/roadmap/node/:id
func (c *Client) DeleteNode(ctx context.Context, id string) (*roadmap.DeleteResult, error) {
	ok, err := c.do(ctx, http.MethodDelete, "/api/roadmap/node/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return &roadmap.DeleteResult{Success: ok}, nil
}

// CreateBranch POST /api/roadmap/node/:id/branch
func (c *Client) CreateBranch(ctx context.Context, parentID string, req roadmap.BranchRequest) (*roadmap.BranchResult, error) {
	var data struct {
		Node   *roadmap.Node `json:"node"`
		Parent *roadmap.Node `json:"parent"`
	}
	ok, err := c.do(ctx, http.MethodPost, "/api/roadmap/node/"+url.PathEscape(parentID)+"/branch", req, &data)
	if err != nil {
		return nil, err
	}
	return &roadmap.BranchResult{Success: ok, Node: data.Node, Parent: data.Parent}, nil
}

// FetchRoadmap GET /api/roadmap
func (c *Client) FetchRoadmap(ctx context.Context) ([]*roadmap.Node, error) {
	var data struct {
		Nodes []*roadmap.Node `json:"nodes"`
	}
	ok, err := c.do(ctx, http.MethodGet, "/api/roadmap", nil, &data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, roadmap.ErrSyncFailed
	}
	return data.Nodes, nil
}

// do 发送请求并解开响应信封
// 返回 false, nil 表示服务端拒绝（status=false），传输或解码问题返回 error
func (c *Client) do(ctx context.Context, method, path string, in, out any) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := jsonAPI.Marshal(in)
		if err != nil {
			return false, errors.Wrapf(err, "encode %s %s", method, path)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, errors.Wrapf(err, "read %s %s", method, path)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s %s: unexpected status code: %d", method, path, resp.StatusCode)
	}

	var env envelope
	if err := jsonAPI.Unmarshal(raw, &env); err != nil {
		return false, errors.Wrapf(err, "decode %s %s", method, path)
	}
	if !env.Status {
		c.logger.Debug("gateway refused",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("code", env.Code),
			zap.String("message", env.Message))
		return false, nil
	}
	if out != nil && len(env.Data) > 0 {
		if err := jsonAPI.Unmarshal(env.Data, out); err != nil {
			return false, errors.Wrapf(err, "decode %s %s data", method, path)
		}
	}
	return true, nil
}
