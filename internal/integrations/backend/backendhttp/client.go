package backendhttp

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

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const RequestIDHeader = "X-Request-ID"

type Client struct {
	baseURL string
	tokens  backend.TokenSource
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration, tokens backend.TokenSource) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if tokens == nil {
		tokens = backend.StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) ListShipments(ctx context.Context, q backend.Query) ([]backend.Record, error) {
	return c.getList(ctx, "/api/shipments", q)
}

func (c *Client) GetShipment(ctx context.Context, id string) (backend.Record, error) {
	return c.getOne(ctx, "/api/shipments/"+url.PathEscape(id))
}

func (c *Client) UpdateShipmentStatus(ctx context.Context, id, status string, payload map[string]any) (backend.Record, error) {
	body := map[string]any{"status": status}
	if len(payload) > 0 {
		body["payload"] = payload
	}
	var out backend.Record
	err := c.do(ctx, http.MethodPatch, "/api/shipments/"+url.PathEscape(id)+"/status", nil, body, &out)
	return out, err
}

func (c *Client) ListBranches(ctx context.Context) ([]backend.Record, error) {
	return c.getList(ctx, "/api/branches", nil)
}

func (c *Client) UpdateBranch(ctx context.Context, id string, patch map[string]any) (backend.Record, error) {
	var out backend.Record
	err := c.do(ctx, http.MethodPut, "/api/branches/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (c *Client) ListCustomers(ctx context.Context, q backend.Query) ([]backend.Record, error) {
	return c.getList(ctx, "/api/customers", q)
}

func (c *Client) GetCustomer(ctx context.Context, id string) (backend.Record, error) {
	return c.getOne(ctx, "/api/customers/"+url.PathEscape(id))
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, patch map[string]any) (backend.Record, error) {
	var out backend.Record
	err := c.do(ctx, http.MethodPut, "/api/customers/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (c *Client) ListVehicles(ctx context.Context) ([]backend.Record, error) {
	return c.getList(ctx, "/api/vehicles", nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (backend.LoginResult, error) {
	var data backend.Record
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]any{"email": email, "password": password}, &data)
	if err != nil {
		return backend.LoginResult{}, err
	}
	res := backend.LoginResult{}
	for _, k := range []string{"token", "accessToken", "access_token"} {
		if s, ok := data[k].(string); ok && s != "" {
			res.Token = s
			break
		}
	}
	if u, ok := data["user"].(map[string]any); ok {
		res.User = u
	}
	if res.Token == "" {
		return backend.LoginResult{}, apperr.Business("login response has no token")
	}
	return res, nil
}

func (c *Client) Register(ctx context.Context, in backend.Record) (backend.Record, error) {
	var out backend.Record
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", nil, map[string]any{"email": email}, nil)
}

func (c *Client) DashboardStats(ctx context.Context, q backend.Query) (backend.Record, error) {
	var out backend.Record
	err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", q, nil, &out)
	return out, err
}

func (c *Client) Report(ctx context.Context, q backend.Query) (backend.Record, error) {
	var out backend.Record
	err := c.do(ctx, http.MethodGet, "/api/reports", q, nil, &out)
	return out, err
}

func (c *Client) getOne(ctx context.Context, path string) (backend.Record, error) {
	var out backend.Record
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List endpoints return either a bare array or an object wrapping one
// (paginated responses carry totals next to the items).
var listKeys = []string{"items", "rows", "results", "shipments", "branches", "customers", "vehicles", "data"}

func (c *Client) getList(ctx context.Context, path string, q backend.Query) ([]backend.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, q, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList(raw)
	if err != nil {
		return nil, apperr.Transport(errors.Wrapf(err, "decode %s", path))
	}
	return out, nil
}

func decodeList(raw json.RawMessage) ([]backend.Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []backend.Record{}, nil
	}
	if raw[0] == '[' {
		var out []backend.Record
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for _, k := range listKeys {
		if v, ok := obj[k]; ok {
			return decodeList(v)
		}
	}
	return nil, fmt.Errorf("no list in object")
}

func (c *Client) do(ctx context.Context, method, path string, q backend.Query, body any, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return apperr.Transport(errors.Wrap(err, "parse base url"))
	}
	if len(q) > 0 {
		vals := u.Query()
		for k, v := range q {
			if v != "" {
				vals.Set(k, v)
			}
		}
		u.RawQuery = vals.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal body")
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return apperr.Transport(errors.Wrap(err, "new request"))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return errors.Wrap(err, "token")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperr.Transport(errors.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode == http.StatusUnauthorized {
		return apperr.Unauthorized(env.Message)
	}
	if resp.StatusCode/100 != 2 {
		if decodeErr == nil && env.Message != "" {
			return apperr.Business(env.Message)
		}
		return apperr.Transport(fmt.Errorf("backend http %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return apperr.Transport(errors.Wrap(decodeErr, "decode envelope"))
	}
	if !env.Success {
		return apperr.Business(env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = env.Data
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperr.Transport(errors.Wrap(err, "decode data"))
	}
	return nil
}
