// Package upstream is the typed client for the business-management API the
// terminal delegates to. Every payload is decoded at this boundary; nothing
// above it handles raw JSON maps.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/pos-terminal/internal/obs"
	"github.com/noah-isme/pos-terminal/internal/register"
	"github.com/noah-isme/pos-terminal/internal/resilience"
)

// Client calls the business-management API for one organisation. Reads go
// through a retrying wrapper; writes go through Write, which is configured
// with a single attempt so order creation is never replayed.
type Client struct {
	BaseURL string
	OrgID   string
	Token   string
	Read    *resilience.HTTPClient
	Write   *resilience.HTTPClient
	Logger  *zerolog.Logger
}

// NewHTTPClient builds the outbound transport with tracing instrumentation.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Products fetches the catalog with variants and stock batch histories.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, c.Read, http.MethodGet, "/products", "products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Accounts fetches the settlement accounts available to the terminal.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var out []Account
	if err := c.do(ctx, c.Read, http.MethodGet, "/accounts", "accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Entities fetches the customer/supplier directory.
func (c *Client) Entities(ctx context.Context) ([]Entity, error) {
	var out []Entity
	if err := c.do(ctx, c.Read, http.MethodGet, "/entities", "entities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register fetches a register session with its transaction history.
func (c *Client) Register(ctx context.Context, registerID string) (register.Session, error) {
	var out register.Session
	err := c.do(ctx, c.Read, http.MethodGet, "/pos-registers/"+registerID, "register", nil, &out)
	return out, err
}

// CreateOrder submits a sale. The call goes through the write client and is
// never retried; a transport failure surfaces to the operator unresolved.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var out Order
	err := c.do(ctx, c.Write, http.MethodPost, "/orders", "create_order", req, &out)
	return out, err
}

// CloseRegister posts the counted closing balance for a register session.
func (c *Client) CloseRegister(ctx context.Context, registerID string, counted decimal.Decimal) error {
	path := "/pos-registers/" + registerID + "/close"
	req := CloseRegisterRequest{ActualClosingBalance: counted}
	return c.do(ctx, c.Write, http.MethodPost, path, "close_register", req, nil)
}

// Ping checks upstream reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, c.Read, http.MethodGet, "/accounts", "ping", nil, nil)
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/orgs/" + c.OrgID + path
}

func (c *Client) do(ctx context.Context, hc *resilience.HTTPClient, method, path, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(c.Token) != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := hc.Do(ctx, req)
	if err != nil {
		obs.ObserveUpstream(endpoint, "error", obs.DurationMillis(time.Since(start)))
		if c.Logger != nil {
			c.Logger.Warn().Err(err).Str("endpoint", endpoint).Msg("upstream call failed")
		}
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		obs.ObserveUpstream(endpoint, "error", obs.DurationMillis(time.Since(start)))
		apiErr := &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if c.Logger != nil {
			c.Logger.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("upstream rejected request")
		}
		return apiErr
	}

	obs.ObserveUpstream(endpoint, "ok", obs.DurationMillis(time.Since(start)))
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
