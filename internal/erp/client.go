package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fulfillmentworks/picksync-backend/internal/scanning"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

// Client looks up barcodes and order lines in the upstream ERP. It satisfies
// both ports consumed by the scan orchestrator.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// NewClient builds an ERP client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "erp base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Resolve maps a raw barcode to an item reference.
func (c *Client) Resolve(ctx context.Context, barcode string) (*scanning.ItemRef, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "erp client not configured")
	}
	trimmed := strings.TrimSpace(barcode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	var payload struct {
		ItemCode   string `json:"item_code"`
		Multiplier int    `json:"multiplier"`
	}
	endpoint := fmt.Sprintf("%s/barcodes/%s", c.baseURL, url.PathEscape(trimmed))
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.ItemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "barcode not known to erp")
	}
	return &scanning.ItemRef{ItemCode: payload.ItemCode, Multiplier: payload.Multiplier}, nil
}

// Lines returns the order lines the ERP holds for one order.
func (c *Client) Lines(ctx context.Context, orderID int64) ([]scanning.OrderLine, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "erp client not configured")
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var payload struct {
		Lines []struct {
			LineID      int64           `json:"line_id"`
			ItemCode    string          `json:"item_code"`
			InvoiceNo   string          `json:"invoice_no"`
			WarehouseID int             `json:"warehouse_id"`
			QtyOrdered  decimal.Decimal `json:"qty_ordered"`
		} `json:"lines"`
	}
	endpoint := fmt.Sprintf("%s/orders/%d/lines", c.baseURL, orderID)
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	lines := make([]scanning.OrderLine, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, scanning.OrderLine{
			LineID:      line.LineID,
			ItemCode:    line.ItemCode,
			InvoiceNo:   line.InvoiceNo,
			WarehouseID: line.WarehouseID,
			QtyOrdered:  line.QtyOrdered,
		})
	}
	return lines, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build erp request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute erp request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "erp resource not found")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "erp request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode erp response")
	}
	return nil
}
