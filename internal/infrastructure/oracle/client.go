// Package oracle reads prices from Reflector-style price feeds over HTTP.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"p2plending/internal/domain/loan"
)

// Client resolves an OracleAsset against the feed registered under its
// oracle name. A feed answers GET {base}/lastprice?symbol=X (or ?asset=X for
// native assets) with {"price": "...", "timestamp": unix_seconds}, or 404
// when it has no price.
type Client struct {
	endpoints map[string]string
	http      *http.Client
}

func NewClient(endpoints map[string]string, timeout time.Duration) *Client {
	eps := make(map[string]string, len(endpoints))
	for name, base := range endpoints {
		eps[name] = strings.TrimRight(base, "/")
	}
	return &Client{endpoints: eps, http: &http.Client{Timeout: timeout}}
}

func (c *Client) LastPrice(ctx context.Context, a loan.OracleAsset) (*loan.PriceData, error) {
	base, ok := c.endpoints[a.Oracle]
	if !ok {
		return nil, fmt.Errorf("oracle %q not configured", a.Oracle)
	}
	q := url.Values{}
	switch {
	case a.Symbol != nil:
		q.Set("symbol", *a.Symbol)
	case a.Asset != nil:
		q.Set("asset", *a.Asset)
	default:
		return nil, fmt.Errorf("oracle asset %q names neither symbol nor asset", a.Oracle)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/lastprice?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("oracle %s: status %d: %s", a, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out loan.PriceData
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return nil, fmt.Errorf("oracle %s: decode: %w", a, err)
	}
	return &out, nil
}
