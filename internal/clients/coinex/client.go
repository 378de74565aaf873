// Package coinex implements the subset of the CoinEx v2 REST API needed for
// balance tracking: signed asset queries and public spot tickers.
package coinex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.coinex.com/v2"
	apiVersion     = "/v2"
	requestTimeout = 10 * time.Second
)

// APIError is a business-level failure returned by the CoinEx API: either a
// non-2xx HTTP status or a non-zero code in the response envelope.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinex API error: status=%d code=%d message=%s", e.HTTPStatus, e.Code, e.Message)
}

// Client is a minimal CoinEx v2 HTTP client. Private endpoints are signed
// with HMAC-SHA256 over method + version + path + query + timestamp.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a CoinEx client for the given credentials.
func NewClient(apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// SpotBalanceItem is one currency entry of the spot account.
type SpotBalanceItem struct {
	Currency  string `json:"ccy"`
	Available string `json:"available"`
	Frozen    string `json:"frozen"`
}

// FuturesBalanceItem is one currency entry of the futures account.
type FuturesBalanceItem struct {
	Currency      string `json:"ccy"`
	Available     string `json:"available"`
	Frozen        string `json:"frozen"`
	Margin        string `json:"margin"`
	UnrealizedPNL string `json:"unrealized_pnl"`
}

// TickerItem is one market entry of the public spot ticker.
type TickerItem struct {
	Market string `json:"market"`
	Last   string `json:"last"`
}

// SpotBalance fetches the spot account balances. Signed.
func (c *Client) SpotBalance(ctx context.Context) ([]SpotBalanceItem, error) {
	var items []SpotBalanceItem
	if err := c.get(ctx, "/assets/spot/balance", nil, true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FuturesBalance fetches the futures account balances. Signed.
func (c *Client) FuturesBalance(ctx context.Context) ([]FuturesBalanceItem, error) {
	var items []FuturesBalanceItem
	if err := c.get(ctx, "/assets/futures/balance", nil, true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SpotTicker fetches the latest spot ticker for the given market, for example
// "BTCUSDT". An empty market queries all markets.
func (c *Client) SpotTicker(ctx context.Context, market string) ([]TickerItem, error) {
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	var items []TickerItem
	if err := c.get(ctx, "/spot/ticker", params, false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, signed bool, out any) error {
	query := ""
	if len(params) > 0 {
		query = "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+query, nil)
	if err != nil {
		return fmt.Errorf("create coinex request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-COINEX-TIMESTAMP", timestamp)
	if signed {
		req.Header.Set("X-COINEX-KEY", c.apiKey)
		req.Header.Set("X-COINEX-SIGN", c.sign(http.MethodGet, path, query, timestamp))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read coinex response: %w", err)
	}

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the error body still carries code/message when it is JSON
		_ = json.Unmarshal(body, &envelope)
		return &APIError{HTTPStatus: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode coinex response: %w", err)
	}
	if envelope.Code != 0 {
		return &APIError{HTTPStatus: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode coinex result: %w", err)
		}
	}
	return nil
}

// sign computes the lowercase hex HMAC-SHA256 signature of
// method + "/v2" + path + query + timestamp.
func (c *Client) sign(method, path, query, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(method + apiVersion + path + query + timestamp))
	return strings.ToLower(hex.EncodeToString(mac.Sum(nil)))
}
