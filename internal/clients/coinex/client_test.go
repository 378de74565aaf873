package coinex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testSecret = "test-secret"
)

func expectedSignature(method, path, query, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(method + "/v2" + path + query + timestamp))
	return strings.ToLower(hex.EncodeToString(mac.Sum(nil)))
}

func TestSpotBalance_SignedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/spot/balance", r.URL.Path)

		timestamp := r.Header.Get("X-COINEX-TIMESTAMP")
		require.NotEmpty(t, timestamp)
		assert.Equal(t, testKey, r.Header.Get("X-COINEX-KEY"))
		assert.Equal(t,
			expectedSignature(http.MethodGet, "/assets/spot/balance", "", timestamp),
			r.Header.Get("X-COINEX-SIGN"))

		w.Write([]byte(`{"code":0,"message":"OK","data":[
			{"ccy":"BTC","available":"0.5","frozen":"0.1"},
			{"ccy":"USDT","available":"100","frozen":"0"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	items, err := client.SpotBalance(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "BTC", items[0].Currency)
	assert.Equal(t, "0.5", items[0].Available)
	assert.Equal(t, "0.1", items[0].Frozen)
}

func TestFuturesBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/futures/balance", r.URL.Path)
		w.Write([]byte(`{"code":0,"message":"OK","data":[
			{"ccy":"USDT","available":"900","frozen":"50","margin":"40","unrealized_pnl":"10"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	items, err := client.FuturesBalance(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "900", items[0].Available)
	assert.Equal(t, "50", items[0].Frozen)
	assert.Equal(t, "40", items[0].Margin)
	assert.Equal(t, "10", items[0].UnrealizedPNL)
}

func TestSpotTicker_PublicUnsigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spot/ticker", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("market"))
		assert.Empty(t, r.Header.Get("X-COINEX-KEY"), "public endpoints must not carry credentials")
		assert.Empty(t, r.Header.Get("X-COINEX-SIGN"))

		w.Write([]byte(`{"code":0,"message":"OK","data":[{"market":"BTCUSDT","last":"60000.12"}]}`))
	}))
	defer server.Close()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	items, err := client.SpotTicker(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "60000.12", items[0].Last)
}

func TestGet_BusinessErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":4001,"message":"signature incorrect","data":{}}`))
	}))
	defer server.Close()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	_, err := client.SpotBalance(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 4001, apiErr.Code)
	assert.Equal(t, http.StatusOK, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Message, "signature incorrect")
}

func TestGet_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":4213,"message":"too many requests"}`))
	}))
	defer server.Close()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	_, err := client.SpotBalance(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatus)
	assert.Equal(t, 4213, apiErr.Code)
}

func TestGet_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	_, err := client.SpotBalance(context.Background())
	assert.ErrorContains(t, err, "decode coinex response")
}

func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testKey, testSecret).WithBaseURL(server.URL)
	_, err := client.SpotBalance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
