package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	require.ErrorIs(t, err, ErrAPIConfiguration)
}

func TestFetchMarketMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/metrics/D4L%2FUSDC", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"pair": "D4L/USDC",
			"market_cap_usd": "5000000000000000000000000",
			"volume_24h_usd": "250000000000000000000000",
			"holder_count": 4200,
			"age_seconds": 864000
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	metrics, err := client.FetchMarketMetrics(context.Background(), "D4L/USDC")
	require.NoError(t, err)

	assert.Equal(t, sdkmath.NewIntWithDecimal(5_000_000, 18), metrics.MarketCapUSD)
	assert.Equal(t, sdkmath.NewIntWithDecimal(250_000, 18), metrics.Volume24hUSD)
	assert.Equal(t, uint64(4200), metrics.HolderCount)
	assert.Equal(t, uint64(864000), metrics.AgeSeconds)
}

func TestFetchMarketMetricsRejectsCorruptPayloads(t *testing.T) {
	cases := map[string]string{
		"pair mismatch":    `{"pair": "OTHER/USDC", "market_cap_usd": "1", "volume_24h_usd": "1", "holder_count": 1, "age_seconds": 1}`,
		"missing field":    `{"pair": "D4L/USDC", "volume_24h_usd": "1", "holder_count": 1, "age_seconds": 1}`,
		"negative age":     `{"pair": "D4L/USDC", "market_cap_usd": "1", "volume_24h_usd": "1", "holder_count": 1, "age_seconds": -5}`,
		"float market cap": `{"pair": "D4L/USDC", "market_cap_usd": "1.5e6", "volume_24h_usd": "1", "holder_count": 1, "age_seconds": 1}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(payload))
			}))
			defer server.Close()

			client, err := NewClient(server.URL)
			require.NoError(t, err)

			_, err = client.FetchMarketMetrics(context.Background(), "D4L/USDC")
			require.ErrorIs(t, err, ErrInvalidMetrics)
		})
	}
}

func TestFetchMarketMetricsRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"pair": "D4L/USDC", "market_cap_usd": "1", "volume_24h_usd": "1", "holder_count": 1, "age_seconds": 1}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.FetchMarketMetrics(context.Background(), "D4L/USDC")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
