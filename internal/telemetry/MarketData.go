/*
This file is used to fetch market telemetry from the external metrics collector.

The adaptive selector needs a fresh MarketMetrics snapshot per pair every
cycle; a stale or corrupt snapshot would steer a pool onto the wrong curve,
so every field is validated strictly before it leaves this package.
*/

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/types"
)

var telemetryLogger = logger.GetForComponent("telemetry_fetcher")

var ErrInvalidMetrics = errors.New("invalid market metrics received")
var ErrAPIConfiguration = errors.New("telemetry API configuration error")

const (
	MAX_RETRIES     = 3
	TIMEOUT_SECONDS = 30
)

// metricsResponse is the collector's wire format. Fixed-point 10^18 values
// travel as decimal strings; floats never enter the pipeline.
type metricsResponse struct {
	Pair         string `json:"pair"`
	MarketCapUSD string `json:"market_cap_usd"`
	Volume24hUSD string `json:"volume_24h_usd"`
	HolderCount  int64  `json:"holder_count"`
	AgeSeconds   int64  `json:"age_seconds"`
}

// Client fetches MarketMetrics from the telemetry collector.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a telemetry client for the given collector base URL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: empty base URL", ErrAPIConfiguration)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIConfiguration, err)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: TIMEOUT_SECONDS * time.Second,
		},
	}, nil
}

// FetchMarketMetrics fetches and validates the telemetry snapshot for one
// pair, retrying transient failures with linear backoff.
func (c *Client) FetchMarketMetrics(ctx context.Context, pair types.PairID) (types.MarketMetrics, error) {
	if pair == "" {
		return types.MarketMetrics{}, fmt.Errorf("%w: empty pair", ErrInvalidMetrics)
	}

	requestURL := fmt.Sprintf("%s/metrics/%s", c.baseURL, url.PathEscape(string(pair)))

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		telemetryLogger.Debug().
			Str("pair", string(pair)).
			Int("attempt", attempt).
			Int("maxRetries", MAX_RETRIES).
			Msg("Making telemetry request")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return types.MarketMetrics{}, fmt.Errorf("failed to build telemetry request for %s: %w", pair, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed on attempt %d: %w", attempt, err)
			telemetryLogger.Warn().
				Err(err).
				Str("pair", string(pair)).
				Int("attempt", attempt).
				Msg("Telemetry request failed, will retry if attempts remain")

			if attempt < MAX_RETRIES && ctx.Err() == nil {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			break
		}

		metrics, err := processResponse(resp, pair)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < MAX_RETRIES && ctx.Err() == nil {
				telemetryLogger.Warn().
					Err(err).
					Str("pair", string(pair)).
					Int("attempt", attempt).
					Msg("Telemetry response processing failed, will retry if attempts remain")
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			break
		}

		return metrics, nil
	}

	telemetryLogger.Error().
		Err(lastErr).
		Str("pair", string(pair)).
		Int("maxRetries", MAX_RETRIES).
		Msg("All telemetry retry attempts failed")
	return types.MarketMetrics{}, fmt.Errorf("failed to fetch metrics for %s after %d attempts: %w", pair, MAX_RETRIES, lastErr)
}

// processResponse parses and strictly validates one telemetry response.
func processResponse(resp *http.Response, pair types.PairID) (types.MarketMetrics, error) {
	if resp.StatusCode != http.StatusOK {
		telemetryLogger.Error().
			Str("pair", string(pair)).
			Int("statusCode", resp.StatusCode).
			Msg("Telemetry API returned non-200 status")
		return types.MarketMetrics{}, fmt.Errorf("telemetry API returned status %d for %s", resp.StatusCode, pair)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.MarketMetrics{}, fmt.Errorf("failed to read telemetry body for %s: %w", pair, err)
	}
	if len(body) == 0 {
		return types.MarketMetrics{}, fmt.Errorf("%w: empty response body for %s", ErrInvalidMetrics, pair)
	}

	var wire metricsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		telemetryLogger.Error().
			Err(err).
			Str("pair", string(pair)).
			Msg("Failed to parse telemetry JSON")
		return types.MarketMetrics{}, fmt.Errorf("failed to parse telemetry response for %s: %w", pair, err)
	}

	if wire.Pair != string(pair) {
		return types.MarketMetrics{}, fmt.Errorf("%w: response pair %q does not match requested %q",
			ErrInvalidMetrics, wire.Pair, pair)
	}
	if wire.HolderCount < 0 {
		return types.MarketMetrics{}, fmt.Errorf("%w: negative holder count %d for %s",
			ErrInvalidMetrics, wire.HolderCount, pair)
	}
	if wire.AgeSeconds < 0 {
		return types.MarketMetrics{}, fmt.Errorf("%w: negative age %d for %s",
			ErrInvalidMetrics, wire.AgeSeconds, pair)
	}

	marketCap, err := parseFixedPoint(wire.MarketCapUSD, "market_cap_usd", pair)
	if err != nil {
		return types.MarketMetrics{}, err
	}
	volume, err := parseFixedPoint(wire.Volume24hUSD, "volume_24h_usd", pair)
	if err != nil {
		return types.MarketMetrics{}, err
	}

	metrics := types.MarketMetrics{
		MarketCapUSD: marketCap,
		Volume24hUSD: volume,
		HolderCount:  uint64(wire.HolderCount),
		AgeSeconds:   uint64(wire.AgeSeconds),
	}

	telemetryLogger.Info().
		Str("pair", string(pair)).
		Str("marketCap", marketCap.String()).
		Str("volume24h", volume.String()).
		Uint64("holders", metrics.HolderCount).
		Msg("Successfully retrieved and validated market metrics")
	return metrics, nil
}

// parseFixedPoint parses a non-negative fixed-point decimal string.
func parseFixedPoint(raw, field string, pair types.PairID) (sdkmath.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sdkmath.Int{}, fmt.Errorf("%w: missing %s for %s", ErrInvalidMetrics, field, pair)
	}
	value, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("%w: unparseable %s %q for %s", ErrInvalidMetrics, field, raw, pair)
	}
	if value.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("%w: negative %s for %s", ErrInvalidMetrics, field, pair)
	}
	return value, nil
}
