// Package forecast provides the HTTP solar forecast source.
package forecast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/tidwall/gjson"
)

// HTTPSource pulls the hourly solar production forecast from a REST
// endpoint (Forecast.Solar, Solcast or anything with a JSON array of hourly
// kWh values). ValuePath is a gjson path selecting that array, e.g.
// "result.watt_hours_period.#" or "forecasts.#.pv_estimate".
//
// The returned series is used as-is by the corrector; no horizon fixup
// happens here.
type HTTPSource struct {
	url       string
	valuePath string
	client    *http.Client
}

func NewHTTPSource(cfg config.ForecastSourceConfig) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("forecast source URL is required")
	}
	if cfg.ValuePath == "" {
		return nil, fmt.Errorf("forecast source value path is required")
	}
	timeout := time.Duration(cfg.TimeoutMillis) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		url:       cfg.URL,
		valuePath: cfg.ValuePath,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSource) RawForecast(ctx context.Context, kind domain.ForecastKind) ([]float64, error) {
	if kind != domain.ForecastSolar {
		return nil, fmt.Errorf("http forecast source only serves solar, got %q", kind)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	values := gjson.GetBytes(respBody, s.valuePath)
	if !values.Exists() {
		return nil, fmt.Errorf("value path %q not found in response", s.valuePath)
	}

	valArray := values.Array()
	series := make([]float64, 0, len(valArray))
	for _, v := range valArray {
		series = append(series, v.Float())
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("value path %q selected no values", s.valuePath)
	}
	return series, nil
}
