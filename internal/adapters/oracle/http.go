package oracle

// http.go: lector de feeds de un oráculo remoto por HTTP.
//
// Endpoint esperado:
//   GET {base}/feeds/{oracle}/{feed}?as_of=RFC3339Nano
//   200 {"value": "1.3", "found": true}
//   404 → el feed nunca se publicó
//
// Un único request por lectura: la resolución no reintenta, el caller decide.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRatePerSec = 10
	maxErrorBody      = 512
)

// feedResponse es el body que devuelve el oráculo.
type feedResponse struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// HTTPFeed implementa ports.FeedReader contra un oráculo HTTP con rate limiting.
type HTTPFeed struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewHTTPFeed crea el lector. ratePerSec <= 0 usa el default; timeout <= 0 también.
func NewHTTPFeed(base string, ratePerSec float64, timeout time.Duration) *HTTPFeed {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFeed{
		http:    &http.Client{Timeout: timeout},
		base:    strings.TrimRight(base, "/"),
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// ReadFeed consulta el último valor publicado antes de asOf.
func (f *HTTPFeed) ReadFeed(ctx context.Context, oracleID, feedName string, asOf time.Time) (string, bool, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("oracle.ReadFeed: rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/feeds/%s/%s?as_of=%s",
		f.base, url.PathEscape(oracleID), url.PathEscape(feedName),
		url.QueryEscape(asOf.UTC().Format(time.RFC3339Nano)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, fmt.Errorf("oracle.ReadFeed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("oracle.ReadFeed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", false, nil
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", false, fmt.Errorf("oracle.ReadFeed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("oracle.ReadFeed: decode response: %w", err)
	}
	if !out.Found {
		return "", false, nil
	}
	return out.Value, true, nil
}
