package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Locator resolves the device's current position. The query is one-shot; a
// failed resolution is reported as an error and never retried internally.
type Locator interface {
	CurrentPosition(ctx context.Context) (Point, error)
}

// HTTPLocator queries a location service endpoint for the device position.
type HTTPLocator struct {
	url    string
	client *http.Client
}

// NewHTTPLocator creates a locator against the given endpoint URL.
func NewHTTPLocator(url string, timeout time.Duration) *HTTPLocator {
	return &HTTPLocator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// CurrentPosition performs a single high-accuracy position query.
func (l *HTTPLocator) CurrentPosition(ctx context.Context) (Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"?accuracy=high", nil)
	if err != nil {
		return Point{}, fmt.Errorf("failed to build position request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("failed to query position: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("position query returned status %d", resp.StatusCode)
	}

	var p Point
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Point{}, fmt.Errorf("failed to decode position: %w", err)
	}

	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return Point{}, fmt.Errorf("position out of range: %f, %f", p.Latitude, p.Longitude)
	}

	return p, nil
}
