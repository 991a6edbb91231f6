// Package darksky is the time-machine weather client: one request returns
// one local day of historical observations for a coordinate.
package darksky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

// Data blocks the API can return. All but the requested one are excluded
// from each response to keep payloads small.
var responseBlocks = []string{"currently", "minutely", "hourly", "alerts", "flags", "daily"}

// Client fetches historical weather days.
// It implements pipeline.TimeMachine.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a time-machine client. The circuit breaker opens after
// consecutive failures so a long backfill stops hammering a dead upstream.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "darksky",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// Fetch downloads the local day containing at for (lat, lon). The instant
// goes on the URL in its own offset, so the API resolves the same wall-clock
// day the window was built in.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, at time.Time, interval domain.Interval) (domain.DayResponse, error) {
	url := fmt.Sprintf("%s/%s/%v,%v,%s?exclude=%s",
		c.baseURL, c.apiKey, lat, lon, at.Format(domain.TimestampLayout), excludeParam(interval))

	body, err := c.get(ctx, url)
	if err != nil {
		return domain.DayResponse{}, err
	}

	var day domain.DayResponse
	if err := json.Unmarshal(body, &day); err != nil {
		return domain.DayResponse{}, fmt.Errorf("decode time machine response: %w", err)
	}
	if day.Err != "" {
		return domain.DayResponse{}, fmt.Errorf("time machine error: %s", day.Err)
	}
	return day, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("time machine request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("time machine error: status %d: %s", resp.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// excludeParam lists every response block except the requested interval.
func excludeParam(interval domain.Interval) string {
	kept := string(interval)
	out := make([]string, 0, len(responseBlocks)-1)
	for _, block := range responseBlocks {
		if block != kept {
			out = append(out, block)
		}
	}
	return strings.Join(out, ",")
}
