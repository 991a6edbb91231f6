// Package arcgis queries the historical wildfire map service. Each year
// 2002-2018 lives in its own layer of one map server.
package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

// Layer ids count down from the earliest year: 2002 is layer 26, 2018 is
// layer 10.
const (
	firstYear    = 2002
	firstLayerID = 26
	lastYear     = 2018
)

// Client fetches yearly incident layers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a map-service client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// YearLayer is one year's raw download.
type YearLayer struct {
	Year    int                `json:"year" bson:"year"`
	Records []domain.RawRecord `json:"features" bson:"features"`
}

// FetchYear downloads one year's raw incident records.
func (c *Client) FetchYear(ctx context.Context, year int) (YearLayer, error) {
	if year < firstYear || year > lastYear {
		return YearLayer{}, fmt.Errorf("no layer for year %d", year)
	}

	url := fmt.Sprintf("%s/%d/query?where=1%%3D1&outFields=*&outSR=4326&f=json", c.baseURL, layerID(year))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return YearLayer{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return YearLayer{}, fmt.Errorf("query layer %d: %w", layerID(year), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return YearLayer{}, fmt.Errorf("map service error: status %d: %s", resp.StatusCode, body)
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return YearLayer{}, fmt.Errorf("decode layer %d response: %w", layerID(year), err)
	}
	if payload.Error != nil {
		return YearLayer{}, fmt.Errorf("map service error: %s", payload.Error.Message)
	}

	layer := YearLayer{Year: year, Records: make([]domain.RawRecord, 0, len(payload.Features))}
	for _, f := range payload.Features {
		layer.Records = append(layer.Records, domain.RawRecord(f.Attributes))
	}
	return layer, nil
}

// FetchRange downloads years [from, to] inclusive, in year order.
func (c *Client) FetchRange(ctx context.Context, from, to int) ([]YearLayer, error) {
	layers := make([]YearLayer, 0, to-from+1)
	for year := from; year <= to; year++ {
		layer, err := c.FetchYear(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("fetch year %d: %w", year, err)
		}
		c.logger.Info("fetched yearly layer", "year", year, "records", len(layer.Records))
		layers = append(layers, layer)
	}
	return layers, nil
}

// Flatten concatenates layer records in year order.
func Flatten(layers []YearLayer) []domain.RawRecord {
	var records []domain.RawRecord
	for _, layer := range layers {
		records = append(records, layer.Records...)
	}
	return records
}

func layerID(year int) int {
	return firstLayerID - (year - firstYear)
}

type queryResponse struct {
	Features []feature      `json:"features"`
	Error    *responseError `json:"error"`
}

type feature struct {
	Attributes map[string]any `json:"attributes"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
