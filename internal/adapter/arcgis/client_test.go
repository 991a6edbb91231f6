package arcgis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLayerID(t *testing.T) {
	assert.Equal(t, 26, layerID(2002))
	assert.Equal(t, 21, layerID(2007))
	assert.Equal(t, 10, layerID(2018))
}

func TestFetchYear(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"features":[{"attributes":{"itype":"WF","event_id":"CA-001"}},{"attributes":{"itype":"FA"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	layer, err := c.FetchYear(context.Background(), 2002)
	require.NoError(t, err)

	assert.Equal(t, "/26/query", gotPath)
	assert.Contains(t, gotQuery, "outFields=*")
	assert.Contains(t, gotQuery, "f=json")
	assert.Equal(t, 2002, layer.Year)
	require.Len(t, layer.Records, 2)
	assert.Equal(t, "CA-001", layer.Records[0]["event_id"])
}

func TestFetchYearErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second, testLogger()).FetchYear(context.Background(), 2010)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("service-level error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"error":{"code":400,"message":"Invalid or missing input parameters."}}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second, testLogger()).FetchYear(context.Background(), 2010)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid or missing input parameters")
	})

	t.Run("year outside the service range", func(t *testing.T) {
		_, err := NewClient("http://unused", time.Second, testLogger()).FetchYear(context.Background(), 2019)
		assert.Error(t, err)
	})
}

func TestFetchRange(t *testing.T) {
	var years []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		years = append(years, r.URL.Path)
		fmt.Fprint(w, `{"features":[{"attributes":{"itype":"WF"}}]}`)
	}))
	defer srv.Close()

	layers, err := NewClient(srv.URL, time.Second, testLogger()).FetchRange(context.Background(), 2002, 2004)
	require.NoError(t, err)

	assert.Equal(t, []string{"/26/query", "/25/query", "/24/query"}, years)
	require.Len(t, layers, 3)
	assert.Equal(t, 2003, layers[1].Year)
}

func TestFlatten(t *testing.T) {
	layers := []YearLayer{
		{Year: 2002, Records: []domain.RawRecord{{"event_id": "A"}, {"event_id": "B"}}},
		{Year: 2003, Records: []domain.RawRecord{{"event_id": "C"}}},
	}

	records := Flatten(layers)

	require.Len(t, records, 3)
	assert.Equal(t, "C", records[2]["event_id"])
}
