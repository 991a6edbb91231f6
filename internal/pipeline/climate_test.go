package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/observability"
)

// fakeTimeMachine serves canned day responses and records request order.
type fakeTimeMachine struct {
	mu       sync.Mutex
	requests []time.Time
	inflight int
	peak     int
	failFor  map[string]error // keyed by "lat,lon"
}

func (f *fakeTimeMachine) Fetch(_ context.Context, lat, lon float64, at time.Time, _ domain.Interval) (domain.DayResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, at)
	f.inflight++
	if f.inflight > f.peak {
		f.peak = f.inflight
	}
	err := f.failFor[key(lat, lon)]
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()

	if err != nil {
		return domain.DayResponse{}, err
	}
	return domain.DayResponse{
		Hourly: &domain.DataBlock{Data: []domain.Point{{"time": float64(at.Unix()), "temperature": 20.0}}},
	}, nil
}

func key(lat, lon float64) string {
	return fmt.Sprintf("%v,%v", lat, lon)
}

func climateEvent(t *testing.T, id string, lat float64) domain.Event {
	t.Helper()
	start, err := time.Parse(domain.TimestampLayout, "2010-07-04T12:00:00-07:00")
	require.NoError(t, err)
	lon := -118.25
	return domain.Event{ID: id, StartDate: &start, Latitude: &lat, Longitude: &lon}
}

func testCollector(tm TimeMachine, cfg ClimateConfig) *ClimateCollector {
	return NewClimateCollector(tm, cfg, testLogger(), observability.NewMetricsForTesting())
}

func TestCollect(t *testing.T) {
	tm := &fakeTimeMachine{}
	c := testCollector(tm, ClimateConfig{Interval: domain.IntervalHourly, Units: 24, Limit: 2})

	results := c.Collect(context.Background(), []domain.Event{climateEvent(t, "CA-001", 34.05)})

	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, "CA-001", res.EventID)
	assert.False(t, res.Failed())
	assert.Equal(t, "2010-07-03T12:00:00-07:00", res.StartDate)
	assert.Equal(t, "2010-07-05T12:00:00-07:00", res.EndDate)
	assert.Equal(t, 3, res.Requests, "one request per day, overshooting the end")
	assert.Len(t, res.Days, 3)
	assert.False(t, res.CollectedAt.IsZero())
}

func TestCollectIsolatesFailures(t *testing.T) {
	tm := &fakeTimeMachine{}
	c := testCollector(tm, ClimateConfig{Interval: domain.IntervalHourly, Units: 24, Limit: 2})

	noStart := domain.Event{ID: "broken"}
	results := c.Collect(context.Background(), []domain.Event{noStart, climateEvent(t, "CA-001", 34.05)})

	require.Len(t, results, 2)
	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Err, "broken")
	assert.False(t, results[1].Failed(), "sibling event still collected")
}

func TestCollectMarksFailedDays(t *testing.T) {
	tm := &fakeTimeMachine{failFor: map[string]error{key(34.05, -118.25): errors.New("status 500")}}
	c := testCollector(tm, ClimateConfig{Interval: domain.IntervalHourly, Units: 24, Limit: 1})

	results := c.Collect(context.Background(), []domain.Event{climateEvent(t, "CA-001", 34.05)})

	require.Len(t, results, 1)
	res := results[0]
	assert.False(t, res.Failed(), "day failures do not fail the event")
	require.Len(t, res.Days, 3)
	for _, day := range res.Days {
		assert.Equal(t, "status 500", day.Err)
	}
}

func TestCollectBoundsConcurrency(t *testing.T) {
	tm := &fakeTimeMachine{}
	c := testCollector(tm, ClimateConfig{Interval: domain.IntervalHourly, Units: 24, Limit: 2})

	events := make([]domain.Event, 6)
	for i := range events {
		events[i] = climateEvent(t, "ev", 30.0+float64(i))
	}

	c.Collect(context.Background(), events)

	tm.mu.Lock()
	defer tm.mu.Unlock()
	assert.LessOrEqual(t, tm.peak, 2)
	assert.Len(t, tm.requests, 6*3)
}

func TestAlign(t *testing.T) {
	c := testCollector(&fakeTimeMachine{}, ClimateConfig{Interval: domain.IntervalHourly, Units: 1, Limit: 1})

	results := []domain.ClimateResult{
		{
			EventID:   "ok",
			Interval:  domain.IntervalHourly,
			StartDate: "2010-07-04T11:00:00-07:00",
			Days: []domain.DayResponse{{
				Hourly: &domain.DataBlock{Data: []domain.Point{
					{"time": 1278266400.0}, {"time": 1278270000.0}, {"time": 1278273600.0},
				}},
			}},
		},
		{EventID: "failed", Err: "latitude, longitude, or start date not provided"},
	}

	windows := c.Align(results)

	require.Len(t, windows, 1)
	assert.Equal(t, "ok", windows[0].EventID)
	assert.Len(t, windows[0].Points, 3)
	assert.True(t, windows[0].Complete(1))
}
