package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(t *testing.T, iso string) Event {
	t.Helper()
	start, err := time.Parse(TimestampLayout, iso)
	require.NoError(t, err)
	lat, lon := 34.05, -118.25
	return Event{ID: "CA-001", StartDate: &start, Latitude: &lat, Longitude: &lon}
}

func TestWindow(t *testing.T) {
	t.Run("hourly bounds keep the ignition offset", func(t *testing.T) {
		ev := testEvent(t, "2010-07-04T12:00:00-07:00")

		start, end, err := Window(ev, IntervalHourly, 336)
		require.NoError(t, err)

		assert.Equal(t, "2010-06-20T12:00:00-07:00", start.Format(TimestampLayout))
		assert.Equal(t, "2010-07-18T12:00:00-07:00", end.Format(TimestampLayout))
	})

	t.Run("daily bounds", func(t *testing.T) {
		ev := testEvent(t, "2010-07-04T12:00:00-07:00")

		start, end, err := Window(ev, IntervalDaily, 3)
		require.NoError(t, err)

		assert.Equal(t, "2010-07-01T12:00:00-07:00", start.Format(TimestampLayout))
		assert.Equal(t, "2010-07-07T12:00:00-07:00", end.Format(TimestampLayout))
	})

	t.Run("span crossing a DST switch stays uniform", func(t *testing.T) {
		// 2010-11-07 02:00 is when Pacific time falls back; a window built
		// on an IANA location would shift its displayed offset mid-span.
		loc, err := time.LoadLocation("America/Los_Angeles")
		require.NoError(t, err)
		start := time.Date(2010, 11, 6, 12, 0, 0, 0, loc)
		lat, lon := 34.05, -118.25
		ev := Event{ID: "CA-002", StartDate: &start, Latitude: &lat, Longitude: &lon}

		lo, hi, err := Window(ev, IntervalHourly, 48)
		require.NoError(t, err)

		_, loOffset := lo.Zone()
		_, hiOffset := hi.Zone()
		assert.Equal(t, loOffset, hiOffset)
		assert.Equal(t, 96*time.Hour, hi.Sub(lo))
	})

	t.Run("missing location", func(t *testing.T) {
		start := time.Now()
		ev := Event{ID: "CA-003", StartDate: &start}

		_, _, err := Window(ev, IntervalHourly, 336)
		assert.ErrorIs(t, err, ErrMissingLocation)
		assert.Contains(t, err.Error(), "CA-003")
	})

	t.Run("missing start date", func(t *testing.T) {
		lat, lon := 34.05, -118.25
		ev := Event{ID: "CA-004", Latitude: &lat, Longitude: &lon}

		_, _, err := Window(ev, IntervalHourly, 336)
		assert.ErrorIs(t, err, ErrMissingLocation)
	})

	t.Run("unsupported interval", func(t *testing.T) {
		ev := testEvent(t, "2010-07-04T12:00:00-07:00")

		_, _, err := Window(ev, Interval("minutely"), 336)
		assert.ErrorIs(t, err, ErrUnsupportedInterval)
	})
}

func TestFetchTimes(t *testing.T) {
	base := time.Date(2010, 6, 20, 12, 0, 0, 0, time.UTC)

	t.Run("two-week half-width needs 29 day requests", func(t *testing.T) {
		times := FetchTimes(base, base.AddDate(0, 0, 28))

		require.Len(t, times, 29)
		assert.Equal(t, base, times[0])
		assert.Equal(t, base.AddDate(0, 0, 28), times[28])
	})

	t.Run("sub-day window still overshoots to cover the end", func(t *testing.T) {
		times := FetchTimes(base, base.Add(6*time.Hour))

		require.Len(t, times, 2)
		assert.Equal(t, base.AddDate(0, 0, 1), times[1])
	})

	t.Run("zero-width window", func(t *testing.T) {
		times := FetchTimes(base, base)

		assert.Equal(t, []time.Time{base}, times)
	})
}

func TestAlignWindow(t *testing.T) {
	res := ClimateResult{
		EventID:   "CA-001",
		Interval:  IntervalHourly,
		StartDate: "2010-07-03T12:00:00-07:00",
		Latitude:  34.05,
		Longitude: -118.25,
		Days: []DayResponse{
			{
				Hourly: &DataBlock{Data: []Point{
					{"time": 1278184800.0, "temperature": 21.4, "icon": "clear-day"},
					{"time": 1278188400.0, "temperature": 22.9},
				}},
			},
			{Err: "darksky API error: status 500"},
			{Daily: &DataBlock{Data: []Point{{"time": 1278300000.0}}}},
		},
	}

	w := AlignWindow(res)

	assert.Equal(t, "CA-001", w.EventID)
	assert.Equal(t, 34.05, w.Latitude)
	require.Len(t, w.Points, 4)

	assert.Equal(t, "2010-07-03T12:20:00-07:00", w.Points[0]["time"])
	assert.Equal(t, 21.4, w.Points[0]["temperature"])
	assert.Equal(t, "2010-07-03T13:20:00-07:00", w.Points[1]["time"])

	assert.Equal(t, "darksky API error: status 500", w.Points[2]["error"])
	assert.Contains(t, w.Points[3]["error"], `no "hourly" data found`)
}

func TestAlignWindowDoesNotMutateInput(t *testing.T) {
	point := Point{"time": 1278184800.0}
	res := ClimateResult{
		Interval:  IntervalHourly,
		StartDate: "2010-07-03T12:00:00-07:00",
		Days:      []DayResponse{{Hourly: &DataBlock{Data: []Point{point}}}},
	}

	AlignWindow(res)

	assert.Equal(t, 1278184800.0, point["time"])
}

func TestClimateWindowComplete(t *testing.T) {
	w := ClimateWindow{Points: make([]Point, 673)}
	assert.True(t, w.Complete(336))
	assert.False(t, w.Complete(335))
}

func TestOffsetLabel(t *testing.T) {
	tests := []struct {
		i, units int
		want     string
	}{
		{0, 336, "_336"},
		{335, 336, "_1"},
		{336, 336, "0"},
		{337, 336, "1"},
		{672, 336, "336"},
		{0, 0, "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OffsetLabel(tt.i, tt.units))
	}
}
