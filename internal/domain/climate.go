package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Interval is the time granularity of a climate window.
type Interval string

const (
	IntervalHourly Interval = "hourly"
	IntervalDaily  Interval = "daily"
)

// Per-event climate failures. They mark a single event's window as unusable
// without aborting sibling events.
var (
	ErrUnsupportedInterval = errors.New("unsupported time interval")
	ErrDateOrder           = errors.New("window start is after window end")
	ErrMissingLocation     = errors.New("latitude, longitude, or start date not provided")
)

// Window bounds a climate span of units intervals on each side of the
// event's ignition time. Bounds keep the ignition timestamp's fixed UTC
// offset; the offset is not re-resolved per step, so a span crossing a DST
// switch stays arithmetically uniform.
func Window(ev Event, interval Interval, units int) (start, end time.Time, err error) {
	if ev.Latitude == nil || ev.Longitude == nil || ev.StartDate == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event %s: %w", ev.ID, ErrMissingLocation)
	}

	_, offset := ev.StartDate.Zone()
	ignition := ev.StartDate.In(time.FixedZone("", offset))

	switch interval {
	case IntervalHourly:
		start = ignition.Add(-time.Duration(units) * time.Hour)
		end = ignition.Add(time.Duration(units) * time.Hour)
	case IntervalDaily:
		start = ignition.AddDate(0, 0, -units)
		end = ignition.AddDate(0, 0, units)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("event %s: %w (%q)", ev.ID, ErrUnsupportedInterval, interval)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("event %s: %w (%s to %s)",
			ev.ID, ErrDateOrder, start.Format(TimestampLayout), end.Format(TimestampLayout))
	}
	return start, end, nil
}

// FetchTimes lists the per-day request instants covering [start, end]: one
// request per local day, stepping from the window start until end is reached
// or passed. The final request may overshoot end by up to a day; the upstream
// API returns whole local days regardless, so callers get at least the full
// window.
func FetchTimes(start, end time.Time) []time.Time {
	times := []time.Time{start}
	for t := start; t.Before(end); {
		t = t.AddDate(0, 0, 1)
		times = append(times, t)
	}
	return times
}

// Point is one weather observation: an open mapping of property names to
// values plus a "time" field.
type Point map[string]any

// DataBlock is the per-interval payload inside a time-machine response.
type DataBlock struct {
	Summary string  `json:"summary,omitempty" bson:"summary,omitempty"`
	Icon    string  `json:"icon,omitempty" bson:"icon,omitempty"`
	Data    []Point `json:"data,omitempty" bson:"data,omitempty"`
}

// DayResponse is one day's time-machine API response. Err carries the
// API-level or transport error for a day that could not be fetched.
type DayResponse struct {
	Latitude  float64    `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude float64    `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Timezone  string     `json:"timezone,omitempty" bson:"timezone,omitempty"`
	Offset    float64    `json:"offset,omitempty" bson:"offset,omitempty"`
	Hourly    *DataBlock `json:"hourly,omitempty" bson:"hourly,omitempty"`
	Daily     *DataBlock `json:"daily,omitempty" bson:"daily,omitempty"`
	Err       string     `json:"error,omitempty" bson:"error,omitempty"`
}

// Block returns the payload for the requested interval, nil when absent.
func (d DayResponse) Block(interval Interval) *DataBlock {
	switch interval {
	case IntervalHourly:
		return d.Hourly
	case IntervalDaily:
		return d.Daily
	}
	return nil
}

// ClimateResult is the raw fetched span for one event, or its failure.
type ClimateResult struct {
	EventID     string        `json:"Event" bson:"Event"`
	Interval    Interval      `json:"interval,omitempty" bson:"interval,omitempty"`
	StartDate   string        `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Latitude    float64       `json:"latitude" bson:"latitude"`
	Longitude   float64       `json:"longitude" bson:"longitude"`
	Requests    int           `json:"requests" bson:"requests"`
	CollectedAt time.Time     `json:"collectedAt" bson:"collectedAt"`
	Days        []DayResponse `json:"days,omitempty" bson:"days,omitempty"`
	Err         string        `json:"error,omitempty" bson:"error,omitempty"`
}

// Failed reports whether the result carries a per-event error marker.
func (c ClimateResult) Failed() bool {
	return c.Err != ""
}

// ClimateWindow is the aligned, flat point sequence for one event.
type ClimateWindow struct {
	EventID   string  `json:"Event" bson:"Event"`
	Latitude  float64 `json:"Latitude" bson:"Latitude"`
	Longitude float64 `json:"Longitude" bson:"Longitude"`
	Points    []Point `json:"points" bson:"points"`
}

// Complete reports whether the window holds the expected point count for a
// span of units intervals each side of ignition.
func (w ClimateWindow) Complete(units int) bool {
	return len(w.Points) == 2*units+1
}

// AlignWindow concatenates a result's per-day observation arrays into one
// chronologically ordered sequence. Unix point times are rewritten as local
// timestamps at the window's offset. A day that failed, or came back without
// the requested interval, contributes a single error-marker point so the gap
// stays visible downstream.
func AlignWindow(res ClimateResult) ClimateWindow {
	w := ClimateWindow{EventID: res.EventID, Latitude: res.Latitude, Longitude: res.Longitude}
	loc := alignmentZone(res)
	for _, day := range res.Days {
		block := day.Block(res.Interval)
		switch {
		case day.Err != "":
			w.Points = append(w.Points, Point{"error": day.Err})
		case block == nil || len(block.Data) == 0:
			w.Points = append(w.Points, Point{
				"error": fmt.Sprintf("no %q data found for (%v, %v)", res.Interval, res.Latitude, res.Longitude),
			})
		default:
			for _, p := range block.Data {
				w.Points = append(w.Points, alignPoint(p, loc))
			}
		}
	}
	return w
}

// alignmentZone recovers the window's fixed offset from its formatted start
// bound, falling back to UTC when the result predates the bound fields.
func alignmentZone(res ClimateResult) *time.Location {
	if t, err := time.Parse(TimestampLayout, res.StartDate); err == nil {
		return t.Location()
	}
	return time.UTC
}

// alignPoint rewrites a point's unix "time" into the window-local timestamp,
// leaving every other property untouched.
func alignPoint(p Point, loc *time.Location) Point {
	out := make(Point, len(p))
	for k, v := range p {
		out[k] = v
	}
	if sec, ok := numeric(p["time"]); ok {
		out["time"] = time.Unix(int64(sec), 0).In(loc).Format(TimestampLayout)
	}
	return out
}

// OffsetLabel names point index i relative to ignition at index units:
// offsets before ignition as "_N", ignition and after as the bare integer.
func OffsetLabel(i, units int) string {
	if i < units {
		return "_" + strconv.Itoa(units-i)
	}
	return strconv.Itoa(i - units)
}
