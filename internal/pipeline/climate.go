package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/observability"
)

// TimeMachine fetches one local day of historical weather for a coordinate.
type TimeMachine interface {
	Fetch(ctx context.Context, lat, lon float64, at time.Time, interval domain.Interval) (domain.DayResponse, error)
}

// ClimateConfig bounds the collection fan-out.
type ClimateConfig struct {
	Interval domain.Interval
	Units    int
	Limit    int // events fetched concurrently
}

// ClimateCollector fetches and aligns weather windows per event.
type ClimateCollector struct {
	tm      TimeMachine
	cfg     ClimateConfig
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClimateCollector wires the climate stage.
func NewClimateCollector(tm TimeMachine, cfg ClimateConfig, logger *slog.Logger, metrics *observability.Metrics) *ClimateCollector {
	return &ClimateCollector{tm: tm, cfg: cfg, logger: logger, metrics: metrics}
}

// Collect fetches a window per event with bounded concurrency. Requests
// within one event run sequentially; one event's failure never aborts its
// siblings, it becomes an error-tagged result in the same position.
func (c *ClimateCollector) Collect(ctx context.Context, events []domain.Event) []domain.ClimateResult {
	results := make([]domain.ClimateResult, len(events))

	g, ctx := errgroup.WithContext(ctx)
	limit := c.cfg.Limit
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, ev := range events {
		i, ev := i, ev
		g.Go(func() error {
			results[i] = c.collectOne(ctx, ev)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers report failure through their result

	return results
}

func (c *ClimateCollector) collectOne(ctx context.Context, ev domain.Event) domain.ClimateResult {
	start, end, err := domain.Window(ev, c.cfg.Interval, c.cfg.Units)
	if err != nil {
		c.logger.Warn("climate window rejected", "event", ev.ID, "error", err)
		c.metrics.ClimateEventErrors.Inc()
		return domain.ClimateResult{EventID: ev.ID, Err: err.Error()}
	}

	res := domain.ClimateResult{
		EventID:     ev.ID,
		Interval:    c.cfg.Interval,
		StartDate:   start.Format(domain.TimestampLayout),
		EndDate:     end.Format(domain.TimestampLayout),
		Latitude:    *ev.Latitude,
		Longitude:   *ev.Longitude,
		CollectedAt: domain.Now(),
	}

	times := domain.FetchTimes(start, end)
	c.logger.Info("collecting climate window",
		"event", ev.ID, "start", res.StartDate, "end", res.EndDate, "requests", len(times))

	for _, at := range times {
		if ctx.Err() != nil {
			res.Err = ctx.Err().Error()
			c.metrics.ClimateEventErrors.Inc()
			return res
		}
		day, err := c.tm.Fetch(ctx, *ev.Latitude, *ev.Longitude, at, c.cfg.Interval)
		res.Requests++
		if err != nil {
			c.metrics.ClimateRequests.WithLabelValues("error").Inc()
			c.logger.Warn("time machine request failed", "event", ev.ID, "at", at.Format(domain.TimestampLayout), "error", err)
			day = domain.DayResponse{Err: err.Error()}
		} else {
			c.metrics.ClimateRequests.WithLabelValues("success").Inc()
		}
		res.Days = append(res.Days, day)
	}
	return res
}

// Align converts fetched results into point windows, dropping error-tagged
// results. Windows shorter than the expected span are kept but logged.
func (c *ClimateCollector) Align(results []domain.ClimateResult) []domain.ClimateWindow {
	windows := make([]domain.ClimateWindow, 0, len(results))
	for _, res := range results {
		if res.Failed() {
			c.logger.Warn("skipping error-tagged climate result", "event", res.EventID, "error", res.Err)
			continue
		}
		w := domain.AlignWindow(res)
		if len(w.Points) < 2*c.cfg.Units+1 {
			c.logger.Warn("climate window shorter than expected",
				"event", res.EventID, "points", len(w.Points), "expected", 2*c.cfg.Units+1)
		}
		windows = append(windows, w)
		c.metrics.WindowsAligned.Inc()
	}
	return windows
}
