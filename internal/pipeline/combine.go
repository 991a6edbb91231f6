package pipeline

import (
	"log/slog"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/observability"
)

// Combiner builds training records from aligned windows and the event map.
type Combiner struct {
	cfg     domain.CombineConfig
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCombiner wires the feature-building stage.
func NewCombiner(cfg domain.CombineConfig, logger *slog.Logger, metrics *observability.Metrics) *Combiner {
	return &Combiner{cfg: cfg, logger: logger, metrics: metrics}
}

// Wide builds the one-column-per-offset training form.
func (c *Combiner) Wide(windows []domain.ClimateWindow, byID map[string]domain.Event) []domain.FeatureRecord {
	return c.build(windows, byID, "wide", func(w domain.ClimateWindow, ev domain.Event) domain.FeatureRecord {
		return domain.Flatten(w, ev, c.cfg)
	})
}

// Reduced builds the wide form restricted to the reduced property set.
func (c *Combiner) Reduced(windows []domain.ClimateWindow, byID map[string]domain.Event) []domain.FeatureRecord {
	return c.build(windows, byID, "reduced", func(w domain.ClimateWindow, ev domain.Event) domain.FeatureRecord {
		return domain.FlattenReduced(w, ev, c.cfg)
	})
}

// Narrow builds the nested per-property time-series form.
func (c *Combiner) Narrow(windows []domain.ClimateWindow, byID map[string]domain.Event) []domain.FeatureRecord {
	return c.build(windows, byID, "narrow", func(w domain.ClimateWindow, ev domain.Event) domain.FeatureRecord {
		return domain.FlattenNarrow(w, ev)
	})
}

func (c *Combiner) build(
	windows []domain.ClimateWindow,
	byID map[string]domain.Event,
	form string,
	flatten func(domain.ClimateWindow, domain.Event) domain.FeatureRecord,
) []domain.FeatureRecord {
	records := make([]domain.FeatureRecord, 0, len(windows))
	for _, w := range windows {
		ev, ok := byID[w.EventID]
		if !ok {
			c.logger.Warn("no training event for climate window, skipping", "event", w.EventID, "form", form)
			continue
		}
		records = append(records, flatten(w, ev))
		c.metrics.FeatureRecordsBuilt.WithLabelValues(form).Inc()
	}
	c.logger.Info("feature records built", "form", form, "records", len(records))
	return records
}
