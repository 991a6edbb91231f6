// Package pipeline orchestrates the batch stages: raw-record reconciliation,
// climate window collection, and training-feature building. It owns logging,
// metrics, and per-event error isolation; the domain package owns the rules.
package pipeline

import (
	"log/slog"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/observability"
)

// Standardizer reconciles raw incident batches into canonical events.
type Standardizer struct {
	tz      domain.TimezoneResolver
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStandardizer wires the reconciliation stage.
func NewStandardizer(tz domain.TimezoneResolver, logger *slog.Logger, metrics *observability.Metrics) *Standardizer {
	return &Standardizer{tz: tz, logger: logger, metrics: metrics}
}

// StandardizeOutcome carries each intermediate batch of the reconciliation
// chain, so callers can persist every stage, plus the stage counts.
type StandardizeOutcome struct {
	Known     []domain.RawRecord
	Unique    []domain.RawRecord
	Wildfires []domain.RawRecord
	Events    []domain.Event

	Total         int
	UnknownSchema int
	Duplicates    int
	NonWildfire   int
}

// Run reconciles a raw batch: drop and count unknown-schema records, dedupe,
// keep wildfires, standardize, and sort chronologically.
func (s *Standardizer) Run(records []domain.RawRecord) StandardizeOutcome {
	out := StandardizeOutcome{Total: len(records)}

	out.Known = make([]domain.RawRecord, 0, len(records))
	for _, r := range records {
		if domain.Classify(r) == domain.SchemaUnknown {
			out.UnknownSchema++
			s.logger.Warn("record matches no known schema, dropping", "columns", len(r))
			continue
		}
		out.Known = append(out.Known, r)
	}
	s.metrics.UnknownSchemaRecords.Add(float64(out.UnknownSchema))

	out.Unique = domain.Dedupe(out.Known, domain.DuplicateKey)
	out.Duplicates = len(out.Known) - len(out.Unique)
	s.metrics.DuplicatesRemoved.Add(float64(out.Duplicates))

	out.Wildfires = make([]domain.RawRecord, 0, len(out.Unique))
	for _, r := range out.Unique {
		if !domain.IsWildfire(r, domain.Classify(r)) {
			out.NonWildfire++
			continue
		}
		out.Wildfires = append(out.Wildfires, r)
	}
	s.metrics.NonWildfireFiltered.Add(float64(out.NonWildfire))

	out.Events = make([]domain.Event, 0, len(out.Wildfires))
	for _, r := range out.Wildfires {
		ev, err := domain.Standardize(r, domain.Classify(r), s.tz)
		if err != nil {
			s.logger.Warn("standardize failed, skipping record", "error", err)
			continue
		}
		out.Events = append(out.Events, ev)
	}
	s.metrics.EventsStandardized.Add(float64(len(out.Events)))

	domain.SortEvents(out.Events)

	s.logger.Info("batch standardized",
		"total", out.Total,
		"unknown_schema", out.UnknownSchema,
		"duplicates", out.Duplicates,
		"non_wildfire", out.NonWildfire,
		"events", len(out.Events))
	return out
}

// FilterTraining keeps events eligible for the training set: the configured
// state, a usable Size or Costs label, and continental-US coordinates.
// An empty state keeps every state.
func (s *Standardizer) FilterTraining(events []domain.Event, state string) []domain.Event {
	kept := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if state != "" && (ev.State == nil || *ev.State != state) {
			continue
		}
		if ev.Size == nil && ev.Costs == nil {
			continue
		}
		if ev.Latitude == nil || ev.Longitude == nil || !domain.InBounds(*ev.Latitude, *ev.Longitude) {
			s.logger.Warn("event not in bounds, excluded from training", "event", ev.ID)
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

// EventMap indexes events by identifier for label lookup during combining.
func EventMap(events []domain.Event) map[string]domain.Event {
	byID := make(map[string]domain.Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	return byID
}
