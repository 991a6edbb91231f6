// Package mongodb persists every pipeline stage so each one can be re-run
// from the previous stage's output.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tindershed/wildfire-data-etl/internal/adapter/arcgis"
	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

// Coll names a database/collection pair.
type Coll struct {
	DB   string
	Name string
}

func (c Coll) String() string {
	return c.DB + "." + c.Name
}

// Collection chain, in pipeline order.
var (
	CollRaw          = Coll{"arcgis", "raw"}
	CollEvents       = Coll{"arcgis", "events"}
	CollUnique       = Coll{"arcgis", "unique"}
	CollWildfires    = Coll{"arcgis", "wildfires"}
	CollStandardized = Coll{"arcgis", "standardized"}
	CollTraining     = Coll{"arcgis", "training"}
	CollMap          = Coll{"arcgis", "map"}

	CollClimate        = Coll{"climate", "training"}
	CollClimateAligned = Coll{"climate", "training2"}

	CollWide    = Coll{"training", "training"}
	CollReduced = Coll{"training", "trainingReduced"}
	CollNarrow  = Coll{"training", "trainingFormat2"}
)

// Store wraps the document database behind typed stage reads and writes.
type Store struct {
	client *mongo.Client
	logger *slog.Logger
}

// Connect dials the database and verifies the connection.
func Connect(ctx context.Context, uri string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Store{client: client, logger: logger}, nil
}

// Close disconnects from the database.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CheckReadiness pings the database; the HTTP readiness probe calls this.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Replace drops a collection and writes docs in one batch, so a re-run
// leaves no stale residue from the previous run.
func (s *Store) Replace(ctx context.Context, coll Coll, docs []any) error {
	c := s.collection(coll)
	if err := c.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", coll, err)
	}
	if len(docs) == 0 {
		s.logger.Info("collection replaced", "collection", coll.String(), "documents", 0)
		return nil
	}
	if _, err := c.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert into %s: %w", coll, err)
	}
	s.logger.Info("collection replaced", "collection", coll.String(), "documents", len(docs))
	return nil
}

// WriteYearLayers persists the raw yearly downloads.
func (s *Store) WriteYearLayers(ctx context.Context, coll Coll, layers []arcgis.YearLayer) error {
	return s.Replace(ctx, coll, asAny(layers))
}

// WriteRecords persists a raw-record batch.
func (s *Store) WriteRecords(ctx context.Context, coll Coll, records []domain.RawRecord) error {
	return s.Replace(ctx, coll, asAny(records))
}

// ReadRecords loads a raw-record batch.
func (s *Store) ReadRecords(ctx context.Context, coll Coll) ([]domain.RawRecord, error) {
	docs, err := s.readAll(ctx, coll)
	if err != nil {
		return nil, err
	}
	records := make([]domain.RawRecord, len(docs))
	for i, doc := range docs {
		records[i] = domain.RawRecord(doc)
	}
	return records, nil
}

// WriteEvents persists events in their flattened document form.
func (s *Store) WriteEvents(ctx context.Context, coll Coll, events []domain.Event) error {
	docs := make([]any, len(events))
	for i, ev := range events {
		docs[i] = ev.Document()
	}
	return s.Replace(ctx, coll, docs)
}

// ReadEvents loads events back from their flattened document form.
func (s *Store) ReadEvents(ctx context.Context, coll Coll) ([]domain.Event, error) {
	docs, err := s.readAll(ctx, coll)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, len(docs))
	for i, doc := range docs {
		events[i] = domain.EventFromDocument(doc)
	}
	return events, nil
}

// WriteEventMap persists one identifier-keyed lookup document over a batch
// of events, for consumers that join by incident rather than scan.
func (s *Store) WriteEventMap(ctx context.Context, coll Coll, events []domain.Event) error {
	byID := make(map[string]any, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev.Document()
	}
	return s.Replace(ctx, coll, []any{byID})
}

// WriteClimateResults persists fetched climate spans, failures included.
func (s *Store) WriteClimateResults(ctx context.Context, coll Coll, results []domain.ClimateResult) error {
	return s.Replace(ctx, coll, asAny(results))
}

// ReadClimateResults loads fetched climate spans.
func (s *Store) ReadClimateResults(ctx context.Context, coll Coll) ([]domain.ClimateResult, error) {
	var results []domain.ClimateResult
	if err := s.decodeAll(ctx, coll, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteWindows persists aligned climate windows.
func (s *Store) WriteWindows(ctx context.Context, coll Coll, windows []domain.ClimateWindow) error {
	return s.Replace(ctx, coll, asAny(windows))
}

// ReadWindows loads aligned climate windows.
func (s *Store) ReadWindows(ctx context.Context, coll Coll) ([]domain.ClimateWindow, error) {
	var windows []domain.ClimateWindow
	if err := s.decodeAll(ctx, coll, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

// WriteFeatures persists training feature records.
func (s *Store) WriteFeatures(ctx context.Context, coll Coll, records []domain.FeatureRecord) error {
	return s.Replace(ctx, coll, asAny(records))
}

// ReadFeatures loads training feature records.
func (s *Store) ReadFeatures(ctx context.Context, coll Coll) ([]domain.FeatureRecord, error) {
	docs, err := s.readAll(ctx, coll)
	if err != nil {
		return nil, err
	}
	records := make([]domain.FeatureRecord, len(docs))
	for i, doc := range docs {
		records[i] = domain.FeatureRecord(doc)
	}
	return records, nil
}

// TrainingEvents serves the read-only event query.
// Part of the httpapi.EventSource interface.
func (s *Store) TrainingEvents(ctx context.Context) ([]domain.Event, error) {
	return s.ReadEvents(ctx, CollTraining)
}

// FeatureRecords serves the read-only training query.
// Part of the httpapi.EventSource interface.
func (s *Store) FeatureRecords(ctx context.Context) ([]domain.FeatureRecord, error) {
	return s.ReadFeatures(ctx, CollWide)
}

func (s *Store) collection(coll Coll) *mongo.Collection {
	return s.client.Database(coll.DB).Collection(coll.Name)
}

// readAll loads every document in a collection as a plain map, with the
// storage-internal _id stripped.
func (s *Store) readAll(ctx context.Context, coll Coll) ([]map[string]any, error) {
	cur, err := s.collection(coll).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	var docs []map[string]any
	for cur.Next(ctx) {
		var doc map[string]any
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document from %s: %w", coll, err)
		}
		delete(doc, "_id")
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", coll, err)
	}
	return docs, nil
}

// decodeAll loads every document in a collection into a typed slice.
func (s *Store) decodeAll(ctx context.Context, coll Coll, out any) error {
	cur, err := s.collection(coll).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("query %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode documents from %s: %w", coll, err)
	}
	return nil
}

func asAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
