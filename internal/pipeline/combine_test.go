package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/observability"
)

func testCombiner(cfg domain.CombineConfig) *Combiner {
	return NewCombiner(cfg, testLogger(), observability.NewMetricsForTesting())
}

func combineFixtures() ([]domain.ClimateWindow, map[string]domain.Event) {
	size := 120.0
	windows := []domain.ClimateWindow{
		{
			EventID:   "CA-001",
			Latitude:  34.05,
			Longitude: -118.25,
			Points: []domain.Point{
				{"time": "2010-07-04T11:00:00-07:00", "temperature": 20.0, "pressure": 1012.0},
				{"time": "2010-07-04T12:00:00-07:00", "temperature": 24.0, "pressure": 1011.0},
				{"time": "2010-07-04T13:00:00-07:00", "temperature": 27.0, "pressure": 1010.0},
			},
		},
		{EventID: "orphan", Points: []domain.Point{{"time": "t", "temperature": 1.0}}},
	}
	byID := map[string]domain.Event{
		"CA-001": {ID: "CA-001", Size: &size},
	}
	return windows, byID
}

func TestCombinerWide(t *testing.T) {
	windows, byID := combineFixtures()
	records := testCombiner(domain.CombineConfig{Units: 1}).Wide(windows, byID)

	require.Len(t, records, 1, "windows without a training event are dropped")
	rec := records[0]
	assert.Equal(t, "CA-001", rec[domain.FieldEvent])
	assert.Equal(t, 20.0, rec["temperature_1"])
	assert.Equal(t, 24.0, rec["temperature0"])
	assert.Equal(t, 1010.0, rec["pressure1"])
	assert.Equal(t, 120.0, rec[domain.FieldSize])
}

func TestCombinerReduced(t *testing.T) {
	windows, byID := combineFixtures()
	records := testCombiner(domain.CombineConfig{Units: 1}).Reduced(windows, byID)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 24.0, rec["temperature0"])
	_, hasPressure := rec["pressure0"]
	assert.False(t, hasPressure, "reduced form drops properties outside its set")
}

func TestCombinerNarrow(t *testing.T) {
	windows, byID := combineFixtures()
	records := testCombiner(domain.CombineConfig{Units: 1}).Narrow(windows, byID)

	require.Len(t, records, 1)
	features, ok := records[0]["Features"].(map[string][]domain.TimeValue)
	require.True(t, ok)
	require.Len(t, features["temperature"], 3)
	assert.Equal(t, 27.0, features["temperature"][2].Value)
}

func TestCombinerWideAllowList(t *testing.T) {
	windows, byID := combineFixtures()
	cfg := domain.CombineConfig{Units: 1, Props: []string{"pressure"}}
	records := testCombiner(cfg).Wide(windows, byID)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 1011.0, rec["pressure0"])
	_, hasTemp := rec["temperature0"]
	assert.False(t, hasTemp)
}
