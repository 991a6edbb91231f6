package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDocument(t *testing.T) {
	name := "Test Fire"
	state := "CA"
	lat, lon := 34.05, -118.25
	size := 120.0
	start := time.Date(2010, 7, 4, 0, 0, 0, 0, time.FixedZone("", -7*3600))

	ev := Event{
		ID:        "CA-001",
		Name:      &name,
		StartDate: &start,
		Latitude:  &lat,
		Longitude: &lon,
		State:     &state,
		Size:      &size,
		Extra:     map[string]any{"objectid": 7.0, "Event": "shadowed"},
	}

	doc := ev.Document()

	assert.Equal(t, "CA-001", doc[FieldEvent], "canonical fields win name collisions")
	assert.Equal(t, "Test Fire", doc[FieldIncidentName])
	assert.Equal(t, "2010-07-04T00:00:00-07:00", doc[FieldStartDate])
	assert.Equal(t, 34.05, doc[FieldLatitude])
	assert.Equal(t, -118.25, doc[FieldLongitude])
	assert.Equal(t, "CA", doc[FieldState])
	assert.Equal(t, 120.0, doc[FieldSize])
	assert.Nil(t, doc[FieldCosts])
	assert.Equal(t, 7.0, doc["objectid"])
}

func TestEventJSONRoundTrip(t *testing.T) {
	size := 120.0
	start := time.Date(2010, 7, 4, 0, 0, 0, 0, time.FixedZone("", -7*3600))
	ev := Event{ID: "CA-001", StartDate: &start, Size: &size, Extra: map[string]any{"objectid": 7.0}}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	back := EventFromDocument(doc)
	assert.Equal(t, "CA-001", back.ID)
	require.NotNil(t, back.StartDate)
	assert.True(t, back.StartDate.Equal(start))
	require.NotNil(t, back.Size)
	assert.Equal(t, 120.0, *back.Size)
	assert.Nil(t, back.Name)
	assert.Nil(t, back.Costs)
	assert.Equal(t, 7.0, back.Extra["objectid"])
}

func TestSortEvents(t *testing.T) {
	at := func(day int) *time.Time {
		d := time.Date(2010, 7, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	events := []Event{
		{ID: "later", StartDate: at(9)},
		{ID: "undated-1"},
		{ID: "earlier", StartDate: at(2)},
		{ID: "undated-2"},
	}

	SortEvents(events)

	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	assert.Equal(t, []string{"undated-1", "undated-2", "earlier", "later"}, ids)
}
