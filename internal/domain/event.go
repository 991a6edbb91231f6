package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Canonical field names shared by the standardized, training, and feature
// collections.
const (
	FieldEvent        = "Event"
	FieldIncidentName = "Incident Name"
	FieldStartDate    = "Start Date"
	FieldLatitude     = "Latitude"
	FieldLongitude    = "Longitude"
	FieldState        = "State"
	FieldSize         = "Size"
	FieldCosts        = "Costs"
)

// TimestampLayout renders local timestamps with the fixed UTC offset resolved
// at standardization, e.g. "2010-07-04T00:00:00-07:00".
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Event is the canonical, deduplicated representation of one real-world
// wildfire. Pointer fields are nil when the source value was missing or
// unparseable; Extra passes through every source column outside the
// standardized set under its original name.
type Event struct {
	ID        string
	Name      *string
	StartDate *time.Time
	Latitude  *float64
	Longitude *float64
	State     *string
	Size      *float64
	Costs     *float64

	Extra map[string]any
}

// Document flattens the event into a single map: pass-through extras first,
// canonical fields on top so they always win a name collision.
func (e Event) Document() map[string]any {
	doc := make(map[string]any, len(e.Extra)+8)
	for k, v := range e.Extra {
		doc[k] = v
	}
	doc[FieldEvent] = e.ID
	doc[FieldIncidentName] = ptrValue(e.Name)
	if e.StartDate != nil {
		doc[FieldStartDate] = e.StartDate.Format(TimestampLayout)
	} else {
		doc[FieldStartDate] = nil
	}
	doc[FieldLatitude] = ptrValue(e.Latitude)
	doc[FieldLongitude] = ptrValue(e.Longitude)
	doc[FieldState] = ptrValue(e.State)
	doc[FieldSize] = ptrValue(e.Size)
	doc[FieldCosts] = ptrValue(e.Costs)
	return doc
}

// MarshalJSON emits the flattened document form.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Document())
}

// EventFromDocument rebuilds an Event from its flattened document form.
// Canonical fields fold back into the struct; everything else lands in Extra.
func EventFromDocument(doc map[string]any) Event {
	e := Event{Extra: make(map[string]any)}
	for k, v := range doc {
		switch k {
		case FieldEvent:
			if v != nil {
				e.ID = scalarString(v)
			}
		case FieldIncidentName:
			e.Name = docString(v)
		case FieldStartDate:
			e.StartDate = docTime(v)
		case FieldLatitude:
			e.Latitude = docFloat(v)
		case FieldLongitude:
			e.Longitude = docFloat(v)
		case FieldState:
			e.State = docString(v)
		case FieldSize:
			e.Size = docFloat(v)
		case FieldCosts:
			e.Costs = docFloat(v)
		default:
			e.Extra[k] = v
		}
	}
	return e
}

// SortEvents orders events chronologically by start date, events without one
// first. The sort is stable so same-instant events keep input order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].StartDate, events[j].StartDate
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		}
		return a.Before(*b)
	})
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func docString(v any) *string {
	if v == nil {
		return nil
	}
	s := scalarString(v)
	return &s
}

func docFloat(v any) *float64 {
	f, ok := numeric(v)
	if !ok {
		return nil
	}
	return &f
}

func docTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// numeric unwraps the number representations the JSON and BSON decoders
// produce.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
