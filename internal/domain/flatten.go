package domain

import "sort"

// FeatureRecord is one flat training row (or the nested narrow form).
type FeatureRecord map[string]any

// CombineConfig controls feature flattening.
type CombineConfig struct {
	// Units is the half-width of the climate window, used to place the
	// ignition point at offset label "0".
	Units int
	// Props optionally restricts which weather properties become columns.
	// Empty means every property except the defaults excluded below.
	Props []string
}

// Properties never useful as model features in the wide forms.
var excludedProps = map[string]struct{}{
	"time": {},
	"icon": {},
}

// reducedProps is the trimmed property set for the reduced training variant.
var reducedProps = []string{"temperature", "humidity", "windSpeed"}

// Flatten produces the wide training record: identity fields, one column per
// (property, offset-label) pair, and the Size/Costs labels from the event.
// Properties missing from a point simply produce no column for that offset.
func Flatten(w ClimateWindow, ev Event, cfg CombineConfig) FeatureRecord {
	rec := FeatureRecord{
		FieldEvent:     w.EventID,
		FieldLatitude:  w.Latitude,
		FieldLongitude: w.Longitude,
	}
	for i, p := range w.Points {
		label := OffsetLabel(i, cfg.Units)
		for _, prop := range pointProps(p, cfg.Props) {
			rec[prop+label] = p[prop]
		}
	}
	rec[FieldSize] = ptrValue(ev.Size)
	rec[FieldCosts] = ptrValue(ev.Costs)
	return rec
}

// FlattenReduced is Flatten restricted to the temperature, humidity, and
// windSpeed columns.
func FlattenReduced(w ClimateWindow, ev Event, cfg CombineConfig) FeatureRecord {
	cfg.Props = reducedProps
	return Flatten(w, ev, cfg)
}

// TimeValue is one narrow-form observation.
type TimeValue struct {
	Time  any `json:"time" bson:"time"`
	Value any `json:"value" bson:"value"`
}

// FlattenNarrow produces the nested per-property form: a Features field
// mapping each weather property to its chronological {time, value} pairs.
// Offsets are positional rather than labeled.
func FlattenNarrow(w ClimateWindow, ev Event) FeatureRecord {
	features := make(map[string][]TimeValue)
	for _, p := range w.Points {
		for _, prop := range pointProps(p, nil) {
			features[prop] = append(features[prop], TimeValue{Time: p["time"], Value: p[prop]})
		}
	}
	return FeatureRecord{
		FieldEvent:     w.EventID,
		FieldLatitude:  w.Latitude,
		FieldLongitude: w.Longitude,
		"Features":     features,
		FieldSize:      ptrValue(ev.Size),
		FieldCosts:     ptrValue(ev.Costs),
	}
}

// pointProps selects the properties a point contributes. With an allow-list,
// only listed properties present on the point qualify, in list order;
// otherwise every property except the excluded set, sorted for determinism.
func pointProps(p Point, allow []string) []string {
	if allow != nil {
		props := make([]string, 0, len(allow))
		for _, prop := range allow {
			if _, ok := p[prop]; ok {
				props = append(props, prop)
			}
		}
		return props
	}
	props := make([]string, 0, len(p))
	for prop := range p {
		if _, skip := excludedProps[prop]; skip {
			continue
		}
		props = append(props, prop)
	}
	sort.Strings(props)
	return props
}
