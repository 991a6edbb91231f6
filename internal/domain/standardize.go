package domain

import (
	"fmt"
	"strconv"
	"time"
)

// TimezoneResolver maps a coordinate pair to its IANA timezone.
type TimezoneResolver interface {
	Resolve(lat, lon float64) (*time.Location, error)
}

// Per-era extraction sets. Columns listed here map onto canonical Event
// fields; everything else on a record passes through untouched.
var (
	columnsA = []string{"startdate", "ename", "latdd", "longdd", "un_ustate", "acres", "ecosts", identityA}
	columnsB = []string{"start_date", "start_hour", "fire_name", "latitude", "longitude", "state", "area_", "area_meas", identityB}
	columnsC = []string{"firediscoverydatetime", "incidentname", "latitude", "longitude", "state", "acres", identityC}
)

// Standardize maps a classified raw record into the canonical Event. Fields
// it cannot compute become nil; malformed values never fail the record. An
// error is returned only for an unclassified tag, which the pipeline screens
// out before this point.
func Standardize(r RawRecord, tag SchemaTag, tz TimezoneResolver) (Event, error) {
	switch tag {
	case SchemaA:
		return standardizeA(r, tz), nil
	case SchemaB:
		return standardizeB(r, tz), nil
	case SchemaC:
		return standardizeC(r, tz), nil
	}
	return Event{}, fmt.Errorf("standardize: record matches no known schema")
}

func standardizeA(r RawRecord, tz TimezoneResolver) Event {
	lat, lon := r.floatField("latdd"), r.floatField("longdd")
	return Event{
		ID:        r.stringField(identityA),
		Name:      r.stringPtrField("ename"),
		StartDate: localCalendarDate(r.stringField("startdate"), "", lat, lon, tz),
		Latitude:  lat,
		Longitude: lon,
		State:     r.stringPtrField("un_ustate"),
		Size:      r.floatField("acres"),
		Costs:     r.floatField("ecosts"),
		Extra:     passthrough(r, columnsA),
	}
}

func standardizeB(r RawRecord, tz TimezoneResolver) Event {
	lat, lon := r.floatField("latitude"), r.floatField("longitude")
	return Event{
		ID:        r.stringField(identityB),
		Name:      r.stringPtrField("fire_name"),
		StartDate: localCalendarDate(r.stringField("start_date"), r.stringField("start_hour"), lat, lon, tz),
		Latitude:  lat,
		Longitude: lon,
		State:     r.stringPtrField("state"),
		Size:      r.floatField("area_"),
		Extra:     passthrough(r, columnsB),
	}
}

func standardizeC(r RawRecord, tz TimezoneResolver) Event {
	lat, lon := r.floatField("latitude"), r.floatField("longitude")
	return Event{
		ID:        r.stringField(identityC),
		Name:      r.stringPtrField("incidentname"),
		StartDate: epochDate(r.stringField("firediscoverydatetime"), lat, lon, tz),
		Latitude:  lat,
		Longitude: lon,
		State:     r.stringPtrField("state"),
		Size:      r.floatField("acres"),
		Extra:     passthrough(r, columnsC),
	}
}

// localCalendarDate interprets an MM/DD/YYYY date plus an optional HHMM clock
// time as wall time in the timezone at (lat, lon), yielding an instant with
// the DST-correct historical offset for that date. Any missing or malformed
// input yields nil.
func localCalendarDate(dateStr, hhmm string, lat, lon *float64, tz TimezoneResolver) *time.Time {
	if dateStr == "" || lat == nil || lon == nil || tz == nil {
		return nil
	}
	hour, mins := 0, 0
	if hhmm != "" {
		h, m, ok := splitClock(hhmm)
		if !ok {
			return nil
		}
		hour, mins = h, m
	}
	loc, err := tz.Resolve(*lat, *lon)
	if err != nil {
		return nil
	}
	t, err := time.ParseInLocation("1/2/2006 15:04", fmt.Sprintf("%s %02d:%02d", dateStr, hour, mins), loc)
	if err != nil {
		return nil
	}
	return &t
}

// epochDate converts a unix-epoch-millisecond timestamp to local time in the
// timezone at (lat, lon).
func epochDate(msField string, lat, lon *float64, tz TimezoneResolver) *time.Time {
	if msField == "" || lat == nil || lon == nil || tz == nil {
		return nil
	}
	ms, err := strconv.ParseFloat(msField, 64)
	if err != nil {
		return nil
	}
	loc, err := tz.Resolve(*lat, *lon)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(int64(ms)).In(loc)
	return &t
}

// splitClock parses an HHMM string (e.g. "1510" -> 15:10). The upstream
// column is nominally four digits but is sometimes short or out of range.
func splitClock(s string) (int, int, bool) {
	if len(s) < 4 {
		return 0, 0, false
	}
	hour, errH := strconv.Atoi(s[:2])
	mins, errM := strconv.Atoi(s[2:4])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return 0, 0, false
	}
	return hour, mins, true
}

// passthrough copies every column outside the extraction set.
func passthrough(r RawRecord, consumed []string) map[string]any {
	skip := make(map[string]struct{}, len(consumed))
	for _, k := range consumed {
		skip[k] = struct{}{}
	}
	extra := make(map[string]any, len(r))
	for k, v := range r {
		if _, ok := skip[k]; ok {
			continue
		}
		extra[k] = v
	}
	return extra
}
