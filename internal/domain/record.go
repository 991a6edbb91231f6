package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RawRecord is one incident row as received from an upstream yearly layer: an
// open mapping of source column names to scalar values. Column sets differ by
// schema era, so records stay schemaless until classified.
type RawRecord map[string]any

// SchemaTag identifies which source-era schema a raw record belongs to.
type SchemaTag int

const (
	SchemaUnknown SchemaTag = iota
	SchemaA                 // 2002-2005 layers
	SchemaB                 // 2006-2015 layers
	SchemaC                 // 2016-2018 layers
)

func (t SchemaTag) String() string {
	switch t {
	case SchemaA:
		return "A"
	case SchemaB:
		return "B"
	case SchemaC:
		return "C"
	}
	return "unknown"
}

// Sentinel and identity columns per schema era. The sentinel carries the
// incident-type code; the identity column names the real-world incident.
const (
	sentinelA = "itype"
	sentinelB = "inc_type"
	sentinelC = "incidenttypecategory"

	identityA = "event_id"
	identityB = "incident_n"
	identityC = "uniquefireidentifier"
)

// Classify sniffs a record's sentinel columns in era order. A sentinel counts
// as present when the key exists with a non-nil, non-empty value.
func Classify(r RawRecord) SchemaTag {
	switch {
	case r.Has(sentinelA):
		return SchemaA
	case r.Has(sentinelB):
		return SchemaB
	case r.Has(sentinelC):
		return SchemaC
	}
	return SchemaUnknown
}

// Has reports whether key holds a usable value: present, non-nil, and
// non-empty when a string.
func (r RawRecord) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return s != ""
	}
	return true
}

// DuplicateKey derives the duplicate-class key for a record: the schema's
// identity column serialized as a one-field JSON object, so records naming
// the same incident collide regardless of other column noise. Unclassified
// records key on their full canonical serialization and only collide with
// exact copies.
func DuplicateKey(r RawRecord) string {
	switch Classify(r) {
	case SchemaA:
		return identityKey(identityA, r[identityA])
	case SchemaB:
		return identityKey(identityB, r[identityB])
	case SchemaC:
		return identityKey(identityC, r[identityC])
	}
	return canonicalJSON(r)
}

func identityKey(column string, v any) string {
	val, err := json.Marshal(v)
	if err != nil {
		val = []byte("null")
	}
	return fmt.Sprintf("{%q:%s}", column, val)
}

// canonicalJSON serializes a record with sorted keys so equal records always
// produce equal strings. encoding/json already sorts map keys, but going
// through a map[string]any round trip would lose non-marshalable values, so
// the object is assembled by hand.
func canonicalJSON(r RawRecord) string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kj, _ := json.Marshal(k)
		vj, err := json.Marshal(r[k])
		if err != nil {
			vj = []byte("null")
		}
		b.Write(kj)
		b.WriteByte(':')
		b.Write(vj)
	}
	b.WriteByte('}')
	return b.String()
}

// stringField returns the trimmed string form of a scalar column, or ""
// when the column is missing, nil, or blank.
func (r RawRecord) stringField(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(scalarString(v))
}

// stringPtrField is stringField with missing/blank mapped to nil.
func (r RawRecord) stringPtrField(key string) *string {
	s := r.stringField(key)
	if s == "" {
		return nil
	}
	return &s
}

// floatField parses a column as float64; missing, blank, or malformed
// values yield nil rather than an error.
func (r RawRecord) floatField(key string) *float64 {
	s := r.stringField(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// scalarString renders a decoded JSON scalar as its source text.
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}
