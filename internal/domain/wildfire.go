package domain

import "strings"

// wildfireSentinel is the incident-type code marking a true wildfire across
// all three schema eras.
const wildfireSentinel = "WF"

// IsWildfire reports whether a classified record describes a wildfire,
// using the era-appropriate incident-type column. Unclassified records are
// never wildfires.
func IsWildfire(r RawRecord, tag SchemaTag) bool {
	switch tag {
	case SchemaA:
		return r.stringField(sentinelA) == wildfireSentinel
	case SchemaB:
		return r.stringField(sentinelB) == wildfireSentinel
	case SchemaC:
		return r.stringField(sentinelC) == wildfireSentinel
	}
	return false
}

// nonWildfireNameMarkers flag incidents filed in the wildfire tables that are
// not wildfires, or are managed burns (WFU).
var nonWildfireNameMarkers = []string{"EARTHQUAKE", "HURRICANE", "TYPHOON", "WFU"}

// IsWildfireName reports whether an incident name is free of known
// non-wildfire markers. Matching is case-insensitive.
func IsWildfireName(name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, marker := range nonWildfireNameMarkers {
		if strings.Contains(upper, marker) {
			return false
		}
	}
	return true
}
