package domain

// Dedupe partitions records into duplicate classes by key and keeps the most
// complete member of each class. Classes are emitted in order of their first
// appearance in the input.
func Dedupe(records []RawRecord, key func(RawRecord) string) []RawRecord {
	classes := make(map[string][]RawRecord, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		k := key(r)
		if _, seen := classes[k]; !seen {
			order = append(order, k)
		}
		classes[k] = append(classes[k], r)
	}

	out := make([]RawRecord, 0, len(order))
	for _, k := range order {
		out = append(out, mostComplete(classes[k]))
	}
	return out
}

// mostComplete returns the record with the most non-nil columns; the earliest
// record wins ties.
func mostComplete(dups []RawRecord) RawRecord {
	best := dups[0]
	bestScore := completeness(best)
	for _, d := range dups[1:] {
		if score := completeness(d); score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// completeness counts a record's non-nil columns. Every present column
// counts, pass-throughs included, so scores only compare meaningfully within
// one duplicate class.
func completeness(r RawRecord) int {
	n := 0
	for _, v := range r {
		if v != nil {
			n++
		}
	}
	return n
}
