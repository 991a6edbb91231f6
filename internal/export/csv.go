// Package export encodes feature records for consumption outside the
// document store.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

// Column groups pinned to the edges of the table; weather columns sort
// between them.
var (
	leadingColumns  = []string{domain.FieldEvent, domain.FieldLatitude, domain.FieldLongitude}
	trailingColumns = []string{domain.FieldSize, domain.FieldCosts}
)

// WriteCSV encodes feature records as CSV with a stable header: identity
// columns first, label columns last, the union of weather columns sorted in
// between. Missing cells are empty.
func WriteCSV(w io.Writer, records []domain.FeatureRecord) error {
	columns := Columns(records)

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Columns computes the header for a record batch.
func Columns(records []domain.FeatureRecord) []string {
	pinned := make(map[string]struct{}, len(leadingColumns)+len(trailingColumns))
	for _, c := range leadingColumns {
		pinned[c] = struct{}{}
	}
	for _, c := range trailingColumns {
		pinned[c] = struct{}{}
	}

	seen := make(map[string]struct{})
	var middle []string
	for _, rec := range records {
		for col := range rec {
			if _, ok := pinned[col]; ok {
				continue
			}
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			middle = append(middle, col)
		}
	}
	sort.Strings(middle)

	columns := make([]string, 0, len(leadingColumns)+len(middle)+len(trailingColumns))
	columns = append(columns, leadingColumns...)
	columns = append(columns, middle...)
	columns = append(columns, trailingColumns...)
	return columns
}

// cell renders one value. Structured values (the narrow form's Features)
// fall back to JSON so no data is silently lost.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
