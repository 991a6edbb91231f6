package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ReportRow is one row of a historical incident-summary report table, keyed
// by column index ("1", "2", ...) as emitted by the table scraper. The first
// row of a table maps indexes to column names.
type ReportRow map[string]string

// ReportConfig controls the legacy report transform.
type ReportConfig struct {
	// Props optionally restricts output to these column names. When set,
	// every requested column must be non-empty for a row to survive.
	Props []string
}

// Column names appearing in the 2002-2013 report layouts. The early tables
// (2002-2006) have no Measurement column; the unit rides inside the Size
// cell ("1,500 ACRES").
const (
	colIncidentName = "Incident Name"
	colIncidentType = "Incident Type"
	colStartDate    = "Start Date"
	colLatitude     = "Latitude"
	colLongitude    = "Longitude"
	colSize         = "Size"
	colMeasurement  = "Measurement"
	colCosts        = "Costs"
	colStructures   = "Structures Destroyed"
	colControlled   = "Controlled Date"
)

// TransformReportRows converts a scraped report table (header row first) into
// wildfire row objects with uniform column names and native types. Rows that
// fail the wildfire validity rules are dropped.
func TransformReportRows(rows []ReportRow, cfg ReportConfig, tz TimezoneResolver) []map[string]any {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	indexes, props := selectColumns(header, cfg)

	out := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if !validWildfireRow(row, header, indexes, cfg) {
			continue
		}
		named := renameColumns(row, header, indexes, props)
		out = append(out, convertTypes(named, tz))
	}
	return out
}

// selectColumns resolves which header indexes to keep and the column names
// they produce. When Size is kept, Measurement rides along so the unit
// survives to type conversion even on layouts where it shares the Size cell.
func selectColumns(header ReportRow, cfg ReportConfig) (indexes []string, props []string) {
	wanted := make(map[string]struct{}, len(cfg.Props))
	for _, p := range cfg.Props {
		wanted[p] = struct{}{}
	}

	for _, idx := range sortedIndexes(header) {
		name := header[idx]
		if len(wanted) > 0 {
			if _, ok := wanted[name]; !ok {
				continue
			}
		}
		indexes = append(indexes, idx)
		props = append(props, name)
	}

	_, sizeKept := indexOf(props, colSize)
	_, measKept := indexOf(props, colMeasurement)
	if sizeKept && !measKept {
		props = append(props, colMeasurement)
	}
	return indexes, props
}

// validWildfireRow applies the report-era wildfire rules: required cells
// present, unit not in square miles, name free of non-wildfire markers,
// incident type WF where the layout carries one, and non-zero coordinates
// when coordinates were requested.
func validWildfireRow(row ReportRow, header ReportRow, indexes []string, cfg ReportConfig) bool {
	for _, idx := range indexes {
		cell, ok := row[idx]
		if !ok {
			return false
		}
		if len(cfg.Props) > 0 && strings.TrimSpace(cell) == "" {
			return false
		}
	}

	if idx, ok := headerIndex(header, colMeasurement); ok {
		if strings.TrimSpace(row[idx]) == "SQ MILES" {
			return false
		}
	}
	if idx, ok := headerIndex(header, colIncidentName); ok {
		if !IsWildfireName(row[idx]) {
			return false
		}
	}
	if idx, ok := headerIndex(header, colIncidentType); ok {
		if strings.TrimSpace(row[idx]) != wildfireSentinel {
			return false
		}
	}
	if len(cfg.Props) > 0 {
		latIdx, hasLat := headerIndex(header, colLatitude)
		lonIdx, hasLon := headerIndex(header, colLongitude)
		if hasLat && hasLon {
			if strings.TrimSpace(row[latIdx]) == "0" || strings.TrimSpace(row[lonIdx]) == "0" {
				return false
			}
		}
	}
	return true
}

// renameColumns maps index-keyed cells to their column names. On layouts
// without a Measurement column the Size cell is split into value and unit.
func renameColumns(row ReportRow, header ReportRow, indexes []string, props []string) map[string]string {
	named := make(map[string]string, len(props))
	for _, idx := range indexes {
		named[header[idx]] = strings.TrimSpace(row[idx])
	}

	if _, hasMeasCol := headerIndex(header, colMeasurement); !hasMeasCol {
		size, meas := splitSizeCell(named[colSize])
		if _, keep := indexOf(props, colSize); keep {
			named[colSize] = size
		}
		if _, keep := indexOf(props, colMeasurement); keep {
			named[colMeasurement] = meas
		}
	}

	for name := range named {
		if _, keep := indexOf(props, name); !keep {
			delete(named, name)
		}
	}
	return named
}

// splitSizeCell separates a combined size cell like "1,500 ACRES" into its
// numeric part and unit. Cells with no numeric lead ("ACRES") are treated as
// zero size.
func splitSizeCell(cell string) (size, measurement string) {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return "0", "ACRES"
	}
	if _, ok := parseGroupedInt(fields[0]); !ok {
		return "0", strings.Join(fields, " ")
	}
	if len(fields) == 1 {
		return fields[0], "ACRES"
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// convertTypes turns named string cells into native values: dates become
// timezone-resolved local timestamps, coordinates floats (longitude negated,
// the reports record it unsigned west), counts and costs integers. The
// Measurement helper column is dropped from the result.
func convertTypes(named map[string]string, tz TimezoneResolver) map[string]any {
	lat, _ := strconv.ParseFloat(named[colLatitude], 64)
	lon, _ := strconv.ParseFloat(named[colLongitude], 64)
	lon = -lon

	out := make(map[string]any, len(named))
	for name, cell := range named {
		switch name {
		case colMeasurement:
			// consumed by the Size split, not a feature
		case colIncidentName:
			out[name] = quoteIfComma(cell)
		case colStartDate, colControlled:
			if formatted, ok := reportLocalDate(cell, lat, lon, tz); ok {
				out[name] = formatted
			} else {
				out[name] = nil
			}
		case colLatitude:
			out[name] = lat
		case colLongitude:
			out[name] = lon
		case colSize, colCosts, colStructures:
			if n, ok := parseGroupedInt(strings.TrimPrefix(cell, "$")); ok {
				out[name] = n
			} else {
				out[name] = nil
			}
		default:
			out[name] = cell
		}
	}
	return out
}

// reportLocalDate interprets a "MM/DD/YYYY HHMM" report cell as wall time in
// the timezone at (lat, lon).
func reportLocalDate(cell string, lat, lon float64, tz TimezoneResolver) (string, bool) {
	parts := strings.Fields(cell)
	if len(parts) < 2 || tz == nil {
		return "", false
	}
	hour, mins, ok := splitClock(parts[1])
	if !ok {
		return "", false
	}
	loc, err := tz.Resolve(lat, lon)
	if err != nil {
		return "", false
	}
	t, err := time.ParseInLocation("1/2/2006 15:04", fmt.Sprintf("%s %02d:%02d", parts[0], hour, mins), loc)
	if err != nil {
		return "", false
	}
	return t.Format(TimestampLayout), true
}

// parseGroupedInt parses a comma-grouped integer cell like "1,000,000".
func parseGroupedInt(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// quoteIfComma wraps a name containing commas in quotes so downstream CSV
// exports keep it in one cell.
func quoteIfComma(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}

func headerIndex(header ReportRow, name string) (string, bool) {
	for _, idx := range sortedIndexes(header) {
		if header[idx] == name {
			return idx, true
		}
	}
	return "", false
}

func indexOf(list []string, s string) (int, bool) {
	for i, v := range list {
		if v == s {
			return i, true
		}
	}
	return 0, false
}

// sortedIndexes orders a header's index keys numerically so columns come out
// in table order.
func sortedIndexes(header ReportRow) []string {
	indexes := make([]string, 0, len(header))
	for idx := range header {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool {
		a, errA := strconv.Atoi(indexes[i])
		b, errB := strconv.Atoi(indexes[j])
		if errA != nil || errB != nil {
			return indexes[i] < indexes[j]
		}
		return a < b
	})
	return indexes
}
