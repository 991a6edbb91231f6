// Command genmock generates a synthetic raw-record fixture spanning all
// three source schema eras, with seeded duplicates, non-wildfire incidents,
// and unclassifiable rows. It uses the actual domain package to emit the
// expected standardized output next to the raw fixture, so the two files
// stay consistent with real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock -count 200 \
//	  -raw-out data/mock/raw_records.json \
//	  -events-out data/mock/standardized_events.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/tzlookup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 200, "raw records to generate")
	seed := flag.Int64("seed", 1, "rng seed")
	rawOut := flag.String("raw-out", "", "output path for the raw-record fixture")
	eventsOut := flag.String("events-out", "", "output path for the expected standardized events")
	flag.Parse()

	if *rawOut == "" || *eventsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -events-out")
	}

	rng := rand.New(rand.NewSource(*seed))
	records := generate(rng, *count)
	log.Printf("generated %d raw records", len(records))

	tz, err := tzlookup.Default()
	if err != nil {
		return err
	}
	events := standardize(records, tz)
	log.Printf("standardized to %d events", len(events))

	if err := writeJSON(*rawOut, records); err != nil {
		return err
	}
	return writeJSON(*eventsOut, events)
}

// California-ish coordinates so every record resolves to a real timezone and
// passes the continental-US bounds check.
func randomCoord(rng *rand.Rand) (float64, float64) {
	lat := 32.7 + rng.Float64()*8.0
	lon := -123.0 + rng.Float64()*6.0
	return lat, lon
}

func generate(rng *rand.Rand, count int) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, count+count/10)
	for i := 0; i < count; i++ {
		var r domain.RawRecord
		switch i % 3 {
		case 0:
			r = recordA(rng, i)
		case 1:
			r = recordB(rng, i)
		default:
			r = recordC(rng, i)
		}
		records = append(records, r)

		// Seed a sparse duplicate for every tenth record.
		if i%10 == 0 {
			records = append(records, sparseDuplicate(r))
		}
	}

	// A few rows no schema era claims.
	for i := 0; i < count/20; i++ {
		records = append(records, domain.RawRecord{"objectid": float64(i), "shape": "point"})
	}
	return records
}

func recordA(rng *rand.Rand, i int) domain.RawRecord {
	lat, lon := randomCoord(rng)
	itype := "WF"
	if i%7 == 0 {
		itype = "FA"
	}
	return domain.RawRecord{
		"itype":     itype,
		"event_id":  fmt.Sprintf("CA-%04d", i),
		"ename":     fmt.Sprintf("FIRE %d", i),
		"startdate": fmt.Sprintf("%02d/%02d/%d", 1+rng.Intn(12), 1+rng.Intn(28), 2002+rng.Intn(4)),
		"latdd":     fmt.Sprintf("%.4f", lat),
		"longdd":    fmt.Sprintf("%.4f", lon),
		"un_ustate": "CA",
		"acres":     fmt.Sprintf("%d", rng.Intn(20000)),
		"ecosts":    fmt.Sprintf("%d", rng.Intn(5000000)),
	}
}

func recordB(rng *rand.Rand, i int) domain.RawRecord {
	lat, lon := randomCoord(rng)
	incType := "WF"
	if i%7 == 0 {
		incType = "WFU"
	}
	return domain.RawRecord{
		"inc_type":   incType,
		"incident_n": fmt.Sprintf("INC-%04d", i),
		"fire_name":  fmt.Sprintf("FIRE %d", i),
		"start_date": fmt.Sprintf("%02d/%02d/%d", 1+rng.Intn(12), 1+rng.Intn(28), 2006+rng.Intn(10)),
		"start_hour": fmt.Sprintf("%02d%02d", rng.Intn(24), rng.Intn(60)),
		"latitude":   fmt.Sprintf("%.4f", lat),
		"longitude":  fmt.Sprintf("%.4f", lon),
		"state":      "CA",
		"area_":      fmt.Sprintf("%d", rng.Intn(20000)),
		"area_meas":  "ACRES",
	}
}

func recordC(rng *rand.Rand, i int) domain.RawRecord {
	lat, lon := randomCoord(rng)
	category := "WF"
	if i%7 == 0 {
		category = "RX"
	}
	// 2016-2018 in epoch milliseconds.
	ms := 1451606400000 + rng.Int63n(3*365*24*3600*1000)
	return domain.RawRecord{
		"incidenttypecategory":  category,
		"uniquefireidentifier":  fmt.Sprintf("%d-CA-%06d", 2016+rng.Intn(3), i),
		"incidentname":          fmt.Sprintf("FIRE %d", i),
		"firediscoverydatetime": float64(ms),
		"latitude":              fmt.Sprintf("%.4f", lat),
		"longitude":             fmt.Sprintf("%.4f", lon),
		"state":                 "CA",
		"acres":                 fmt.Sprintf("%d", rng.Intn(20000)),
	}
}

// sparseDuplicate keeps only the columns that make the record classify and
// collide with the original, so dedup must prefer the original.
func sparseDuplicate(r domain.RawRecord) domain.RawRecord {
	dup := domain.RawRecord{}
	for _, k := range []string{
		"itype", "event_id",
		"inc_type", "incident_n",
		"incidenttypecategory", "uniquefireidentifier",
	} {
		if v, ok := r[k]; ok {
			dup[k] = v
		}
	}
	return dup
}

func standardize(records []domain.RawRecord, tz domain.TimezoneResolver) []domain.Event {
	known := make([]domain.RawRecord, 0, len(records))
	for _, r := range records {
		if domain.Classify(r) != domain.SchemaUnknown {
			known = append(known, r)
		}
	}

	events := make([]domain.Event, 0, len(known))
	for _, r := range domain.Dedupe(known, domain.DuplicateKey) {
		tag := domain.Classify(r)
		if !domain.IsWildfire(r, tag) {
			continue
		}
		ev, err := domain.Standardize(r, tag, tz)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	domain.SortEvents(events)
	return events
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return nil
}
