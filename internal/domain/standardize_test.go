package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedZoneResolver resolves every coordinate to one location, keeping tests
// independent of the polygon index.
type fixedZoneResolver struct {
	loc *time.Location
}

func (f fixedZoneResolver) Resolve(_, _ float64) (*time.Location, error) {
	return f.loc, nil
}

func pacificResolver(t *testing.T) fixedZoneResolver {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return fixedZoneResolver{loc: loc}
}

func TestStandardizeSchemaA(t *testing.T) {
	record := RawRecord{
		"itype":     "WF",
		"event_id":  " CA-001 ",
		"ename":     "Test Fire",
		"startdate": "07/04/2010",
		"latdd":     "34.05",
		"longdd":    "-118.25",
		"un_ustate": "CA",
		"acres":     "120",
		"ecosts":    "5000",
		"objectid":  7.0,
	}

	ev, err := Standardize(record, SchemaA, pacificResolver(t))
	require.NoError(t, err)

	assert.Equal(t, "CA-001", ev.ID)
	require.NotNil(t, ev.Name)
	assert.Equal(t, "Test Fire", *ev.Name)
	require.NotNil(t, ev.StartDate)
	assert.Equal(t, "2010-07-04T00:00:00-07:00", ev.StartDate.Format(TimestampLayout))
	require.NotNil(t, ev.Latitude)
	assert.Equal(t, 34.05, *ev.Latitude)
	require.NotNil(t, ev.Longitude)
	assert.Equal(t, -118.25, *ev.Longitude)
	require.NotNil(t, ev.State)
	assert.Equal(t, "CA", *ev.State)
	require.NotNil(t, ev.Size)
	assert.Equal(t, 120.0, *ev.Size)
	require.NotNil(t, ev.Costs)
	assert.Equal(t, 5000.0, *ev.Costs)
	assert.Equal(t, map[string]any{"itype": "WF", "objectid": 7.0}, ev.Extra)
}

func TestStandardizeSchemaB(t *testing.T) {
	t.Run("date plus clock time", func(t *testing.T) {
		record := RawRecord{
			"inc_type":   "WF",
			"incident_n": "INC-9",
			"fire_name":  "Witch",
			"start_date": "10/21/2007",
			"start_hour": "1215",
			"latitude":   "33.08",
			"longitude":  "-116.85",
			"state":      "CA",
			"area_":      "197990",
			"area_meas":  "ACRES",
		}

		ev, err := Standardize(record, SchemaB, pacificResolver(t))
		require.NoError(t, err)

		assert.Equal(t, "INC-9", ev.ID)
		require.NotNil(t, ev.StartDate)
		assert.Equal(t, "2007-10-21T12:15:00-07:00", ev.StartDate.Format(TimestampLayout))
		require.NotNil(t, ev.Size)
		assert.Equal(t, 197990.0, *ev.Size)
		assert.Nil(t, ev.Costs)
	})

	t.Run("winter date gets the standard-time offset", func(t *testing.T) {
		record := RawRecord{
			"inc_type":   "WF",
			"incident_n": "INC-10",
			"start_date": "01/15/2008",
			"start_hour": "0800",
			"latitude":   "33.08",
			"longitude":  "-116.85",
		}

		ev, err := Standardize(record, SchemaB, pacificResolver(t))
		require.NoError(t, err)

		require.NotNil(t, ev.StartDate)
		assert.Equal(t, "2008-01-15T08:00:00-08:00", ev.StartDate.Format(TimestampLayout))
	})

	t.Run("malformed clock time nulls the start date", func(t *testing.T) {
		for _, hour := range []string{"930", "2x00", "9999"} {
			record := RawRecord{
				"inc_type":   "WF",
				"incident_n": "INC-11",
				"start_date": "06/01/2009",
				"start_hour": hour,
				"latitude":   "33.08",
				"longitude":  "-116.85",
			}

			ev, err := Standardize(record, SchemaB, pacificResolver(t))
			require.NoError(t, err)
			assert.Nil(t, ev.StartDate, "start_hour %q", hour)
		}
	})
}

func TestStandardizeSchemaC(t *testing.T) {
	record := RawRecord{
		"incidenttypecategory":  "WF",
		"uniquefireidentifier":  "2017-CAMVU-009830",
		"incidentname":          "Lilac",
		"firediscoverydatetime": 1512674040000.0, // 2017-12-07 11:14 PST
		"latitude":              "33.31",
		"longitude":             "-117.18",
		"state":                 "CA",
		"acres":                 "4100",
	}

	ev, err := Standardize(record, SchemaC, pacificResolver(t))
	require.NoError(t, err)

	assert.Equal(t, "2017-CAMVU-009830", ev.ID)
	require.NotNil(t, ev.StartDate)
	assert.Equal(t, "2017-12-07T11:14:00-08:00", ev.StartDate.Format(TimestampLayout))
	require.NotNil(t, ev.Size)
	assert.Equal(t, 4100.0, *ev.Size)
}

func TestStandardizeMissingInputs(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
	}{
		{"no date", RawRecord{"itype": "WF", "event_id": "E", "latdd": "34", "longdd": "-118"}},
		{"no latitude", RawRecord{"itype": "WF", "event_id": "E", "startdate": "07/04/2010", "longdd": "-118"}},
		{"no longitude", RawRecord{"itype": "WF", "event_id": "E", "startdate": "07/04/2010", "latdd": "34"}},
		{"garbage date", RawRecord{"itype": "WF", "event_id": "E", "startdate": "bogus", "latdd": "34", "longdd": "-118"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Standardize(tt.record, SchemaA, pacificResolver(t))
			require.NoError(t, err)
			assert.Nil(t, ev.StartDate)
		})
	}
}

func TestStandardizeResolverFailure(t *testing.T) {
	record := RawRecord{
		"itype": "WF", "event_id": "E",
		"startdate": "07/04/2010", "latdd": "0", "longdd": "0",
	}

	ev, err := Standardize(record, SchemaA, failingResolver{})
	require.NoError(t, err)
	assert.Nil(t, ev.StartDate)
	require.NotNil(t, ev.Latitude)
	assert.Equal(t, 0.0, *ev.Latitude)
}

func TestStandardizeUnclassified(t *testing.T) {
	_, err := Standardize(RawRecord{"state": "CA"}, SchemaUnknown, pacificResolver(t))
	assert.Error(t, err)
}

type failingResolver struct{}

func (failingResolver) Resolve(lat, lon float64) (*time.Location, error) {
	return nil, assert.AnError
}
