package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/lookup"
	"github.com/skylens/flight-ingress/pkg/model"
)

func TestToInteger(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"12", 12},
		{"12.4", 12},
		{"12.6", 13},
		{"-8.0", -8},
		{"-2.6", -3},
		{"0", 0},
		{"0.00", 0},
		{" 45 ", 45},
		{"", nil},
		{"   ", nil},
		{`\N`, nil},
		{"abc", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToInteger(tt.input), "input %q", tt.input)
	}
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"true", true},
		{"T", true},
		{"yes", true},
		{"Y", true},
		{"false", false},
		{"f", false},
		{"NO", false},
		{"n", false},
		{"1", true},
		{"1.00", true},
		{"0", false},
		{"0.00", false},
		{"-1", false},
		{"", nil},
		{`\N`, nil},
		{"abc", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToBoolean(tt.input), "input %q", tt.input)
	}
}

func emptyTransformer(t *testing.T) *Transformer {
	t.Helper()
	logger := zap.NewNop()

	airports, err := lookup.NewAirportLookup("", logger)
	require.NoError(t, err)
	cancellations, err := lookup.NewCancellationLookup("", logger)
	require.NoError(t, err)

	return NewTransformer(airports, cancellations, logger)
}

func loadedTransformer(t *testing.T) *Transformer {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()

	airportsPath := filepath.Join(dir, "airports.csv")
	airportsCSV := `1,"John F Kennedy Intl","New York","United States","JFK","KJFK",40.639751,-73.778925,13,-5,"A"
2,"Los Angeles Intl","Los Angeles","United States","LAX","KLAX",33.942536,-118.408075,125,-8,"A"
3,"Closed Field","Nowhere","United States",\N,"XXXX",0.0,0.0,0,0,"A"
`
	require.NoError(t, os.WriteFile(airportsPath, []byte(airportsCSV), 0o644))

	cancellationsPath := filepath.Join(dir, "cancellations.csv")
	cancellationsCSV := "Code,Description\nA,Carrier\nB,Weather\nC,National Air System\nD,Security\n"
	require.NoError(t, os.WriteFile(cancellationsPath, []byte(cancellationsCSV), 0o644))

	airports, err := lookup.NewAirportLookup(airportsPath, logger)
	require.NoError(t, err)
	cancellations, err := lookup.NewCancellationLookup(cancellationsPath, logger)
	require.NoError(t, err)

	return NewTransformer(airports, cancellations, logger)
}

func TestTransformFullRow(t *testing.T) {
	tr := loadedTransformer(t)

	row := model.RawRow{
		"@timestamp":                      "2021-05-03T00:00:00",
		"Reporting_Airline":               "AA",
		"Tail_Number":                     "N123AA",
		"Flight_Number_Reporting_Airline": "100",
		"Origin":                          "JFK",
		"Dest":                            "LAX",
		"DepDelay":                        "12.6",
		"ArrDelay":                        "-8.0",
		"Distance":                        "2475.00",
		"Cancelled":                       "0.00",
		"Diverted":                        "1.00",
		"CancellationCode":                "B",
	}

	doc := tr.Transform(row)

	assert.Equal(t, "2021-05-03T00:00:00", doc["@timestamp"])
	assert.Equal(t, "AA", doc["Reporting_Airline"])
	assert.Equal(t, "100", doc["Flight_Number"])
	assert.Equal(t, 13, doc["DepDelayMin"])
	assert.Equal(t, -8, doc["ArrDelayMin"])
	assert.Equal(t, 2475, doc["DistanceMiles"])
	assert.Equal(t, false, doc["Cancelled"])
	assert.Equal(t, true, doc["Diverted"])

	assert.Equal(t, "2021-05-03T00:00:00_AA_100_JFK_LAX", doc["FlightID"])

	assert.Equal(t, "Weather", doc["CancellationReason"])
	assert.Equal(t, "40.639751,-73.778925", doc["OriginLocation"])
	assert.Equal(t, "33.942536,-118.408075", doc["DestLocation"])
}

func TestTransformTimestampFallsBackToFlightDate(t *testing.T) {
	tr := emptyTransformer(t)

	doc := tr.Transform(model.RawRow{"FlightDate": "2019-11-20"})
	assert.Equal(t, "2019-11-20", doc.Timestamp())

	doc = tr.Transform(model.RawRow{
		"@timestamp": "2019-11-20T00:00:00",
		"FlightDate": "2019-11-21",
	})
	assert.Equal(t, "2019-11-20T00:00:00", doc.Timestamp())
}

func TestTransformAbsentValuesBecomeSentinels(t *testing.T) {
	tr := emptyTransformer(t)

	doc := tr.Transform(model.RawRow{
		"Origin":   "JFK",
		"DepDelay": "   ",
	})

	// Pre-compaction every mapped field is present, absent ones as nil.
	assert.Contains(t, doc, "@timestamp")
	assert.Nil(t, doc["@timestamp"])
	assert.Nil(t, doc["DepDelayMin"])
	assert.Nil(t, doc["Dest"])
	assert.Equal(t, "JFK", doc["Origin"])

	compacted := doc.Compact()
	assert.NotContains(t, compacted, "@timestamp")
	assert.NotContains(t, compacted, "DepDelayMin")
	assert.NotContains(t, compacted, "Dest")
	assert.Equal(t, "JFK", compacted["Origin"])
}

func TestFlightIDRequiresAllParts(t *testing.T) {
	tr := emptyTransformer(t)

	row := model.RawRow{
		"@timestamp":                      "2021-05-03T00:00:00",
		"Reporting_Airline":               "AA",
		"Flight_Number_Reporting_Airline": "100",
		"Origin":                          "JFK",
		"Dest":                            "LAX",
	}
	doc := tr.Transform(row)
	assert.Equal(t, "2021-05-03T00:00:00_AA_100_JFK_LAX", doc["FlightID"])

	for _, missing := range []string{"@timestamp", "Reporting_Airline", "Flight_Number_Reporting_Airline", "Origin", "Dest"} {
		partial := model.RawRow{}
		for k, v := range row {
			if k != missing {
				partial[k] = v
			}
		}
		doc := tr.Transform(partial)
		assert.NotContains(t, doc, "FlightID", "missing %s", missing)
	}
}

func TestEnrichmentMissLeavesFieldsAbsent(t *testing.T) {
	tr := loadedTransformer(t)

	doc := tr.Transform(model.RawRow{
		"Origin":           "ZZZ",
		"Dest":             "QQQ",
		"CancellationCode": "X",
	})

	assert.NotContains(t, doc, "OriginLocation")
	assert.NotContains(t, doc, "DestLocation")
	assert.NotContains(t, doc, "CancellationReason")
}
