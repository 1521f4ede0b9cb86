// pkg/lookup/airports.go
package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/archive"
)

type coordinates struct {
	Lat float64
	Lon float64
}

// AirportLookup maps a normalized IATA code to geo-coordinates.
type AirportLookup struct {
	airports map[string]coordinates
	logger   *zap.Logger
}

// NewAirportLookup builds the table by scanning the airports reference file
// once. The file is positional (no header): column 5 is the IATA code,
// columns 7 and 8 are latitude and longitude. A missing file yields an empty
// table.
func NewAirportLookup(path string, logger *zap.Logger) (*AirportLookup, error) {
	lookup := &AirportLookup{
		airports: make(map[string]coordinates),
		logger:   logger,
	}

	if !fileExists(path) {
		return lookup, nil
	}

	if err := lookup.load(path); err != nil {
		return nil, fmt.Errorf("failed to load airports from %s: %w", path, err)
	}

	return lookup, nil
}

// Coordinates returns a "lat,lon" composite for the code, or "" on a miss.
func (a *AirportLookup) Coordinates(code string) string {
	if code == "" {
		return ""
	}

	coords, ok := a.airports[NormalizeCode(code)]
	if !ok {
		return ""
	}

	return fmt.Sprintf("%.6f,%.6f", coords.Lat, coords.Lon)
}

// Size returns the number of loaded airports.
func (a *AirportLookup) Size() int {
	return len(a.airports)
}

func (a *AirportLookup) load(path string) error {
	a.logger.Info("Loading airports reference file", zap.String("path", path))

	stream, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer stream.Close()

	reader := csv.NewReader(stripBOM(stream))
	reader.FieldsPerRecord = -1

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		// Columns: ID, Name, City, Country, IATA, ICAO, Lat, Lon, ...
		if len(row) < 8 {
			continue
		}

		iata := NormalizeCode(row[4])
		if iata == "" || iata == missingValue {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			continue
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		if err != nil {
			continue
		}

		a.airports[iata] = coordinates{Lat: lat, Lon: lon}
		count++
	}

	a.logger.Info("Loaded airport lookup table", zap.Int("airports", count))
	return nil
}
