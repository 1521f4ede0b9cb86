// pkg/lookup/cancellations.go
package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"go.uber.org/zap"
)

// cancellationRow is one record of the header-bearing cancellations file.
type cancellationRow struct {
	Code        string `csv:"Code"`
	Description string `csv:"Description"`
}

// CancellationLookup maps a normalized cancellation code to its
// human-readable reason.
type CancellationLookup struct {
	reasons map[string]string
	logger  *zap.Logger
}

// NewCancellationLookup builds the table by scanning the cancellations
// reference file once. A missing file yields an empty table.
func NewCancellationLookup(path string, logger *zap.Logger) (*CancellationLookup, error) {
	lookup := &CancellationLookup{
		reasons: make(map[string]string),
		logger:  logger,
	}

	if !fileExists(path) {
		return lookup, nil
	}

	if err := lookup.load(path); err != nil {
		return nil, fmt.Errorf("failed to load cancellations from %s: %w", path, err)
	}

	return lookup, nil
}

// Reason returns the reason text for a code, or "" on a miss.
func (c *CancellationLookup) Reason(code string) string {
	if code == "" {
		return ""
	}
	return c.reasons[NormalizeCode(code)]
}

// Size returns the number of loaded cancellation reasons.
func (c *CancellationLookup) Size() int {
	return len(c.reasons)
}

func (c *CancellationLookup) load(path string) error {
	c.logger.Info("Loading cancellations reference file", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(stripBOM(file))
	reader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return fmt.Errorf("cancellations file must have 'Code' and 'Description' columns: %w", err)
	}

	count := 0
	for {
		var row cancellationRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return err
		}

		code := NormalizeCode(row.Code)
		description := strings.TrimSpace(row.Description)
		if code == "" || description == "" {
			continue
		}

		c.reasons[code] = description
		count++
	}

	c.logger.Info("Loaded cancellation lookup table", zap.Int("reasons", count))
	return nil
}
