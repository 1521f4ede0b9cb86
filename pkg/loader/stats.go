package loader

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunStats tracks progress counters for one ingestion run. The primary
// pipeline is sequential, but flush accounting and skip counting go through
// one place, so access is guarded anyway.
type RunStats struct {
	mu            sync.Mutex
	totalRecords  int64
	processedRows int64
	loadedRecords int64
	skippedRows   int64
	skipWarnings  int
	startTime     time.Time
	progress      io.Writer
}

// NewRunStats creates a stats tracker writing its progress line to out.
func NewRunStats(out io.Writer) *RunStats {
	return &RunStats{
		startTime: time.Now(),
		progress:  out,
	}
}

// SetTotal records the pre-counted number of input rows.
func (s *RunStats) SetTotal(total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRecords = total
}

// Total returns the pre-counted number of input rows.
func (s *RunStats) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalRecords
}

// AddProcessed counts one row read from an input file.
func (s *RunStats) AddProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processedRows++
}

// AddLoaded counts documents confirmed by a successful flush and rewrites
// the progress line in place.
func (s *RunStats) AddLoaded(count int) {
	s.mu.Lock()
	loaded := s.loadedRecords + int64(count)
	s.loadedRecords = loaded
	total := s.totalRecords
	s.mu.Unlock()

	if s.progress == nil {
		return
	}

	if total > 0 {
		pct := float64(loaded) / float64(total) * 100
		fmt.Fprintf(s.progress, "\r%s of %s records loaded (%.1f%%)",
			formatNumber(loaded), formatNumber(total), pct)
	} else {
		fmt.Fprintf(s.progress, "\r%s records loaded", formatNumber(loaded))
	}
}

// Loaded returns the number of documents confirmed flushed.
func (s *RunStats) Loaded() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedRecords
}

// RecordSkip counts a skipped row and reports whether this occurrence should
// still be logged (the first few are, the rest are counted silently).
func (s *RunStats) RecordSkip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.skippedRows++
	if s.skipWarnings < maxLoggedSkipWarnings {
		s.skipWarnings++
		return true
	}
	return false
}

// Skipped returns the number of skipped rows.
func (s *RunStats) Skipped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skippedRows
}

// RunSummary is the final accounting of one run.
type RunSummary struct {
	TotalRecords  int64
	ProcessedRows int64
	LoadedRecords int64
	SkippedRows   int64
	Gap           int64
	Duration      time.Duration
}

// Summary captures the final counters. Gap is the number of processed rows
// unaccounted for by either a successful flush or a recorded skip.
func (s *RunStats) Summary() RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return RunSummary{
		TotalRecords:  s.totalRecords,
		ProcessedRows: s.processedRows,
		LoadedRecords: s.loadedRecords,
		SkippedRows:   s.skippedRows,
		Gap:           s.processedRows - s.loadedRecords - s.skippedRows,
		Duration:      time.Since(s.startTime),
	}
}

// Log writes the run summary, flagging any gap between rows processed and
// documents indexed.
func (sum RunSummary) Log(logger *zap.Logger) {
	logger.Info("Import complete",
		zap.String("rowsProcessed", formatNumber(sum.ProcessedRows)),
		zap.String("documentsIndexed", formatNumber(sum.LoadedRecords)),
		zap.String("rowsSkipped", formatNumber(sum.SkippedRows)),
		zap.Duration("duration", sum.Duration))

	if sum.Gap != 0 {
		logger.Warn("Rows processed and documents indexed do not reconcile",
			zap.Int64("gap", sum.Gap))
	}
}

// formatNumber renders a count with comma grouping for log readability.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
