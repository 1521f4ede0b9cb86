// Package extract implements the reference-archive extraction tool: input
// archives are grouped by the year embedded in their filenames and each
// year is extracted by an independent worker into its own merged
// <prefix>-<year>.csv.gz artifact.
package extract

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/archive"
	"github.com/skylens/flight-ingress/pkg/router"
)

// Extractor fans out per-year extraction work.
type Extractor struct {
	outDir string
	prefix string
	logger *zap.Logger
}

// NewExtractor creates an extractor writing artifacts under outDir.
func NewExtractor(outDir, prefix string, logger *zap.Logger) *Extractor {
	return &Extractor{
		outDir: outDir,
		prefix: prefix,
		logger: logger,
	}
}

// GroupByYear buckets input files by the year in their filenames. Files
// without a recognizable year are returned separately rather than silently
// dropped.
func GroupByYear(files []string) (byYear map[string][]string, unmatched []string) {
	byYear = make(map[string][]string)
	for _, path := range files {
		year, _ := router.YearMonthFromFilename(path)
		if year == "" {
			unmatched = append(unmatched, path)
			continue
		}
		byYear[year] = append(byYear[year], path)
	}
	for _, group := range byYear {
		sort.Strings(group)
	}
	return byYear, unmatched
}

// Run extracts every year concurrently and waits for all workers. Each
// worker owns a disjoint output file, so the only coordination is the final
// join. Results are reported per year; the returned error aggregates any
// failures after all workers have finished.
func (e *Extractor) Run(ctx context.Context, files []string) ([]Result, error) {
	byYear, unmatched := GroupByYear(files)
	for _, path := range unmatched {
		e.logger.Warn("No year in filename, file not extracted", zap.String("path", path))
	}

	if len(byYear) == 0 {
		return nil, fmt.Errorf("no input files with a recognizable year")
	}

	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", e.outDir, err)
	}

	jobs := make([]YearJob, 0, len(byYear))
	years := make([]string, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		output := filepath.Join(e.outDir, fmt.Sprintf("%s-%s.csv.gz", e.prefix, year))
		jobs = append(jobs, NewYearJob(year, byYear[year], output))
	}

	e.logger.Info("Starting extraction",
		zap.Int("years", len(jobs)),
		zap.Int("files", len(files)-len(unmatched)))

	results := make([]Result, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job YearJob) {
			defer wg.Done()
			results[i] = e.runJob(ctx, job)
		}(i, job)
	}
	wg.Wait()

	failures := 0
	for _, res := range results {
		if res.Success() {
			e.logger.Info("Year extracted",
				zap.String("year", res.Year),
				zap.String("output", res.OutputPath),
				zap.Int64("rows", res.Rows),
				zap.Duration("duration", res.Duration))
		} else {
			failures++
			e.logger.Error("Year extraction failed",
				zap.String("year", res.Year),
				zap.Error(res.Err))
		}
	}

	if failures > 0 {
		return results, fmt.Errorf("%d of %d year extraction(s) failed", failures, len(jobs))
	}
	return results, nil
}

// runJob merges one year's archives into its output artifact. The header
// line of the first archive is kept; headers of the rest are dropped.
func (e *Extractor) runJob(ctx context.Context, job YearJob) Result {
	start := time.Now()
	logger := e.logger.With(zap.String("jobID", job.ID), zap.String("year", job.Year))
	logger.Info("Extracting year", zap.Int("archives", len(job.Files)))

	result := Result{JobID: job.ID, Year: job.Year, OutputPath: job.OutputPath}

	out, err := os.Create(job.OutputPath)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	gz := gzip.NewWriter(out)
	w := bufio.NewWriter(gz)

	rows, err := e.mergeFiles(ctx, job.Files, w)
	result.Rows = rows

	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if closeErr := gz.Close(); err == nil {
		err = closeErr
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(job.OutputPath)
		result.Err = err
	}
	result.Duration = time.Since(start)
	return result
}

// mergeFiles streams each archive into w, returning the number of data rows
// written.
func (e *Extractor) mergeFiles(ctx context.Context, files []string, w io.Writer) (int64, error) {
	var rows int64

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		n, err := e.copyLines(path, w, i > 0)
		rows += n
		if err != nil {
			return rows, fmt.Errorf("failed to extract %s: %w", path, err)
		}
	}

	return rows, nil
}

func (e *Extractor) copyLines(path string, w io.Writer, skipHeader bool) (int64, error) {
	stream, err := archive.Open(path)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	reader := bufio.NewReader(stream)
	var rows int64
	lineNo := 0

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			header := lineNo == 1
			if !header || !skipHeader {
				if _, werr := io.WriteString(w, line); werr != nil {
					return rows, werr
				}
			}
			if !header {
				rows++
			}
		}
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
	}
}
