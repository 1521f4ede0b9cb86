package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/archive"
	"github.com/skylens/flight-ingress/pkg/connector"
	"github.com/skylens/flight-ingress/pkg/lookup"
	"github.com/skylens/flight-ingress/pkg/model"
	"github.com/skylens/flight-ingress/pkg/router"
	"github.com/skylens/flight-ingress/pkg/transform"
)

// DefaultBatchSize is the bulk flush threshold when none is configured.
const DefaultBatchSize = 500

// FlightLoader orchestrates one ingestion run: per input file it streams
// rows, transforms and routes them, buffers per-partition batches, and bulk
// writes them to the store. Destination lifecycle (delete-and-recreate) is
// owned here and happens at most once per index per run.
type FlightLoader struct {
	store       connector.StoreConnector
	mapping     map[string]interface{}
	router      *router.Router
	transformer *transform.Transformer
	batchSize   int
	refresh     bool
	stats       *RunStats
	logger      *zap.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

// NewFlightLoader builds a loader and its lookup tables. The store may be
// nil for offline sample mode. Reference files are best-effort: a missing
// path yields an always-miss lookup.
func NewFlightLoader(
	store connector.StoreConnector,
	mapping map[string]interface{},
	indexPrefix string,
	batchSize int,
	refresh bool,
	airportsFile, cancellationsFile string,
	logger *zap.Logger,
) (*FlightLoader, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	airports, err := lookup.NewAirportLookup(airportsFile, logger)
	if err != nil {
		return nil, err
	}

	cancellations, err := lookup.NewCancellationLookup(cancellationsFile, logger)
	if err != nil {
		return nil, err
	}

	return &FlightLoader{
		store:       store,
		mapping:     mapping,
		router:      router.NewRouter(indexPrefix, logger),
		transformer: transform.NewTransformer(airports, cancellations, logger),
		batchSize:   batchSize,
		refresh:     refresh,
		stats:       NewRunStats(os.Stdout),
		logger:      logger,
		ensured:     make(map[string]bool),
	}, nil
}

// WithProgressWriter redirects the carriage-return progress line. A nil
// writer silences it.
func (f *FlightLoader) WithProgressWriter(w io.Writer) *FlightLoader {
	f.stats.progress = w
	return f
}

// Stats exposes the run counters.
func (f *FlightLoader) Stats() *RunStats {
	return f.stats
}

// ImportFiles runs the full pipeline over a file set, sequentially and in
// the order supplied.
func (f *FlightLoader) ImportFiles(ctx context.Context, files []string) error {
	f.logger.Info("Counting records", zap.Int("files", len(files)))
	f.stats.SetTotal(f.countTotalRecords(files))
	f.logger.Info("Total records to import", zap.String("total", formatNumber(f.stats.Total())))

	for _, path := range files {
		if err := f.importFile(ctx, path); err != nil {
			return err
		}
	}

	if f.stats.progress != nil {
		fmt.Fprintln(f.stats.progress)
	}
	f.stats.Summary().Log(f.logger)
	return nil
}

// countTotalRecords pre-counts input rows for percentage reporting. A file
// that cannot be counted degrades the total instead of aborting the run.
func (f *FlightLoader) countTotalRecords(files []string) int64 {
	var total int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		count, err := archive.CountLines(path)
		if err != nil {
			f.logger.Warn("Failed to count lines",
				zap.String("file", path),
				zap.Error(err))
			continue
		}

		// Subtract the header line.
		if count > 0 {
			total += count - 1
		}
	}
	return total
}

// importFile streams one input file through the pipeline.
func (f *FlightLoader) importFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		f.logger.Warn("Skipping input (not a regular file)", zap.String("path", path))
		return nil
	}

	f.logger.Info("Importing file", zap.String("path", path))

	fileYear, fileMonth := router.YearMonthFromFilename(path)

	stream, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer stream.Close()

	reader := csv.NewReader(stream)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	f.checkHeaders(headers, path)

	batches := newBatchSet(f.batchSize)
	processedRows := 0
	indexedDocs := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				processedRows++
				f.stats.AddProcessed()
				if f.stats.RecordSkip() {
					f.logger.Warn("Skipping unparseable row",
						zap.String("file", path),
						zap.Int("row", processedRows),
						zap.Error(err))
				}
				continue
			}
			return err
		}

		processedRows++
		f.stats.AddProcessed()

		row := make(model.RawRow, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}

		doc := f.transformer.Transform(row)

		indexName := f.router.IndexName(doc.Timestamp(), fileYear, fileMonth)
		if indexName == "" {
			if f.stats.RecordSkip() {
				rawTimestamp := row[model.TimestampField]
				if rawTimestamp == "" {
					rawTimestamp = row[model.FlightDateField]
				}
				f.logger.Warn("Skipping row with no determinable partition",
					zap.String("file", path),
					zap.Int("row", processedRows),
					zap.String("rawTimestamp", rawTimestamp),
					zap.String("origin", row[model.OriginField]),
					zap.String("dest", row[model.DestField]),
					zap.String("carrier", row[model.AirlineField]))
			}
			continue
		}

		// Routing has consumed the temporal field; prune the sentinels.
		doc = doc.Compact()

		if err := f.ensureIndex(ctx, indexName); err != nil {
			return err
		}

		full, err := batches.add(indexName, doc)
		if err != nil {
			return err
		}

		if full {
			payload, count := batches.take(indexName)
			flushed, err := f.flush(ctx, indexName, payload, count)
			if err != nil {
				return err
			}
			indexedDocs += flushed
		}
	}

	// No partial batch is ever silently dropped.
	for _, indexName := range batches.pending() {
		payload, count := batches.take(indexName)
		flushed, err := f.flush(ctx, indexName, payload, count)
		if err != nil {
			return err
		}
		indexedDocs += flushed
	}

	f.logger.Info("Finished file",
		zap.String("path", path),
		zap.Int("rowsProcessed", processedRows),
		zap.Int("documentsIndexed", indexedDocs))
	return nil
}

// checkHeaders warns once per file when neither temporal column is present,
// which almost always means the wrong extract was supplied.
func (f *FlightLoader) checkHeaders(headers []string, path string) {
	for _, h := range headers {
		if h == model.TimestampField || h == model.FlightDateField {
			return
		}
	}

	preview := headers
	if len(preview) > 10 {
		preview = preview[:10]
	}
	f.logger.Warn("CSV headers include neither '@timestamp' nor 'FlightDate'",
		zap.String("file", path),
		zap.Strings("headers", preview))
}

// ensureIndex guarantees the destination exists exactly once per run: a
// pre-existing index is deleted and recreated from the mapping so every run
// is a clean load. On failure the index is unmarked so a later document may
// retry the ensure.
func (f *FlightLoader) ensureIndex(ctx context.Context, name string) error {
	if f.store == nil {
		return nil
	}

	f.mu.Lock()
	if f.ensured[name] {
		f.mu.Unlock()
		return nil
	}
	f.ensured[name] = true
	f.mu.Unlock()

	unmark := func() {
		f.mu.Lock()
		delete(f.ensured, name)
		f.mu.Unlock()
	}

	exists, err := f.store.IndexExists(ctx, name)
	if err != nil {
		unmark()
		return err
	}

	if exists {
		f.logger.Info("Deleting existing index before import", zap.String("index", name))
		deleted, err := f.store.DeleteIndex(ctx, name)
		if err != nil {
			unmark()
			return err
		}
		if !deleted {
			f.logger.Warn("Index disappeared before deletion", zap.String("index", name))
		}
	}

	f.logger.Info("Creating index", zap.String("index", name))
	if err := f.store.CreateIndex(ctx, name, f.mapping); err != nil {
		unmark()
		return err
	}

	return nil
}

// flush submits one buffered batch. Item-level errors inside an otherwise
// successful response are logged (bounded) and abort the run: there is no
// retry-and-continue for data errors.
func (f *FlightLoader) flush(ctx context.Context, indexName, payload string, count int) (int, error) {
	res, err := f.store.Bulk(ctx, payload, f.refresh)
	if err != nil {
		return 0, err
	}

	if failed := res.ItemErrors(); len(failed) > 0 {
		for i, item := range failed {
			if i >= maxLoggedItemErrors {
				break
			}
			f.logger.Error("Bulk item error",
				zap.String("index", indexName),
				zap.String("type", item.Error.Type),
				zap.String("reason", item.Error.Reason),
				zap.Int("status", item.Status))
		}
		return 0, fmt.Errorf("bulk indexing reported %d item error(s) for %s; aborting", len(failed), indexName)
	}

	f.stats.AddLoaded(count)
	return count, nil
}

// SampleDocument transforms the first data row of a file and returns the
// document that would be indexed. Runs without a store connection.
func (f *FlightLoader) SampleDocument(path string) (model.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	f.logger.Info("Sampling first document", zap.String("path", path))

	stream, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	reader := csv.NewReader(stream)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}

	record, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	row := make(model.RawRow, len(headers))
	for i, h := range headers {
		if i < len(record) {
			row[h] = record[i]
		}
	}

	return f.transformer.Transform(row).Compact(), nil
}
