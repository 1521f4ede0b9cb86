package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/skylens/flight-ingress/pkg/model"
)

// indexBuffer accumulates NDJSON action/document line pairs destined for one
// index.
type indexBuffer struct {
	lines []string
	count int
}

// batchSet owns one buffer per index name within one file. Buffers are
// created on first use and cleared atomically on flush.
type batchSet struct {
	buffers map[string]*indexBuffer
	limit   int
}

func newBatchSet(limit int) *batchSet {
	return &batchSet{
		buffers: make(map[string]*indexBuffer),
		limit:   limit,
	}
}

// add serializes a document into the buffer for indexName and reports
// whether the buffer has reached the flush threshold.
func (b *batchSet) add(indexName string, doc model.Document) (bool, error) {
	action := map[string]interface{}{
		"index": map[string]interface{}{
			"_index": indexName,
		},
	}

	actionJSON, err := json.Marshal(action)
	if err != nil {
		return false, fmt.Errorf("failed to marshal bulk action: %w", err)
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal document: %w", err)
	}

	buf := b.buffers[indexName]
	if buf == nil {
		buf = &indexBuffer{lines: make([]string, 0, 2*b.limit)}
		b.buffers[indexName] = buf
	}

	buf.lines = append(buf.lines, string(actionJSON), string(docJSON))
	buf.count++

	return buf.count >= b.limit, nil
}

// take returns the wire payload for one index and clears its buffer.
func (b *batchSet) take(indexName string) (payload string, count int) {
	buf := b.buffers[indexName]
	if buf == nil || buf.count == 0 {
		return "", 0
	}

	payload = strings.Join(buf.lines, "\n") + "\n"
	count = buf.count

	buf.lines = buf.lines[:0]
	buf.count = 0

	return payload, count
}

// pending returns the index names with buffered documents, in stable order
// so end-of-file flushing is deterministic.
func (b *batchSet) pending() []string {
	names := make([]string, 0, len(b.buffers))
	for name, buf := range b.buffers {
		if buf.count > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
