// pkg/connector/connector.go
package connector

import (
	"context"
	"strings"
)

// StoreConnector defines the interface the loader uses against the
// destination search store.
type StoreConnector interface {
	// IndexExists checks whether an index exists. A 404 is a normal false,
	// not an error.
	IndexExists(ctx context.Context, name string) (bool, error)

	// CreateIndex creates an index from an opaque mapping definition. An
	// "already exists" conflict is recovered locally and is not an error.
	CreateIndex(ctx context.Context, name string, mapping map[string]interface{}) error

	// DeleteIndex deletes an index, reporting whether it existed.
	DeleteIndex(ctx context.Context, name string) (bool, error)

	// Bulk submits a newline-delimited action/document payload and returns
	// the per-item evaluation.
	Bulk(ctx context.Context, payload string, refresh bool) (*BulkResponse, error)

	// ClusterHealth returns the store's health/status document.
	ClusterHealth(ctx context.Context) (map[string]interface{}, error)

	// ListIndices returns index names matching a pattern.
	ListIndices(ctx context.Context, pattern string) ([]string, error)
}

// BulkResponse is the store's per-item evaluation of one bulk request.
type BulkResponse struct {
	Took   int        `json:"took"`
	Errors bool       `json:"errors"`
	Items  []BulkItem `json:"items"`
}

// BulkItem maps the action name ("index", "create", ...) to its outcome.
type BulkItem map[string]BulkItemDetail

// BulkItemDetail is the outcome of one action within a bulk request.
type BulkItemDetail struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *BulkItemError `json:"error,omitempty"`
}

// BulkItemError is the store's item-level failure detail.
type BulkItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ItemErrors collects the failure details of a bulk response, in order.
func (r *BulkResponse) ItemErrors() []BulkItemDetail {
	if !r.Errors {
		return nil
	}

	var failed []BulkItemDetail
	for _, item := range r.Items {
		for _, detail := range item {
			if detail.Error != nil {
				failed = append(failed, detail)
			}
		}
	}
	return failed
}

// IsConnectivityError reports whether an error indicates a connection or
// configuration problem rather than a data problem. These are fatal and
// never retried by this layer.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "no such host")
}

// DeleteIndicesByPattern lists indices matching a pattern and deletes each
// one, returning the names actually removed.
func DeleteIndicesByPattern(ctx context.Context, store StoreConnector, pattern string) ([]string, error) {
	indices, err := store.ListIndices(ctx, pattern)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(indices))
	for _, name := range indices {
		ok, err := store.DeleteIndex(ctx, name)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted = append(deleted, name)
		}
	}

	return deleted, nil
}
