package loader

import (
	"fmt"

	"github.com/skylens/flight-ingress/pkg/connector"
)

// ErrorCategory classifies failures during a run.
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryConnectivity covers refused connections, timeouts, and
	// missing required configuration. Fatal, never retried.
	ErrorCategoryConnectivity
	// ErrorCategoryConflict covers "already exists" on create. Recovered.
	ErrorCategoryConflict
	// ErrorCategoryNotFound covers 404 on delete or exists-check. Recovered
	// as a normal boolean outcome.
	ErrorCategoryNotFound
	// ErrorCategoryRowSkip covers malformed rows and rows without a
	// determinable partition. Counted, capped logging, run continues.
	ErrorCategoryRowSkip
	// ErrorCategoryBulkItem covers item errors inside an otherwise
	// successful bulk response. Logged in detail, then fatal.
	ErrorCategoryBulkItem
)

// String returns a string representation of the error category.
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryConnectivity:
		return "Connectivity"
	case ErrorCategoryConflict:
		return "Conflict"
	case ErrorCategoryNotFound:
		return "NotFound"
	case ErrorCategoryRowSkip:
		return "RowSkip"
	case ErrorCategoryBulkItem:
		return "BulkItem"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Categorize determines the category of an error by its content.
func Categorize(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	if connector.IsConnectivityError(err) {
		return ErrorCategoryConnectivity
	}
	return ErrorCategoryBulkItem
}

const (
	// maxLoggedItemErrors bounds per-flush bulk error detail in the log.
	maxLoggedItemErrors = 5
	// maxLoggedSkipWarnings bounds per-run skipped-row warnings.
	maxLoggedSkipWarnings = 5
)
