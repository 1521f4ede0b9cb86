package extract

import (
	"time"

	"github.com/google/uuid"
)

// YearJob is one unit of fan-out work: every input archive for one year,
// merged into a single disjoint output artifact. No two jobs share an
// output, so workers need no coordination beyond the final join.
type YearJob struct {
	ID         string
	Year       string
	Files      []string
	OutputPath string
	CreatedAt  time.Time
}

// NewYearJob creates a job with a fresh identifier.
func NewYearJob(year string, files []string, outputPath string) YearJob {
	return YearJob{
		ID:         uuid.New().String(),
		Year:       year,
		Files:      files,
		OutputPath: outputPath,
		CreatedAt:  time.Now(),
	}
}

// Result is the outcome of one year's extraction, reported independently of
// its siblings.
type Result struct {
	JobID      string
	Year       string
	OutputPath string
	Rows       int64
	Err        error
	Duration   time.Duration
}

// Success reports whether the job completed without error.
func (r Result) Success() bool {
	return r.Err == nil
}
