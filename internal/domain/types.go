package domain

import "time"

// Split is one partition of a dataset
type Split string

const (
	Train Split = "train"
	Valid Split = "valid"
	Test  Split = "test"
)

// Splits lists every split in processing order
var Splits = []Split{Train, Valid, Test}

// Run status values
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run records a single conversion
type Run struct {
	ID         string       `json:"id"`
	InputPath  string       `json:"input_path"`
	OutputPath string       `json:"output_path"`
	Status     string       `json:"status"`
	Error      string       `json:"error,omitempty"`
	Classes    []string     `json:"classes,omitempty"`
	Splits     []SplitStats `json:"splits,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

// SplitStats summarizes the translation of one split
type SplitStats struct {
	Split              Split `json:"split"`
	Images             int   `json:"images"`
	Labels             int   `json:"labels"`
	Lines              int   `json:"lines"`
	UnmatchedImages    int   `json:"unmatched_images"`
	SkippedAnnotations int   `json:"skipped_annotations"`
}

// Totals sums the per-split counters
func (r *Run) Totals() SplitStats {
	var t SplitStats
	for _, s := range r.Splits {
		t.Images += s.Images
		t.Labels += s.Labels
		t.Lines += s.Lines
		t.UnmatchedImages += s.UnmatchedImages
		t.SkippedAnnotations += s.SkippedAnnotations
	}
	return t
}
