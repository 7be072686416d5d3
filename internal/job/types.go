package job

import (
	"time"
)

// Status represents the lifecycle state of a batch run.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run tracks one batch label-generation request from submission to
// completion. Row failures are normal outcomes, counted rather than
// escalated: a run with failed rows still succeeds.
type Run struct {
	ID         string
	InputPath  string
	LayoutName string
	Status     Status
	StartedAt  *time.Time
	FinishedAt *time.Time

	RowsTotal    int64
	RowsRendered int64
	RowsFailed   int64

	LastError string
}
