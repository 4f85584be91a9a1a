package history

import (
	"errors"
	"time"

	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/tomldoc"
)

// Status is the outcome of a run.
type Status string

const (
	// StatusRunning marks a run that has not finished yet or was interrupted.
	StatusRunning Status = "running"
	// StatusSucceeded marks a run where every step succeeded.
	StatusSucceeded Status = "succeeded"
	// StatusPartial marks a run that completed with failed steps.
	StatusPartial Status = "partial"
	// StatusFailed marks a run aborted by an error.
	StatusFailed Status = "failed"
)

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned when a run id prefix matches several runs.
var ErrAmbiguousRunID = errors.New("run id prefix is ambiguous")

// Run is one recorded workflow invocation.
type Run struct {
	ID            string
	Command       string
	ProjectDir    string
	Force         bool
	Status        Status
	FailedSteps   []string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
	DecisionCount int
	Decisions     []DecisionRecord
}

// Duration returns the elapsed time of a finished run, or zero.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DecisionRecord is the stored form of a merge decision.
type DecisionRecord struct {
	Seq        int
	Action     string
	Path       string
	Value      string
	Previous   string
	SourceKind string
	TargetKind string
}

// NewDecisionRecord flattens d for storage.
func NewDecisionRecord(d merge.Decision) DecisionRecord {
	rec := DecisionRecord{
		Action: d.Action.String(),
		Path:   d.Path.String(),
	}
	if d.Value != nil {
		rec.Value = tomldoc.Inline(d.Value)
		rec.SourceKind = d.SourceKind.String()
	}
	if d.Previous != nil {
		rec.Previous = tomldoc.Inline(d.Previous)
		rec.TargetKind = d.TargetKind.String()
	}
	return rec
}
