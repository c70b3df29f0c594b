package geoproc

import (
	"time"

	"github.com/paulmach/orb"
)

// Step names
const (
	StepProject = "project-point"
	StepBuffer  = "multi-ring-buffer"
)

// Status is the outcome of a geoprocessing step.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StepResult is the typed outcome of one geoprocessing step, replacing the
// legacy catch-log-and-continue pattern.
type StepResult struct {
	Step     string
	Status   Status
	Messages []string
	Err      error
	Duration time.Duration
}

// OK reports whether the step completed.
func (r StepResult) OK() bool {
	return r.Status == StatusCompleted
}

// ErrorMessage returns the error text, or "" if the step did not fail.
func (r StepResult) ErrorMessage() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// RunResult is the outcome of a full pipeline run.
type RunResult struct {
	Projection StepResult
	Buffer     StepResult

	// Point is the projected point, valid when Projection completed.
	Point orb.Point
}

// OK reports whether both steps completed.
func (r RunResult) OK() bool {
	return r.Projection.OK() && r.Buffer.OK()
}

// Status summarises the run: failed if any executed step failed.
func (r RunResult) Status() Status {
	if r.Projection.Status == StatusFailed || r.Buffer.Status == StatusFailed {
		return StatusFailed
	}
	return StatusCompleted
}

// Summary returns a one-line description of the run outcome.
func (r RunResult) Summary() string {
	if r.OK() {
		return "completed"
	}
	if !r.Projection.OK() {
		if r.Buffer.Status == StatusSkipped {
			return "projection failed; buffer skipped: " + r.Projection.ErrorMessage()
		}
		return "projection failed: " + r.Projection.ErrorMessage()
	}
	return "buffer failed: " + r.Buffer.ErrorMessage()
}
