package models

import "time"

// OutcomeStatus is the per-action result of plan execution.
type OutcomeStatus string

// Outcome statuses.
const (
	OutcomeOK      OutcomeStatus = "ok"      // Action completed
	OutcomeFailed  OutcomeStatus = "failed"  // Action attempted and failed; batch continued
	OutcomeSkipped OutcomeStatus = "skipped" // Duplicate skipped, or action not reached before cancellation
)

// Outcome reports what happened to one plan action. The full set of
// (source, target, status) triples is the executor's contract with callers:
// the upload collaborator consumes exactly this mapping.
type Outcome struct {
	Source string        `json:"source"`
	Target string        `json:"target,omitempty"` // Resolved target; keeper target for skipped duplicates
	Status OutcomeStatus `json:"status"`
	Error  string        `json:"error,omitempty"` // Failure detail, empty otherwise
}

// ExecutionResult aggregates the outcomes of one plan execution.
type ExecutionResult struct {
	PlanID    string        `json:"plan_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Cancelled bool          `json:"cancelled"` // True when execution stopped early on cancellation
	Outcomes  []Outcome     `json:"outcomes"`
}

// FailedOutcomes returns the outcomes that failed, in execution order.
func (r *ExecutionResult) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Mapping returns the (source -> resolved target) pairs for every action
// that completed successfully. This is the hand-off format for upload
// collaborators, which own all network behavior.
func (r *ExecutionResult) Mapping() map[string]string {
	mapping := make(map[string]string, r.Succeeded)
	for _, o := range r.Outcomes {
		if o.Status == OutcomeOK && o.Target != "" {
			mapping[o.Source] = o.Target
		}
	}
	return mapping
}
