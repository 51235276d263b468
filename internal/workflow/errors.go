package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound means no workflow exists for the requested id or
	// client/kind pair.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrDuplicatePeriod is returned when a create collides with the unique
	// (client, kind, period end) constraint.
	ErrDuplicatePeriod = errors.New("workflow already exists for period")

	// ErrUnknownKind is returned for a kind with no catalog.
	ErrUnknownKind = errors.New("unknown workflow kind")

	// ErrUnknownStage is returned when a stage is not a member of the
	// catalog for the workflow's kind.
	ErrUnknownStage = errors.New("stage not in catalog")
)

// InvalidTransitionError rejects a stage change that skips intermediate
// stages or moves backward without an explicit override. Nothing has been
// persisted when it is returned; the caller can re-issue the request with
// AllowOverride set.
type InvalidTransitionError struct {
	Kind                Kind    `json:"kind"`
	CurrentStage        Stage   `json:"current_stage"`
	RequestedStage      Stage   `json:"requested_stage"`
	Undo                bool    `json:"undo"`
	SkippedStages       []Stage `json:"skipped_stages"`
	AllowedNextStages   []Stage `json:"allowed_next_stages"`
	RequiresSkipWarning bool    `json:"requires_skip_warning"`
}

func (e *InvalidTransitionError) Error() string {
	if e.Undo {
		return fmt.Sprintf("transition %s -> %s moves backward and requires an override", e.CurrentStage, e.RequestedStage)
	}
	return fmt.Sprintf("transition %s -> %s skips %d stage(s) and requires an override", e.CurrentStage, e.RequestedStage, len(e.SkippedStages))
}
