package workflow

import "fmt"

// TransitionCheck is the outcome of validating a requested stage change.
type TransitionCheck struct {
	NoOp          bool
	Undo          bool
	Skip          bool
	SkippedStages []Stage
}

// ValidateTransition decides whether a stage change is legal for the given
// catalog. Forward moves to the immediate successor and moves to a lateral
// stage are always accepted. Forward skips and backward moves ("undo") are
// accepted only when allowOverride is set; otherwise a structured
// *InvalidTransitionError is returned and nothing should be persisted.
func ValidateTransition(cat *Catalog, from, to Stage, allowOverride bool) (TransitionCheck, error) {
	if to == "" || to == from {
		return TransitionCheck{NoOp: true}, nil
	}

	fromIdx, ok := cat.Index(from)
	if !ok {
		return TransitionCheck{}, fmt.Errorf("%w: %q for kind %s", ErrUnknownStage, from, cat.Kind)
	}
	toIdx, ok := cat.Index(to)
	if !ok {
		return TransitionCheck{}, fmt.Errorf("%w: %q for kind %s", ErrUnknownStage, to, cat.Kind)
	}

	// Lateral stages are reachable directly from anywhere in the chain.
	if cat.IsLateral(to) && toIdx >= fromIdx {
		return TransitionCheck{}, nil
	}

	check := TransitionCheck{}
	switch {
	case toIdx < fromIdx:
		check.Undo = true
		// The stages being un-done: strictly after the target, up to and
		// including the current stage.
		check.SkippedStages = undoneStages(cat, from, fromIdx, toIdx)
	case toIdx > fromIdx+1:
		check.Skip = true
		check.SkippedStages = append([]Stage(nil), cat.Order[fromIdx+1:toIdx]...)
	default:
		return check, nil
	}

	if allowOverride {
		return check, nil
	}
	return check, &InvalidTransitionError{
		Kind:                cat.Kind,
		CurrentStage:        from,
		RequestedStage:      to,
		Undo:                check.Undo,
		SkippedStages:       check.SkippedStages,
		AllowedNextStages:   cat.AllowedNext(from),
		RequiresSkipWarning: true,
	}
}

func undoneStages(cat *Catalog, from Stage, fromIdx, toIdx int) []Stage {
	stages := append([]Stage(nil), cat.Order[toIdx+1:fromIdx+1]...)
	if cat.IsLateral(from) {
		// A lateral stage shares its index with its chain equivalent but is
		// a distinct stage; it is the one actually being un-done.
		stages[len(stages)-1] = from
	}
	return stages
}
