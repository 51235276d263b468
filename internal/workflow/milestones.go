package workflow

import "time"

// ApplyStageChange mutates the workflow for an accepted transition to the
// given stage: stamps the target stage's milestone, clears every milestone
// strictly after the target up to and including the old stage on a backward
// move, and recomputes IsCompleted from terminal membership. The transition
// must already have passed ValidateTransition.
//
// The cleared stages are returned so callers can describe the undo in the
// history notes.
func ApplyStageChange(cat *Catalog, w *Workflow, to Stage, actor Actor, now time.Time) []Stage {
	from := w.CurrentStage
	fromIdx, _ := cat.Index(from)
	toIdx, _ := cat.Index(to)

	var cleared []Stage
	if toIdx < fromIdx {
		// Reopening must not leave stale future-state attribution behind.
		for _, s := range cat.Order[toIdx+1 : fromIdx+1] {
			if slot := w.Milestones.Slot(s); slot != nil && slot.IsSet() {
				slot.clear()
				cleared = append(cleared, s)
			}
		}
	}
	if cat.IsLateral(from) && toIdx <= fromIdx {
		if slot := w.Milestones.Slot(from); slot != nil && slot.IsSet() {
			slot.clear()
			cleared = append(cleared, from)
		}
	}

	if slot := w.Milestones.Slot(to); slot != nil {
		slot.stamp(now, actor)
	}

	w.CurrentStage = to
	w.IsCompleted = cat.IsTerminal(to)
	return cleared
}
