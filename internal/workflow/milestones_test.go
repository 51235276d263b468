package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testActor(name string) Actor {
	return Actor{ID: uuid.New(), Name: name, Role: "manager"}
}

// milestonesMonotonic verifies no milestone is stamped for a stage strictly
// after the current one.
func milestonesMonotonic(t *testing.T, cat *Catalog, w *Workflow) {
	t.Helper()
	currentIdx, _ := cat.Index(w.CurrentStage)
	for i, s := range cat.Order {
		slot := w.Milestones.Slot(s)
		if slot == nil {
			continue
		}
		if i > currentIdx {
			assert.False(t, slot.IsSet(), "stage %s stamped beyond current %s", s, w.CurrentStage)
		}
	}
}

func TestApplyStageChange_ForwardStampsMilestone(t *testing.T) {
	ltd, _ := CatalogFor(KindLtd)
	actor := testActor("Priya")
	now := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	w := &Workflow{Kind: KindLtd, CurrentStage: StagePaperworkPendingChase}

	cleared := ApplyStageChange(ltd, w, StagePaperworkReceived, actor, now)

	assert.Empty(t, cleared)
	assert.Equal(t, StagePaperworkReceived, w.CurrentStage)
	assert.False(t, w.IsCompleted)
	slot := w.Milestones.PaperworkReceived
	assert.True(t, slot.IsSet())
	assert.Equal(t, now, *slot.At)
	assert.Equal(t, actor.ID, *slot.ByID)
	assert.Equal(t, "Priya", *slot.ByName)
	milestonesMonotonic(t, ltd, w)
}

func TestApplyStageChange_FilingCompletes(t *testing.T) {
	ltd, _ := CatalogFor(KindLtd)
	w := &Workflow{Kind: KindLtd, CurrentStage: StageSubmissionApprovedPartner}

	ApplyStageChange(ltd, w, StageFiledToHMRC, testActor("Priya"), time.Now())

	assert.True(t, w.IsCompleted)
	assert.True(t, w.Milestones.Filed.IsSet())
}

func TestApplyStageChange_UndoClearsIntermediateMilestones(t *testing.T) {
	ltd, _ := CatalogFor(KindLtd)
	actor := testActor("Priya")
	now := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)

	// Walk forward through the chain, then undo back to the start of it.
	w := &Workflow{Kind: KindLtd, CurrentStage: StagePaperworkPendingChase}
	for _, s := range []Stage{
		StagePaperworkReceived,
		StageWorkInProgress,
		StageDiscussWithManager,
		StageReviewByPartner,
	} {
		now = now.Add(time.Hour)
		ApplyStageChange(ltd, w, s, actor, now)
	}
	assert.True(t, w.Milestones.PartnerReview.IsSet())

	undoer := testActor("Marcus")
	cleared := ApplyStageChange(ltd, w, StagePaperworkReceived, undoer, now.Add(time.Hour))

	assert.Equal(t, []Stage{StageWorkInProgress, StageDiscussWithManager, StageReviewByPartner}, cleared)
	assert.Equal(t, StagePaperworkReceived, w.CurrentStage)
	assert.False(t, w.Milestones.WorkInProgress.IsSet())
	assert.False(t, w.Milestones.ManagerDiscussion.IsSet())
	assert.False(t, w.Milestones.PartnerReview.IsSet())
	// The target milestone is re-stamped with the undoing actor.
	assert.True(t, w.Milestones.PaperworkReceived.IsSet())
	assert.Equal(t, "Marcus", *w.Milestones.PaperworkReceived.ByName)
	milestonesMonotonic(t, ltd, w)
}

func TestApplyStageChange_UndoFromFiledReopens(t *testing.T) {
	ltd, _ := CatalogFor(KindLtd)
	w := &Workflow{Kind: KindLtd, CurrentStage: StageSubmissionApprovedPartner}
	ApplyStageChange(ltd, w, StageFiledToHMRC, testActor("Priya"), time.Now())
	assert.True(t, w.IsCompleted)

	ApplyStageChange(ltd, w, StageSubmissionApprovedPartner, testActor("Priya"), time.Now())

	assert.False(t, w.IsCompleted)
	assert.False(t, w.Milestones.Filed.IsSet())
	assert.Equal(t, StageSubmissionApprovedPartner, w.CurrentStage)
}

func TestApplyStageChange_UndoFromLateralClearsLateralSlot(t *testing.T) {
	ltd, _ := CatalogFor(KindLtd)
	w := &Workflow{Kind: KindLtd, CurrentStage: StageWorkInProgress}
	ApplyStageChange(ltd, w, StageClientSelfFiling, testActor("Priya"), time.Now())
	assert.True(t, w.IsCompleted)
	assert.True(t, w.Milestones.SelfFiling.IsSet())
	// The chain's filed slot is untouched by a lateral move.
	assert.False(t, w.Milestones.Filed.IsSet())

	cleared := ApplyStageChange(ltd, w, StageWorkInProgress, testActor("Priya"), time.Now())

	assert.Contains(t, cleared, StageClientSelfFiling)
	assert.False(t, w.Milestones.SelfFiling.IsSet())
	assert.False(t, w.IsCompleted)
}

func TestApplyStageChange_SkipStampsOnlyTarget(t *testing.T) {
	ltd, _ := CatalogFor(KindLtd)
	w := &Workflow{Kind: KindLtd, CurrentStage: StagePaperworkPendingChase}

	ApplyStageChange(ltd, w, StageReviewByPartner, testActor("Priya"), time.Now())

	// Skipped stages stay unstamped; only the landing stage is attributed.
	assert.False(t, w.Milestones.PaperworkReceived.IsSet())
	assert.False(t, w.Milestones.WorkInProgress.IsSet())
	assert.False(t, w.Milestones.ManagerDiscussion.IsSet())
	assert.True(t, w.Milestones.PartnerReview.IsSet())
}
