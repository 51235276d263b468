package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Actor is the authenticated user a mutation is attributed to.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// MilestoneSlot records when a stage was reached and by whom. All fields are
// null until the workflow reaches the owning stage.
type MilestoneSlot struct {
	At     *time.Time `json:"at"`
	ByID   *uuid.UUID `gorm:"type:uuid" json:"by_id"`
	ByName *string    `json:"by_name"`
}

// IsSet reports whether the milestone has been stamped.
func (m *MilestoneSlot) IsSet() bool {
	return m.At != nil
}

func (m *MilestoneSlot) stamp(now time.Time, actor Actor) {
	at := now
	id := actor.ID
	name := actor.Name
	m.At = &at
	m.ByID = &id
	m.ByName = &name
}

func (m *MilestoneSlot) clear() {
	m.At = nil
	m.ByID = nil
	m.ByName = nil
}

// Milestones holds one slot per non-initial stage. Slots are shared across
// kinds; a kind whose catalog omits a stage simply never touches that slot.
type Milestones struct {
	PendingChase       MilestoneSlot `gorm:"embedded;embeddedPrefix:pending_chase_" json:"pending_chase"`
	PaperworkReceived  MilestoneSlot `gorm:"embedded;embeddedPrefix:paperwork_received_" json:"paperwork_received"`
	WorkInProgress     MilestoneSlot `gorm:"embedded;embeddedPrefix:work_in_progress_" json:"work_in_progress"`
	ManagerDiscussion  MilestoneSlot `gorm:"embedded;embeddedPrefix:manager_discussion_" json:"manager_discussion"`
	PartnerReview      MilestoneSlot `gorm:"embedded;embeddedPrefix:partner_review_" json:"partner_review"`
	ReviewDone         MilestoneSlot `gorm:"embedded;embeddedPrefix:review_done_" json:"review_done"`
	SentToClient       MilestoneSlot `gorm:"embedded;embeddedPrefix:sent_to_client_" json:"sent_to_client"`
	ClientApproved     MilestoneSlot `gorm:"embedded;embeddedPrefix:client_approved_" json:"client_approved"`
	SubmissionApproved MilestoneSlot `gorm:"embedded;embeddedPrefix:submission_approved_" json:"submission_approved"`
	Filed              MilestoneSlot `gorm:"embedded;embeddedPrefix:filed_" json:"filed"`
	SelfFiling         MilestoneSlot `gorm:"embedded;embeddedPrefix:self_filing_" json:"self_filing"`
}

// milestoneSlots maps each stage to its slot accessor. Initial stages have
// no slot. Keying by the Stage constants keeps unknown stages a compile-time
// concern rather than a silently ignored string.
var milestoneSlots = map[Stage]func(*Milestones) *MilestoneSlot{
	StagePaperworkPendingChase:     func(m *Milestones) *MilestoneSlot { return &m.PendingChase },
	StagePaperworkReceived:         func(m *Milestones) *MilestoneSlot { return &m.PaperworkReceived },
	StageWorkInProgress:            func(m *Milestones) *MilestoneSlot { return &m.WorkInProgress },
	StageDiscussWithManager:        func(m *Milestones) *MilestoneSlot { return &m.ManagerDiscussion },
	StageReviewByPartner:           func(m *Milestones) *MilestoneSlot { return &m.PartnerReview },
	StageReviewDoneHelloSign:       func(m *Milestones) *MilestoneSlot { return &m.ReviewDone },
	StageSentToClientHelloSign:     func(m *Milestones) *MilestoneSlot { return &m.SentToClient },
	StageApprovedByClient:          func(m *Milestones) *MilestoneSlot { return &m.ClientApproved },
	StageSubmissionApprovedPartner: func(m *Milestones) *MilestoneSlot { return &m.SubmissionApproved },
	StageFiledToHMRC:               func(m *Milestones) *MilestoneSlot { return &m.Filed },
	StageClientSelfFiling:          func(m *Milestones) *MilestoneSlot { return &m.SelfFiling },
}

// Slot returns the milestone slot for a stage, or nil for initial stages.
func (m *Milestones) Slot(s Stage) *MilestoneSlot {
	accessor, ok := milestoneSlots[s]
	if !ok {
		return nil
	}
	return accessor(m)
}

// Workflow is one filing period of one kind for one client.
type Workflow struct {
	ID                    uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_workflows_client_kind_period,priority:1" json:"client_id"`
	Kind                  Kind       `gorm:"not null;uniqueIndex:idx_workflows_client_kind_period,priority:2" json:"kind"`
	PeriodStart           time.Time  `gorm:"not null" json:"period_start"`
	PeriodEnd             time.Time  `gorm:"not null;uniqueIndex:idx_workflows_client_kind_period,priority:3" json:"period_end"`
	FilingDueDate         time.Time  `gorm:"not null;index" json:"filing_due_date"`
	CurrentStage          Stage      `gorm:"not null" json:"current_stage"`
	IsCompleted           bool       `gorm:"not null;default:false" json:"is_completed"`
	AssignedUserID        *uuid.UUID `gorm:"type:uuid" json:"assigned_user_id"`
	CreatedByRolloverFrom *uuid.UUID `gorm:"type:uuid" json:"created_by_rollover_from,omitempty"`
	Milestones            Milestones `gorm:"embedded" json:"milestones"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// HistoryEntry is one row of the append-only transition ledger. FromStage is
// null only for the creation entry; an assignment-only update is recorded
// with FromStage == ToStage and the assignment context in Notes.
type HistoryEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkflowID  uuid.UUID `gorm:"type:uuid;not null;index" json:"workflow_id"`
	FromStage   *Stage    `json:"from_stage"`
	ToStage     Stage     `gorm:"not null" json:"to_stage"`
	ChangedAt   time.Time `gorm:"not null" json:"changed_at"`
	ActorUserID uuid.UUID `gorm:"type:uuid;not null" json:"actor_user_id"`
	ActorName   string    `json:"actor_name"`
	ActorRole   string    `json:"actor_role"`
	Notes       string    `json:"notes"`
}
