package workflow

import "fmt"

// Kind identifies which filing workflow a record belongs to.
type Kind string

const (
	KindVAT    Kind = "VAT"
	KindLtd    Kind = "LTD"
	KindNonLtd Kind = "NON_LTD"
)

// Stage is a position in a filing workflow.
type Stage string

const (
	StageWaitingForYearEnd         Stage = "WAITING_FOR_YEAR_END"
	StageWaitingForQuarterEnd      Stage = "WAITING_FOR_QUARTER_END"
	StagePaperworkPendingChase     Stage = "PAPERWORK_PENDING_CHASE"
	StagePaperworkReceived         Stage = "PAPERWORK_RECEIVED"
	StageWorkInProgress            Stage = "WORK_IN_PROGRESS"
	StageDiscussWithManager        Stage = "DISCUSS_WITH_MANAGER"
	StageReviewByPartner           Stage = "REVIEW_BY_PARTNER"
	StageReviewDoneHelloSign       Stage = "REVIEW_DONE_HELLO_SIGN"
	StageSentToClientHelloSign     Stage = "SENT_TO_CLIENT_HELLO_SIGN"
	StageApprovedByClient          Stage = "APPROVED_BY_CLIENT"
	StageSubmissionApprovedPartner Stage = "SUBMISSION_APPROVED_PARTNER"
	StageFiledToHMRC               Stage = "FILED_TO_HMRC"
	StageClientSelfFiling          Stage = "CLIENT_SELF_FILING"
)

// Catalog is the ordered stage table for one workflow kind. The chain order
// is used for skip and undo classification, not as a strict total order of
// validity. Lateral stages sit outside the chain and index as their
// equivalent chain stage.
type Catalog struct {
	Kind  Kind
	Order []Stage

	terminal map[Stage]bool
	lateral  map[Stage]Stage
	index    map[Stage]int
}

func newCatalog(kind Kind, order []Stage, terminal []Stage, lateral map[Stage]Stage) *Catalog {
	c := &Catalog{
		Kind:     kind,
		Order:    order,
		terminal: make(map[Stage]bool, len(terminal)),
		lateral:  lateral,
		index:    make(map[Stage]int, len(order)+len(lateral)),
	}
	for i, s := range order {
		c.index[s] = i
	}
	for _, s := range terminal {
		c.terminal[s] = true
	}
	for side, equivalent := range lateral {
		c.index[side] = c.index[equivalent]
		c.terminal[side] = true
	}
	return c
}

var ltdCatalog = newCatalog(KindLtd,
	[]Stage{
		StageWaitingForYearEnd,
		StagePaperworkPendingChase,
		StagePaperworkReceived,
		StageWorkInProgress,
		StageDiscussWithManager,
		StageReviewByPartner,
		StageReviewDoneHelloSign,
		StageSentToClientHelloSign,
		StageApprovedByClient,
		StageSubmissionApprovedPartner,
		StageFiledToHMRC,
	},
	[]Stage{StageFiledToHMRC},
	map[Stage]Stage{StageClientSelfFiling: StageFiledToHMRC},
)

var nonLtdCatalog = newCatalog(KindNonLtd,
	[]Stage{
		StageWaitingForYearEnd,
		StagePaperworkPendingChase,
		StagePaperworkReceived,
		StageWorkInProgress,
		StageDiscussWithManager,
		StageReviewByPartner,
		StageReviewDoneHelloSign,
		StageSentToClientHelloSign,
		StageApprovedByClient,
		StageSubmissionApprovedPartner,
		StageFiledToHMRC,
	},
	[]Stage{StageFiledToHMRC},
	map[Stage]Stage{StageClientSelfFiling: StageFiledToHMRC},
)

var vatCatalog = newCatalog(KindVAT,
	[]Stage{
		StageWaitingForQuarterEnd,
		StagePaperworkPendingChase,
		StagePaperworkReceived,
		StageWorkInProgress,
		StageDiscussWithManager,
		StageSentToClientHelloSign,
		StageApprovedByClient,
		StageFiledToHMRC,
	},
	[]Stage{StageFiledToHMRC},
	map[Stage]Stage{StageClientSelfFiling: StageFiledToHMRC},
)

// CatalogFor returns the stage catalog for a workflow kind.
func CatalogFor(kind Kind) (*Catalog, error) {
	switch kind {
	case KindVAT:
		return vatCatalog, nil
	case KindLtd:
		return ltdCatalog, nil
	case KindNonLtd:
		return nonLtdCatalog, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Initial returns the stage a freshly created workflow starts in.
func (c *Catalog) Initial() Stage {
	return c.Order[0]
}

// Index returns the chain position of a stage. Lateral stages report the
// position of their equivalent chain stage.
func (c *Catalog) Index(s Stage) (int, bool) {
	i, ok := c.index[s]
	return i, ok
}

// Contains reports whether the stage is a member of this catalog.
func (c *Catalog) Contains(s Stage) bool {
	_, ok := c.index[s]
	return ok
}

// IsTerminal reports whether reaching the stage completes the workflow.
func (c *Catalog) IsTerminal(s Stage) bool {
	return c.terminal[s]
}

// IsLateral reports whether the stage sits outside the main chain.
func (c *Catalog) IsLateral(s Stage) bool {
	_, ok := c.lateral[s]
	return ok
}

// AllowedNext lists the stages reachable from the given stage without an
// override: the immediate successor in the chain plus any lateral stage.
func (c *Catalog) AllowedNext(from Stage) []Stage {
	var next []Stage
	if i, ok := c.index[from]; ok && !c.IsLateral(from) && i+1 < len(c.Order) {
		next = append(next, c.Order[i+1])
	}
	if !c.terminal[from] {
		for side := range c.lateral {
			next = append(next, side)
		}
	}
	return next
}
