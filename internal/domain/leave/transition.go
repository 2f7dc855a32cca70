package leave

type LeaveRequestStatus string

const (
	StatusDraft          LeaveRequestStatus = "DRAFT"
	StatusPendingManager LeaveRequestStatus = "PENDING_MANAGER"
	StatusPendingHR      LeaveRequestStatus = "PENDING_HR"
	StatusApproved       LeaveRequestStatus = "APPROVED"
	StatusRejected       LeaveRequestStatus = "REJECTED"
	StatusCancelled      LeaveRequestStatus = "CANCELLED"
)

var allStatuses = []LeaveRequestStatus{
	StatusDraft,
	StatusPendingManager,
	StatusPendingHR,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
}

func (s LeaveRequestStatus) IsValid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no review action can follow. APPROVED still
// accepts CANCEL.
func (s LeaveRequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

func (s LeaveRequestStatus) Ptr() *LeaveRequestStatus {
	return &s
}

// Action tags both transitions and history entries.
type Action string

const (
	ActionCreate         Action = "CREATE"
	ActionUpdate         Action = "UPDATE"
	ActionSubmit         Action = "SUBMIT"
	ActionManagerApprove Action = "MANAGER_APPROVE"
	ActionManagerReject  Action = "MANAGER_REJECT"
	ActionHRApprove      Action = "HR_APPROVE"
	ActionHRReject       Action = "HR_REJECT"
	ActionCancel         Action = "CANCEL"
)

// LedgerOp is the balance mutation a transition applies.
type LedgerOp string

const (
	LedgerNone        LedgerOp = "none"
	LedgerReserve     LedgerOp = "reserve"
	LedgerCommit      LedgerOp = "commit"
	LedgerRelease     LedgerOp = "release"
	LedgerReleaseUsed LedgerOp = "release_used"
)

// Transition is one row of the state machine.
type Transition struct {
	From   LeaveRequestStatus
	Action Action
	To     LeaveRequestStatus
	Ledger LedgerOp
}

type transitionKey struct {
	from   LeaveRequestStatus
	action Action
	hr     bool
}

// transitions is the complete table. hr selects the manager-approval
// branch: true when the request was submitted with an HR stage. Rows that
// do not depend on it are registered for both values.
var transitions = map[transitionKey]Transition{}

func register(t Transition, hrValues ...bool) {
	if len(hrValues) == 0 {
		hrValues = []bool{false, true}
	}
	for _, hr := range hrValues {
		transitions[transitionKey{from: t.From, action: t.Action, hr: hr}] = t
	}
}

func init() {
	register(Transition{StatusDraft, ActionSubmit, StatusPendingManager, LedgerReserve})

	register(Transition{StatusPendingManager, ActionManagerApprove, StatusPendingHR, LedgerNone}, true)
	register(Transition{StatusPendingManager, ActionManagerApprove, StatusApproved, LedgerCommit}, false)
	register(Transition{StatusPendingManager, ActionManagerReject, StatusRejected, LedgerRelease})

	register(Transition{StatusPendingHR, ActionHRApprove, StatusApproved, LedgerCommit})
	register(Transition{StatusPendingHR, ActionHRReject, StatusRejected, LedgerRelease})

	register(Transition{StatusDraft, ActionCancel, StatusCancelled, LedgerNone})
	register(Transition{StatusPendingManager, ActionCancel, StatusCancelled, LedgerRelease})
	register(Transition{StatusPendingHR, ActionCancel, StatusCancelled, LedgerRelease})
	register(Transition{StatusApproved, ActionCancel, StatusCancelled, LedgerReleaseUsed})
}

// Lookup returns the transition for action from the given status, or an
// InvalidStateError when the table has no such row. requiresHR is the HR
// stage decision the request captured at submission.
func Lookup(from LeaveRequestStatus, action Action, requiresHR bool) (Transition, error) {
	t, ok := transitions[transitionKey{from: from, action: action, hr: requiresHR}]
	if !ok {
		return Transition{}, ErrInvalidTransition(from, action)
	}
	return t, nil
}

// Transitions lists every row of the table.
func Transitions() []Transition {
	seen := make(map[Transition]struct{})
	out := make([]Transition, 0, len(transitions))
	for _, t := range transitions {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
