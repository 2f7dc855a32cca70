package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID          string
	Code        string
	Name        string
	Description *string

	// Policy Rules
	IsPaid             bool
	RequiresApproval   bool // governs the HR stage; the manager stage is always required
	RequiresAttachment bool
	AllowHalfDay       bool
	IsActive           bool

	// Request Rules
	MaxDaysPerRequest *int
	MinDaysNotice     *int

	// Quota Rules
	DefaultDays decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveBalance is the ledger row for one (employee, leave type, year).
type LeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	TotalDays     decimal.Decimal
	UsedDays      decimal.Decimal
	PendingDays   decimal.Decimal
	RemainingDays decimal.Decimal

	CarriedOverDays decimal.Decimal
	AdjustmentDays  decimal.Decimal

	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveType *LeaveType
}

type HalfDayPeriod string

const (
	HalfDayMorning   HalfDayPeriod = "MORNING"
	HalfDayAfternoon HalfDayPeriod = "AFTERNOON"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// Review holds one approval stage of a request.
type Review struct {
	Status     *ReviewStatus
	ReviewerID *string
	ReviewedAt *time.Time
	Notes      *string
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string

	StartDate     time.Time
	EndDate       time.Time
	TotalDays     decimal.Decimal
	IsHalfDay     bool
	HalfDayPeriod *HalfDayPeriod

	Reason        *string
	SubstituteID  *string
	ContactDuring *string

	Status        LeaveRequestStatus
	ManagerReview Review
	HRReview      Review

	CancelReason *string
	CancelledBy  *string
	CancelledAt  *time.Time

	// RequiresHRReview snapshots the leave type's RequiresApproval flag at
	// submission. Later edits to the type do not change the review path.
	RequiresHRReview bool

	// BalanceID is set when submission reserved days on a ledger row.
	BalanceID *string

	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	LeaveType *LeaveType
	History   []History
}

// BalanceYear is the ledger year the request is matched against.
func (r LeaveRequest) BalanceYear() int {
	return r.StartDate.Year()
}

func (r LeaveRequest) IsOwnedBy(employeeID string) bool {
	return r.EmployeeID == employeeID
}

// History is one append-only audit entry of a request.
type History struct {
	ID          string
	RequestID   string
	Action      Action
	FromStatus  *LeaveRequestStatus
	ToStatus    LeaveRequestStatus
	PerformedBy string
	Notes       *string
	CreatedAt   time.Time
}

type HolidayType string

const (
	HolidayPublic    HolidayType = "PUBLIC"
	HolidayReligious HolidayType = "RELIGIOUS"
	HolidayNational  HolidayType = "NATIONAL"
	HolidayOther     HolidayType = "OTHER"
)

func (t HolidayType) IsValid() bool {
	switch t {
	case HolidayPublic, HolidayReligious, HolidayNational, HolidayOther:
		return true
	}
	return false
}

// Holiday is a company calendar entry. Request day counts do not exclude
// holidays.
type Holiday struct {
	ID        string
	Name      string
	LocalName *string

	Date    time.Time
	EndDate *time.Time // nil for a single-day holiday

	Type        HolidayType
	IsRecurring bool
	Year        int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LastDay is the final day the holiday covers.
func (h Holiday) LastDay() time.Time {
	if h.EndDate != nil {
		return *h.EndDate
	}
	return h.Date
}
