package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	EmployeeID string
	Role       user.Role
}

func (a Actor) IsHR() bool {
	return a.Role == user.RoleHR || a.Role == user.RoleOwner
}

type RequestService interface {
	Create(ctx context.Context, actor Actor, req CreateLeaveRequestRequest, now time.Time) (LeaveRequest, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequestRequest, now time.Time) (LeaveRequest, error)
	Submit(ctx context.Context, actor Actor, id string, now time.Time) (LeaveRequest, error)
	ApproveByManager(ctx context.Context, actor Actor, id string, req ReviewRequest, now time.Time) (LeaveRequest, error)
	RejectByManager(ctx context.Context, actor Actor, id string, req ReviewRequest, now time.Time) (LeaveRequest, error)
	ApproveByHR(ctx context.Context, actor Actor, id string, req ReviewRequest, now time.Time) (LeaveRequest, error)
	RejectByHR(ctx context.Context, actor Actor, id string, req ReviewRequest, now time.Time) (LeaveRequest, error)
	Cancel(ctx context.Context, actor Actor, id string, req CancelRequest, now time.Time) (LeaveRequest, error)
	Remove(ctx context.Context, actor Actor, id string) error
	Get(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, int64, error)
	ListMine(ctx context.Context, actor Actor, filter RequestFilter) ([]LeaveRequest, int64, error)
}

type BalanceService interface {
	Create(ctx context.Context, req CreateLeaveBalanceRequest) (LeaveBalance, error)
	Get(ctx context.Context, id string) (LeaveBalance, error)
	List(ctx context.Context, filter BalanceFilter) ([]LeaveBalance, error)
	ListByEmployee(ctx context.Context, employeeID string, year *int) ([]LeaveBalance, error)
	Initialize(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	Adjust(ctx context.Context, id string, delta decimal.Decimal, reason string) (LeaveBalance, error)
	CarryOver(ctx context.Context, employeeID string, fromYear, toYear int) ([]LeaveBalance, error)
	Delete(ctx context.Context, id string) error
	Audit(ctx context.Context) ([]LeaveBalance, error)
}

type TypeService interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveType, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveType, error)
	Get(ctx context.Context, id string) (LeaveType, error)
	GetByCode(ctx context.Context, code string) (LeaveType, error)
	List(ctx context.Context, includeInactive bool) ([]LeaveType, error)
	ToggleActive(ctx context.Context, id string) (LeaveType, error)
	Delete(ctx context.Context, id string) error
	SeedDefaults(ctx context.Context) ([]LeaveType, error)
}

type HolidayService interface {
	Create(ctx context.Context, req CreateHolidayRequest) (Holiday, error)
	Update(ctx context.Context, id string, req UpdateHolidayRequest) (Holiday, error)
	Get(ctx context.Context, id string) (Holiday, error)
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, error)
	ListInRange(ctx context.Context, startDate, endDate string) ([]Holiday, error)
	ListUpcoming(ctx context.Context, limit int, now time.Time) ([]Holiday, error)
	Delete(ctx context.Context, id string) error
	CloneYear(ctx context.Context, fromYear, toYear int) ([]Holiday, error)
}

// TransitionEvent describes a committed state change.
type TransitionEvent struct {
	RequestID   string             `json:"request_id"`
	EmployeeID  string             `json:"employee_id"`
	Action      Action             `json:"action"`
	FromStatus  LeaveRequestStatus `json:"from_status"`
	ToStatus    LeaveRequestStatus `json:"to_status"`
	PerformedBy string             `json:"performed_by"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Notifier receives events after commit. Implementations must not block
// and their failures never affect the transition.
type Notifier interface {
	Notify(ctx context.Context, event TransitionEvent)
}
