package leave

import (
	"context"
	"time"
)

// TxManager runs fn in one transaction. Repositories called with the
// context passed to fn take part in it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetByCode(ctx context.Context, code string) (LeaveType, error)
	List(ctx context.Context, includeInactive bool) ([]LeaveType, error)
	Update(ctx context.Context, leaveType LeaveType) error
	Delete(ctx context.Context, id string) error
	// CountReferences counts requests and balances pointing at the type.
	CountReferences(ctx context.Context, id string) (int64, error)
}

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	Create(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	GetByID(ctx context.Context, id string) (LeaveBalance, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveBalance, error)
	// GetByKeyForUpdate returns ok=false when no row exists for the key.
	GetByKeyForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, bool, error)
	List(ctx context.Context, filter BalanceFilter) ([]LeaveBalance, error)
	// UpdateAmounts writes the day columns when the stored version still
	// equals balance.Version and returns the new version.
	UpdateAmounts(ctx context.Context, balance LeaveBalance) (int64, error)
	Delete(ctx context.Context, id string) error
	// CountReservations counts requests whose reservation lives on the row.
	CountReservations(ctx context.Context, id string) (int64, error)
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, int64, error)
	Update(ctx context.Context, request LeaveRequest) error
	Delete(ctx context.Context, id string) error
}

// LeaveHistoryRepository - interface for leave_request_history table
type LeaveHistoryRepository interface {
	Append(ctx context.Context, entry History) (History, error)
	ListByRequest(ctx context.Context, requestID string) ([]History, error)
}

// HolidayRepository - interface for leave_holidays table. Lists are ordered
// by date.
type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, error)
	// ListInRange returns holidays overlapping the inclusive range.
	ListInRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
	// ListUpcoming returns at most limit holidays dated on or after from.
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]Holiday, error)
	Update(ctx context.Context, holiday Holiday) error
	Delete(ctx context.Context, id string) error
}
