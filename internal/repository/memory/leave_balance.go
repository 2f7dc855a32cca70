package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type leaveBalanceRepository struct {
	s *Store
}

func (r *leaveBalanceRepository) Create(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.types[b.LeaveTypeID]; !ok {
		return leave.LeaveBalance{}, leave.ErrLeaveTypeInvalid(b.LeaveTypeID)
	}
	if _, ok := r.s.findBalance(b.EmployeeID, b.LeaveTypeID, b.Year); ok {
		return leave.LeaveBalance{}, leave.ErrBalanceExists(b.EmployeeID, b.LeaveTypeID, b.Year)
	}
	if b.ID == "" {
		id, err := newID("leave balance")
		if err != nil {
			return leave.LeaveBalance{}, err
		}
		b.ID = id
	}
	now := time.Now()
	b.Version = 1
	b.CreatedAt, b.UpdatedAt = now, now
	b.LeaveType = nil
	r.s.balances[b.ID] = b
	return b, nil
}

func (r *leaveBalanceRepository) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.balances[id]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound(id)
	}
	return b, nil
}

// GetByIDForUpdate needs no row lock: WithinTx already serializes writers.
func (r *leaveBalanceRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveBalance, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveBalanceRepository) GetByKeyForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, bool, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.findBalance(employeeID, leaveTypeID, year)
	return b, ok, nil
}

func (s *Store) findBalance(employeeID, leaveTypeID string, year int) (leave.LeaveBalance, bool) {
	for _, b := range s.balances {
		if b.EmployeeID == employeeID && b.LeaveTypeID == leaveTypeID && b.Year == year {
			return b, true
		}
	}
	return leave.LeaveBalance{}, false
}

func (r *leaveBalanceRepository) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, error) {
	defer r.s.lock(ctx)()

	balances := make([]leave.LeaveBalance, 0)
	for _, b := range r.s.balances {
		if filter.EmployeeID != nil && b.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.LeaveTypeID != nil && b.LeaveTypeID != *filter.LeaveTypeID {
			continue
		}
		if filter.Year != nil && b.Year != *filter.Year {
			continue
		}
		if lt, ok := r.s.types[b.LeaveTypeID]; ok {
			b.LeaveType = &lt
		}
		balances = append(balances, b)
	}
	sort.Slice(balances, func(i, j int) bool {
		a, c := balances[i], balances[j]
		if a.Year != c.Year {
			return a.Year > c.Year
		}
		if a.LeaveType != nil && c.LeaveType != nil && a.LeaveType.Name != c.LeaveType.Name {
			return a.LeaveType.Name < c.LeaveType.Name
		}
		return a.ID < c.ID
	})
	return balances, nil
}

func (r *leaveBalanceRepository) UpdateAmounts(ctx context.Context, b leave.LeaveBalance) (int64, error) {
	defer r.s.lock(ctx)()

	current, ok := r.s.balances[b.ID]
	if !ok || current.Version != b.Version {
		return 0, leave.ErrConcurrentModification("leave_balance", b.ID)
	}
	current.TotalDays = b.TotalDays
	current.UsedDays = b.UsedDays
	current.PendingDays = b.PendingDays
	current.RemainingDays = b.RemainingDays
	current.CarriedOverDays = b.CarriedOverDays
	current.AdjustmentDays = b.AdjustmentDays
	current.Version++
	current.UpdatedAt = time.Now()
	r.s.balances[b.ID] = current
	return current.Version, nil
}

func (r *leaveBalanceRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.balances[id]; !ok {
		return leave.ErrBalanceNotFound(id)
	}
	if r.s.countReservations(id) > 0 {
		return leave.ErrBalanceInUse(id)
	}
	delete(r.s.balances, id)
	return nil
}

func (r *leaveBalanceRepository) CountReservations(ctx context.Context, id string) (int64, error) {
	defer r.s.lock(ctx)()
	return r.s.countReservations(id), nil
}

func (s *Store) countReservations(id string) int64 {
	var n int64
	for _, lr := range s.requests {
		if lr.BalanceID != nil && *lr.BalanceID == id {
			n++
		}
	}
	return n
}
