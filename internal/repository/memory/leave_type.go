package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type leaveTypeRepository struct {
	s *Store
}

func (r *leaveTypeRepository) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	defer r.s.lock(ctx)()

	for _, existing := range r.s.types {
		if existing.Code == lt.Code {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists(lt.Code)
		}
	}
	if lt.ID == "" {
		id, err := newID("leave type")
		if err != nil {
			return leave.LeaveType{}, err
		}
		lt.ID = id
	}
	now := time.Now()
	lt.CreatedAt, lt.UpdatedAt = now, now
	r.s.types[lt.ID] = lt
	return lt, nil
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	defer r.s.lock(ctx)()

	lt, ok := r.s.types[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound(id)
	}
	return lt, nil
}

func (r *leaveTypeRepository) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	defer r.s.lock(ctx)()

	for _, lt := range r.s.types {
		if lt.Code == code {
			return lt, nil
		}
	}
	return leave.LeaveType{}, leave.ErrLeaveTypeCodeNotFound(code)
}

func (r *leaveTypeRepository) List(ctx context.Context, includeInactive bool) ([]leave.LeaveType, error) {
	defer r.s.lock(ctx)()

	types := make([]leave.LeaveType, 0, len(r.s.types))
	for _, lt := range r.s.types {
		if lt.IsActive || includeInactive {
			types = append(types, lt)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Name != types[j].Name {
			return types[i].Name < types[j].Name
		}
		return types[i].ID < types[j].ID
	})
	return types, nil
}

func (r *leaveTypeRepository) Update(ctx context.Context, lt leave.LeaveType) error {
	defer r.s.lock(ctx)()

	current, ok := r.s.types[lt.ID]
	if !ok {
		return leave.ErrLeaveTypeNotFound(lt.ID)
	}
	for _, existing := range r.s.types {
		if existing.ID != lt.ID && existing.Code == lt.Code {
			return leave.ErrLeaveTypeCodeExists(lt.Code)
		}
	}
	lt.CreatedAt = current.CreatedAt
	r.s.types[lt.ID] = lt
	return nil
}

func (r *leaveTypeRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.types[id]; !ok {
		return leave.ErrLeaveTypeNotFound(id)
	}
	if r.s.countTypeReferences(id) > 0 {
		return leave.ErrLeaveTypeInUse(id)
	}
	delete(r.s.types, id)
	return nil
}

func (r *leaveTypeRepository) CountReferences(ctx context.Context, id string) (int64, error) {
	defer r.s.lock(ctx)()
	return r.s.countTypeReferences(id), nil
}

func (s *Store) countTypeReferences(id string) int64 {
	var n int64
	for _, lr := range s.requests {
		if lr.LeaveTypeID == id {
			n++
		}
	}
	for _, b := range s.balances {
		if b.LeaveTypeID == id {
			n++
		}
	}
	return n
}
