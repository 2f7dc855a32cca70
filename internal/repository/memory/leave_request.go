package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

func (r *leaveRequestRepository) Create(ctx context.Context, lr leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.types[lr.LeaveTypeID]; !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeInvalid(lr.LeaveTypeID)
	}
	if lr.ID == "" {
		id, err := newID("leave request")
		if err != nil {
			return leave.LeaveRequest{}, err
		}
		lr.ID = id
	}
	r.s.requests[lr.ID] = stripRelations(lr)
	return lr, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer r.s.lock(ctx)()

	lr, ok := r.s.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrRequestNotFound(id)
	}
	return lr, nil
}

// GetByIDForUpdate needs no row lock: WithinTx already serializes writers.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	defer r.s.lock(ctx)()
	filter.Normalize()

	matched := make([]leave.LeaveRequest, 0)
	for _, lr := range r.s.requests {
		if filter.EmployeeID != nil && lr.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && lr.Status != *filter.Status {
			continue
		}
		if filter.Year != nil && lr.StartDate.Year() != *filter.Year {
			continue
		}
		matched = append(matched, lr)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]leave.LeaveRequest, 0, end-start)
	for _, lr := range matched[start:end] {
		if lt, ok := r.s.types[lr.LeaveTypeID]; ok {
			lr.LeaveType = &lt
		}
		page = append(page, lr)
	}
	return page, total, nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, lr leave.LeaveRequest) error {
	defer r.s.lock(ctx)()

	current, ok := r.s.requests[lr.ID]
	if !ok {
		return leave.ErrRequestNotFound(lr.ID)
	}
	if _, ok := r.s.types[lr.LeaveTypeID]; !ok {
		return leave.ErrLeaveTypeInvalid(lr.LeaveTypeID)
	}
	lr.EmployeeID = current.EmployeeID
	lr.CreatedAt = current.CreatedAt
	r.s.requests[lr.ID] = stripRelations(lr)
	return nil
}

func (r *leaveRequestRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.requests[id]; !ok {
		return leave.ErrRequestNotFound(id)
	}
	delete(r.s.requests, id)
	delete(r.s.history, id)
	return nil
}

func stripRelations(lr leave.LeaveRequest) leave.LeaveRequest {
	lr.LeaveType = nil
	lr.History = nil
	return lr
}

type leaveHistoryRepository struct {
	s *Store
}

func (r *leaveHistoryRepository) Append(ctx context.Context, entry leave.History) (leave.History, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.requests[entry.RequestID]; !ok {
		return leave.History{}, leave.ErrRequestNotFound(entry.RequestID)
	}
	if entry.ID == "" {
		id, err := newID("history")
		if err != nil {
			return leave.History{}, err
		}
		entry.ID = id
	}
	r.s.history[entry.RequestID] = append(r.s.history[entry.RequestID], entry)
	return entry, nil
}

// ListByRequest returns entries newest first.
func (r *leaveHistoryRepository) ListByRequest(ctx context.Context, requestID string) ([]leave.History, error) {
	defer r.s.lock(ctx)()

	entries := r.s.history[requestID]
	out := make([]leave.History, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
