// Package memory provides in-process implementations of the leave
// repositories. All repositories of one Store share a single mutex, and
// WithinTx holds it for the whole callback and restores a snapshot when the
// callback fails.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	types    map[string]leave.LeaveType
	balances map[string]leave.LeaveBalance
	requests map[string]leave.LeaveRequest
	history  map[string][]leave.History
	holidays map[string]leave.Holiday

	// Inbox entries live outside transactions and snapshots.
	notifications map[string]notification.Notification
}

func NewStore() *Store {
	return &Store{
		types:    make(map[string]leave.LeaveType),
		balances: make(map[string]leave.LeaveBalance),
		requests: make(map[string]leave.LeaveRequest),
		history:  make(map[string][]leave.History),
		holidays: make(map[string]leave.Holiday),

		notifications: make(map[string]notification.Notification),
	}
}

type txKey struct{}

type snapshot struct {
	types    map[string]leave.LeaveType
	balances map[string]leave.LeaveBalance
	requests map[string]leave.LeaveRequest
	history  map[string][]leave.History
	holidays map[string]leave.Holiday
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		types:    make(map[string]leave.LeaveType, len(s.types)),
		balances: make(map[string]leave.LeaveBalance, len(s.balances)),
		requests: make(map[string]leave.LeaveRequest, len(s.requests)),
		history:  make(map[string][]leave.History, len(s.history)),
		holidays: make(map[string]leave.Holiday, len(s.holidays)),
	}
	for k, v := range s.types {
		snap.types[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	for k, v := range s.history {
		snap.history[k] = append([]leave.History(nil), v...)
	}
	for k, v := range s.holidays {
		snap.holidays[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.types = snap.types
	s.balances = snap.balances
	s.requests = snap.requests
	s.history = snap.history
	s.holidays = snap.holidays
}

// WithinTx implements leave.TxManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			slog.Error("rollback during panic recovery", "panic", p)
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock takes the store mutex unless ctx already runs inside WithinTx.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func newID(kind string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate %s id: %w", kind, err)
	}
	return id.String(), nil
}

// Types, Balances, Requests, History and Holidays return the repository
// views of s.

func (s *Store) Types() leave.LeaveTypeRepository {
	return &leaveTypeRepository{s: s}
}

func (s *Store) Balances() leave.LeaveBalanceRepository {
	return &leaveBalanceRepository{s: s}
}

func (s *Store) Requests() leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

func (s *Store) History() leave.LeaveHistoryRepository {
	return &leaveHistoryRepository{s: s}
}

func (s *Store) Holidays() leave.HolidayRepository {
	return &holidayRepository{s: s}
}

func (s *Store) Notifications() notification.Repository {
	return &notificationRepository{s: s}
}
