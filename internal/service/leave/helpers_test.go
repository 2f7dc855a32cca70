package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	employee = leave.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}
	manager  = leave.Actor{EmployeeID: "mgr-1", Role: user.RoleManager}
	hr       = leave.Actor{EmployeeID: "hr-1", Role: user.RoleHR}
	stranger = leave.Actor{EmployeeID: "emp-2", Role: user.RoleEmployee}

	testNow = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []leave.TransitionEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e leave.TransitionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Events() []leave.TransitionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]leave.TransitionEvent(nil), n.events...)
}

type countingRecorder struct {
	mu       sync.Mutex
	retries  int
	outcomes map[string]int
}

func (r *countingRecorder) TransitionCompleted(_ leave.Action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[outcome]++
}

func (r *countingRecorder) TransitionRetried(leave.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

// flakyTx fails the first failures calls with a concurrency error before
// delegating.
type flakyTx struct {
	inner    leave.TxManager
	failures int
	calls    int
}

func (f *flakyTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.calls <= f.failures {
		return leave.ErrConcurrentModification("leave_balance", "test")
	}
	return f.inner.WithinTx(ctx, fn)
}

type fixture struct {
	store    *memory.Store
	requests leave.RequestService
	balances leave.BalanceService
	types    leave.TypeService
	notifier *recordingNotifier
	recorder *countingRecorder

	annual    leave.LeaveType // HR stage, half day allowed, max 30
	emergency leave.LeaveType // no HR stage, max 3
}

var fastRetry = RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithTx(t, nil)
}

func newFixtureWithTx(t *testing.T, wrap func(leave.TxManager) leave.TxManager) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	var tx leave.TxManager = store
	if wrap != nil {
		tx = wrap(store)
	}

	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		recorder: &countingRecorder{},
	}
	f.requests = NewRequestService(tx, store.Types(), store.Balances(), store.Requests(), store.History(), f.notifier, f.recorder, fastRetry)
	f.balances = NewBalanceService(store, store.Types(), store.Balances(), fastRetry)
	f.types = NewTypeService(store.Types())

	maxAnnual, maxEmergency := 30, 3
	var err error
	f.annual, err = store.Types().Create(ctx, leave.LeaveType{
		Code:              "ANNUAL",
		Name:              "Annual Leave",
		IsPaid:            true,
		RequiresApproval:  true,
		AllowHalfDay:      true,
		IsActive:          true,
		MaxDaysPerRequest: &maxAnnual,
		DefaultDays:       decimal.NewFromInt(21),
	})
	require.NoError(t, err)

	f.emergency, err = store.Types().Create(ctx, leave.LeaveType{
		Code:              "EMERGENCY",
		Name:              "Emergency Leave",
		IsPaid:            true,
		RequiresApproval:  false,
		IsActive:          true,
		MaxDaysPerRequest: &maxEmergency,
		DefaultDays:       decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) balance(t *testing.T, lt leave.LeaveType, total int64) leave.LeaveBalance {
	t.Helper()
	b, err := f.store.Balances().Create(context.Background(), leave.NewBalance(employee.EmployeeID, lt.ID, 2025, decimal.NewFromInt(total)))
	require.NoError(t, err)
	return b
}

func (f *fixture) draft(t *testing.T, lt leave.LeaveType, start, end string) leave.LeaveRequest {
	t.Helper()
	r, err := f.requests.Create(context.Background(), employee, leave.CreateLeaveRequestRequest{
		LeaveTypeID: lt.ID,
		StartDate:   start,
		EndDate:     end,
	}, testNow)
	require.NoError(t, err)
	return r
}

func (f *fixture) reload(t *testing.T, id string) leave.LeaveBalance {
	t.Helper()
	b, err := f.store.Balances().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func days(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
