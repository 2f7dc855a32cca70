package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedType(t *testing.T, s *Store) leave.LeaveType {
	t.Helper()
	lt, err := s.Types().Create(context.Background(), leave.LeaveType{
		Code:        "ANNUAL",
		Name:        "Annual Leave",
		IsActive:    true,
		DefaultDays: decimal.NewFromInt(21),
	})
	require.NoError(t, err)
	return lt
}

func TestStore_WithinTxRestoresOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lt := seedType(t, s)

	b, err := s.Balances().Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(10)))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.Balances().GetByIDForUpdate(ctx, b.ID)
		require.NoError(t, err)
		locked.Reserve(decimal.NewFromInt(4))
		_, err = s.Balances().UpdateAmounts(ctx, locked)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := s.Balances().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingDays.Equal(decimal.NewFromInt(10)))
	assert.True(t, stored.PendingDays.IsZero())
	assert.Equal(t, int64(1), stored.Version)
}

func TestStore_UpdateAmountsRejectsStaleVersion(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lt := seedType(t, s)

	b, err := s.Balances().Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(10)))
	require.NoError(t, err)

	b.Reserve(decimal.NewFromInt(1))
	version, err := s.Balances().UpdateAmounts(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	_, err = s.Balances().UpdateAmounts(ctx, b)
	assert.ErrorIs(t, err, leave.ErrConcurrency)
}

func TestStore_BalanceKeyIsUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lt := seedType(t, s)

	_, err := s.Balances().Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(10)))
	require.NoError(t, err)
	_, err = s.Balances().Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(3)))
	assert.ErrorIs(t, err, leave.ErrConflict)

	_, ok, err := s.Balances().GetByKeyForUpdate(ctx, "emp-1", lt.ID, 2026)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ListRequestsSortsAndPages(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lt := seedType(t, s)
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 5; i++ {
		lr, err := s.Requests().Create(ctx, leave.LeaveRequest{
			EmployeeID:  "emp-1",
			LeaveTypeID: lt.ID,
			StartDate:   base.AddDate(0, 0, i),
			EndDate:     base.AddDate(0, 0, i),
			TotalDays:   decimal.NewFromInt(1),
			Status:      leave.StatusDraft,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, lr.ID)
	}

	page, total, err := s.Requests().List(ctx, leave.RequestFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	require.NotNil(t, page[0].LeaveType)

	page, _, err = s.Requests().List(ctx, leave.RequestFilter{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestStore_HistoryNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lt := seedType(t, s)

	lr, err := s.Requests().Create(ctx, leave.LeaveRequest{EmployeeID: "emp-1", LeaveTypeID: lt.ID, Status: leave.StatusDraft})
	require.NoError(t, err)

	for _, action := range []leave.Action{leave.ActionCreate, leave.ActionSubmit} {
		_, err := s.History().Append(ctx, leave.History{RequestID: lr.ID, Action: action, PerformedBy: "emp-1"})
		require.NoError(t, err)
	}

	entries, err := s.History().ListByRequest(ctx, lr.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, leave.ActionSubmit, entries[0].Action)

	_, err = s.History().Append(ctx, leave.History{RequestID: "missing", Action: leave.ActionCreate})
	assert.ErrorIs(t, err, leave.ErrNotFound)
}
