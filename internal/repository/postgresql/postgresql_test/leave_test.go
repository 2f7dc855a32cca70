package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAnnualType(t *testing.T, repo leave.LeaveTypeRepository) leave.LeaveType {
	t.Helper()
	lt, err := repo.Create(context.Background(), leave.LeaveType{
		Code:             "ANNUAL",
		Name:             "Annual Leave",
		IsPaid:           true,
		RequiresApproval: true,
		AllowHalfDay:     true,
		IsActive:         true,
		DefaultDays:      decimal.NewFromInt(21),
	})
	require.NoError(t, err)
	return lt
}

func TestLeaveTypeRepository_CreateAndGet(t *testing.T) {
	db := requireDB(t)
	repo := postgresql.NewLeaveTypeRepository(db)
	ctx := context.Background()

	lt := createAnnualType(t, repo)
	assert.NotEmpty(t, lt.ID)

	byID, err := repo.GetByID(ctx, lt.ID)
	require.NoError(t, err)
	assert.Equal(t, "ANNUAL", byID.Code)
	assert.True(t, byID.DefaultDays.Equal(decimal.NewFromInt(21)))

	byCode, err := repo.GetByCode(ctx, "ANNUAL")
	require.NoError(t, err)
	assert.Equal(t, lt.ID, byCode.ID)

	_, err = repo.Create(ctx, leave.LeaveType{Code: "ANNUAL", Name: "Duplicate", IsActive: true})
	assert.ErrorIs(t, err, leave.ErrConflict)

	_, err = repo.GetByCode(ctx, "MISSING")
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestLeaveBalanceRepository_UpdateAmountsChecksVersion(t *testing.T) {
	db := requireDB(t)
	typeRepo := postgresql.NewLeaveTypeRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	ctx := context.Background()

	lt := createAnnualType(t, typeRepo)

	b, err := balanceRepo.Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(12)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Version)

	b.Reserve(decimal.NewFromInt(3))
	version, err := balanceRepo.UpdateAmounts(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Stale version
	_, err = balanceRepo.UpdateAmounts(ctx, b)
	assert.ErrorIs(t, err, leave.ErrConcurrency)

	stored, err := balanceRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.PendingDays.Equal(decimal.NewFromInt(3)))
	assert.True(t, stored.RemainingDays.Equal(decimal.NewFromInt(9)))
	assert.NoError(t, stored.Check())

	_, err = balanceRepo.Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(5)))
	assert.ErrorIs(t, err, leave.ErrConflict)
}

func TestLeaveBalanceRepository_GetByKeyForUpdate(t *testing.T) {
	db := requireDB(t)
	typeRepo := postgresql.NewLeaveTypeRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	txManager := postgresql.NewTxManager(db)
	ctx := context.Background()

	lt := createAnnualType(t, typeRepo)
	created, err := balanceRepo.Create(ctx, leave.NewBalance("emp-1", lt.ID, 2025, decimal.NewFromInt(12)))
	require.NoError(t, err)

	err = txManager.WithinTx(ctx, func(ctx context.Context) error {
		b, ok, err := balanceRepo.GetByKeyForUpdate(ctx, "emp-1", lt.ID, 2025)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, created.ID, b.ID)

		_, ok, err = balanceRepo.GetByKeyForUpdate(ctx, "emp-1", lt.ID, 2026)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := requireDB(t)
	typeRepo := postgresql.NewLeaveTypeRepository(db)
	txManager := postgresql.NewTxManager(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := txManager.WithinTx(ctx, func(ctx context.Context) error {
		_, err := typeRepo.Create(ctx, leave.LeaveType{Code: "SICK", Name: "Sick Leave", IsActive: true})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	types, err := typeRepo.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestLeaveRequestRepository_ListFiltersAndPages(t *testing.T) {
	db := requireDB(t)
	typeRepo := postgresql.NewLeaveTypeRepository(db)
	requestRepo := postgresql.NewLeaveRequestRepository(db)
	historyRepo := postgresql.NewLeaveHistoryRepository(db)
	ctx := context.Background()

	lt := createAnnualType(t, typeRepo)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	var lastID string
	for i := 0; i < 3; i++ {
		start := time.Date(2025, 4, 1+i, 0, 0, 0, 0, time.UTC)
		lr, err := requestRepo.Create(ctx, leave.LeaveRequest{
			EmployeeID:  "emp-1",
			LeaveTypeID: lt.ID,
			StartDate:   start,
			EndDate:     start,
			TotalDays:   decimal.NewFromInt(1),
			Status:      leave.StatusDraft,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		lastID = lr.ID

		_, err = historyRepo.Append(ctx, leave.History{
			RequestID:   lr.ID,
			Action:      leave.ActionCreate,
			ToStatus:    leave.StatusDraft,
			PerformedBy: "emp-1",
			CreatedAt:   lr.CreatedAt,
		})
		require.NoError(t, err)
	}

	_, err := requestRepo.Create(ctx, leave.LeaveRequest{
		EmployeeID:  "emp-2",
		LeaveTypeID: lt.ID,
		StartDate:   time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		TotalDays:   decimal.NewFromInt(4),
		Status:      leave.StatusDraft,
		CreatedAt:   base,
		UpdatedAt:   base,
	})
	require.NoError(t, err)

	employee := "emp-1"
	year := 2025
	requests, total, err := requestRepo.List(ctx, leave.RequestFilter{EmployeeID: &employee, Year: &year, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, requests, 2)
	assert.Equal(t, lastID, requests[0].ID)
	require.NotNil(t, requests[0].LeaveType)
	assert.Equal(t, "ANNUAL", requests[0].LeaveType.Code)

	year = 2024
	requests, total, err = requestRepo.List(ctx, leave.RequestFilter{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "emp-2", requests[0].EmployeeID)

	year = 2026
	_, total, err = requestRepo.List(ctx, leave.RequestFilter{Year: &year})
	require.NoError(t, err)
	assert.Zero(t, total)

	stored, err := requestRepo.GetByID(ctx, lastID)
	require.NoError(t, err)
	assert.False(t, stored.RequiresHRReview)
	stored.Status = leave.StatusPendingManager
	stored.RequiresHRReview = true
	require.NoError(t, requestRepo.Update(ctx, stored))
	stored, err = requestRepo.GetByID(ctx, lastID)
	require.NoError(t, err)
	assert.True(t, stored.RequiresHRReview)

	history, err := historyRepo.ListByRequest(ctx, lastID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, leave.ActionCreate, history[0].Action)

	require.NoError(t, requestRepo.Delete(ctx, lastID))
	history, err = historyRepo.ListByRequest(ctx, lastID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
