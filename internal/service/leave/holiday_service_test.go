package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolidayService(t *testing.T) leave.HolidayService {
	t.Helper()
	store := memory.NewStore()
	return NewHolidayService(store, store.Holidays())
}

func strPtr(s string) *string { return &s }

func TestHolidayService_CreateDerivesYearAndType(t *testing.T) {
	svc := newHolidayService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, leave.CreateHolidayRequest{Name: " Independence Day ", Date: "2025-08-17"})
	require.NoError(t, err)
	assert.Equal(t, "Independence Day", h.Name)
	assert.Equal(t, 2025, h.Year)
	assert.Equal(t, leave.HolidayPublic, h.Type)
	assert.Nil(t, h.EndDate)

	fiscal := 2024
	h, err = svc.Create(ctx, leave.CreateHolidayRequest{
		Name:    "Year End",
		Date:    "2025-01-02",
		EndDate: strPtr("2025-01-03"),
		Type:    strPtr("OTHER"),
		Year:    &fiscal,
	})
	require.NoError(t, err)
	assert.Equal(t, 2024, h.Year)
	assert.Equal(t, leave.HolidayOther, h.Type)
	require.NotNil(t, h.EndDate)

	_, err = svc.Create(ctx, leave.CreateHolidayRequest{Name: "Backwards", Date: "2025-05-02", EndDate: strPtr("2025-05-01")})
	assert.ErrorIs(t, err, leave.ErrValidation)

	_, err = svc.Create(ctx, leave.CreateHolidayRequest{Name: "Bad", Date: "02/05/2025"})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestHolidayService_UpdateMovesYearWithDate(t *testing.T) {
	svc := newHolidayService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, leave.CreateHolidayRequest{Name: "Founders Day", Date: "2025-12-31"})
	require.NoError(t, err)

	h, err = svc.Update(ctx, h.ID, leave.UpdateHolidayRequest{Date: strPtr("2026-01-02")})
	require.NoError(t, err)
	assert.Equal(t, 2026, h.Year)
	assert.Equal(t, "Founders Day", h.Name)

	explicit := 2025
	h, err = svc.Update(ctx, h.ID, leave.UpdateHolidayRequest{Date: strPtr("2026-01-03"), Year: &explicit})
	require.NoError(t, err)
	assert.Equal(t, 2025, h.Year)

	_, err = svc.Update(ctx, h.ID, leave.UpdateHolidayRequest{EndDate: strPtr("2026-01-01")})
	assert.ErrorIs(t, err, leave.ErrValidation)

	_, err = svc.Update(ctx, "missing", leave.UpdateHolidayRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestHolidayService_ListsAndRanges(t *testing.T) {
	svc := newHolidayService(t)
	ctx := context.Background()

	for _, req := range []leave.CreateHolidayRequest{
		{Name: "Labour Day", Date: "2025-05-01"},
		{Name: "New Year", Date: "2025-01-01", IsRecurring: true},
		{Name: "Eid", Date: "2025-03-30", EndDate: strPtr("2025-04-01"), Type: strPtr("RELIGIOUS")},
		{Name: "New Year", Date: "2026-01-01", IsRecurring: true},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	year := 2025
	holidays, err := svc.List(ctx, leave.HolidayFilter{Year: &year})
	require.NoError(t, err)
	require.Len(t, holidays, 3)
	assert.Equal(t, "New Year", holidays[0].Name, "ordered by date")
	assert.Equal(t, "Labour Day", holidays[2].Name)

	religious := leave.HolidayReligious
	holidays, err = svc.List(ctx, leave.HolidayFilter{Type: &religious})
	require.NoError(t, err)
	require.Len(t, holidays, 1)

	bogus := leave.HolidayType("FUN")
	_, err = svc.List(ctx, leave.HolidayFilter{Type: &bogus})
	assert.Error(t, err)

	// A range that starts inside a multi-day holiday still includes it
	holidays, err = svc.ListInRange(ctx, "2025-04-01", "2025-05-31")
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Eid", holidays[0].Name)

	_, err = svc.ListInRange(ctx, "2025-05-31", "2025-04-01")
	assert.ErrorIs(t, err, leave.ErrValidation)

	now := time.Date(2025, 4, 2, 15, 30, 0, 0, time.UTC)
	holidays, err = svc.ListUpcoming(ctx, 0, now)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Labour Day", holidays[0].Name)

	holidays, err = svc.ListUpcoming(ctx, 1, now)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}

func TestHolidayService_CloneYear(t *testing.T) {
	svc := newHolidayService(t)
	ctx := context.Background()

	for _, req := range []leave.CreateHolidayRequest{
		{Name: "New Year", Date: "2024-01-01", IsRecurring: true},
		{Name: "Leap Day", Date: "2024-02-29", IsRecurring: true},
		{Name: "Year End", Date: "2024-12-31", EndDate: strPtr("2025-01-01"), IsRecurring: true},
		{Name: "Election Day", Date: "2024-02-14"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	cloned, err := svc.CloneYear(ctx, 2024, 2025)
	require.NoError(t, err)
	require.Len(t, cloned, 3)

	byName := make(map[string]leave.Holiday)
	for _, h := range cloned {
		assert.Equal(t, 2025, h.Year)
		assert.True(t, h.IsRecurring)
		byName[h.Name] = h
	}
	assert.NotContains(t, byName, "Election Day")
	assert.Equal(t, "2025-01-01", byName["New Year"].Date.Format(leave.DateLayout))
	assert.Equal(t, "2025-03-01", byName["Leap Day"].Date.Format(leave.DateLayout))
	require.NotNil(t, byName["Year End"].EndDate)
	assert.Equal(t, "2026-01-01", byName["Year End"].EndDate.Format(leave.DateLayout))

	// Running it again creates nothing
	cloned, err = svc.CloneYear(ctx, 2024, 2025)
	require.NoError(t, err)
	assert.Empty(t, cloned)

	_, err = svc.CloneYear(ctx, 2025, 2025)
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestHolidayService_Delete(t *testing.T) {
	svc := newHolidayService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, leave.CreateHolidayRequest{Name: "Labour Day", Date: "2025-05-01"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, h.ID))
	_, err = svc.Get(ctx, h.ID)
	assert.ErrorIs(t, err, leave.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, h.ID), leave.ErrNotFound)
}
