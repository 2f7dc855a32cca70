package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmounts(t *testing.T, b LeaveBalance, total, used, pending, remaining string) {
	t.Helper()
	assert.True(t, b.TotalDays.Equal(d(total)), "total: got %s want %s", b.TotalDays, total)
	assert.True(t, b.UsedDays.Equal(d(used)), "used: got %s want %s", b.UsedDays, used)
	assert.True(t, b.PendingDays.Equal(d(pending)), "pending: got %s want %s", b.PendingDays, pending)
	assert.True(t, b.RemainingDays.Equal(d(remaining)), "remaining: got %s want %s", b.RemainingDays, remaining)
}

func TestCountDays(t *testing.T) {
	day := func(s string) time.Time {
		v, err := time.Parse(DateLayout, s)
		require.NoError(t, err)
		return v
	}

	assert.True(t, CountDays(day("2025-03-10"), day("2025-03-14"), false).Equal(d("5")))
	assert.True(t, CountDays(day("2025-03-10"), day("2025-03-10"), false).Equal(d("1")))
	assert.True(t, CountDays(day("2025-03-10"), day("2025-03-14"), true).Equal(d("0.5")))
	// weekends count
	assert.True(t, CountDays(day("2025-03-07"), day("2025-03-10"), false).Equal(d("4")))
	// span over a year boundary
	assert.True(t, CountDays(day("2025-12-30"), day("2026-01-02"), false).Equal(d("4")))
}

func TestLedger_Lifecycle(t *testing.T) {
	b := NewBalance("emp", "annual", 2025, d("21"))
	assertAmounts(t, b, "21", "0", "0", "21")

	b.Reserve(d("5"))
	assertAmounts(t, b, "21", "0", "5", "16")
	require.NoError(t, b.Check())

	b.Commit(d("5"))
	assertAmounts(t, b, "21", "5", "0", "16")
	require.NoError(t, b.Check())

	b.ReleaseUsed(d("5"))
	assertAmounts(t, b, "21", "0", "0", "21")
	require.NoError(t, b.Check())
}

func TestLedger_ReserveReleaseRoundTrip(t *testing.T) {
	b := NewBalance("emp", "annual", 2025, d("21"))
	for i := 0; i < 1000; i++ {
		b.Reserve(d("0.5"))
		b.Release(d("0.5"))
	}
	assertAmounts(t, b, "21", "0", "0", "21")
	require.NoError(t, b.Check())
}

func TestLedger_DoesNotClamp(t *testing.T) {
	b := NewBalance("emp", "annual", 2025, d("21"))
	b.Release(d("2"))
	assertAmounts(t, b, "21", "0", "-2", "23")
	assert.Error(t, b.Check())
}

func TestLedger_Adjust(t *testing.T) {
	b := NewBalance("emp", "annual", 2025, d("21"))
	b.Reserve(d("3"))
	b.Adjust(d("2.5"))
	assertAmounts(t, b, "23.5", "0", "3", "20.5")
	assert.True(t, b.AdjustmentDays.Equal(d("2.5")))
	require.NoError(t, b.Check())
}

func TestLedger_Apply(t *testing.T) {
	b := NewBalance("emp", "annual", 2025, d("10"))
	require.NoError(t, b.Apply(LedgerReserve, d("4")))
	require.NoError(t, b.Apply(LedgerNone, d("4")))
	require.NoError(t, b.Apply(LedgerRelease, d("4")))
	assertAmounts(t, b, "10", "0", "0", "10")
	assert.Error(t, b.Apply(LedgerOp("bogus"), d("1")))
}

func TestLedger_CheckDetectsBrokenInvariant(t *testing.T) {
	b := NewBalance("emp", "annual", 2025, d("10"))
	b.RemainingDays = d("9")
	assert.Error(t, b.Check())
}
