package leave

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var halfDay = decimal.RequireFromString("0.5")

// CountDays returns the days a request consumes: 0.5 for a half day,
// otherwise the inclusive calendar-day span. Weekends and holidays count.
func CountDays(start, end time.Time, isHalfDay bool) decimal.Decimal {
	if isHalfDay {
		return halfDay
	}
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	days := int64(math.Ceil(diff.Hours()/24)) + 1
	return decimal.NewFromInt(days)
}

// NewBalance returns an untouched ledger row with total days all remaining.
func NewBalance(employeeID, leaveTypeID string, year int, total decimal.Decimal) LeaveBalance {
	return LeaveBalance{
		EmployeeID:      employeeID,
		LeaveTypeID:     leaveTypeID,
		Year:            year,
		TotalDays:       total,
		UsedDays:        decimal.Zero,
		PendingDays:     decimal.Zero,
		RemainingDays:   total,
		CarriedOverDays: decimal.Zero,
		AdjustmentDays:  decimal.Zero,
	}
}

// The ledger operations below never clamp. A caller that releases more than
// it reserved drives the row negative, and Check reports it.

// Reserve moves days from remaining into pending.
func (b *LeaveBalance) Reserve(days decimal.Decimal) {
	b.PendingDays = b.PendingDays.Add(days)
	b.RemainingDays = b.RemainingDays.Sub(days)
}

// Commit moves days from pending into used.
func (b *LeaveBalance) Commit(days decimal.Decimal) {
	b.UsedDays = b.UsedDays.Add(days)
	b.PendingDays = b.PendingDays.Sub(days)
}

// Release returns reserved days from pending to remaining.
func (b *LeaveBalance) Release(days decimal.Decimal) {
	b.PendingDays = b.PendingDays.Sub(days)
	b.RemainingDays = b.RemainingDays.Add(days)
}

// ReleaseUsed returns committed days from used to remaining.
func (b *LeaveBalance) ReleaseUsed(days decimal.Decimal) {
	b.UsedDays = b.UsedDays.Sub(days)
	b.RemainingDays = b.RemainingDays.Add(days)
}

// Adjust applies an administrative correction to the allotment.
func (b *LeaveBalance) Adjust(delta decimal.Decimal) {
	b.TotalDays = b.TotalDays.Add(delta)
	b.RemainingDays = b.RemainingDays.Add(delta)
	b.AdjustmentDays = b.AdjustmentDays.Add(delta)
}

// Apply runs the ledger operation named by op.
func (b *LeaveBalance) Apply(op LedgerOp, days decimal.Decimal) error {
	switch op {
	case LedgerNone:
	case LedgerReserve:
		b.Reserve(days)
	case LedgerCommit:
		b.Commit(days)
	case LedgerRelease:
		b.Release(days)
	case LedgerReleaseUsed:
		b.ReleaseUsed(days)
	default:
		return fmt.Errorf("unknown ledger operation %q", op)
	}
	return nil
}

// Check reports the first violated ledger invariant, or nil.
func (b LeaveBalance) Check() error {
	expected := b.TotalDays.Sub(b.UsedDays).Sub(b.PendingDays)
	if !b.RemainingDays.Equal(expected) {
		return fmt.Errorf("balance %s: remaining %s != total %s - used %s - pending %s",
			b.ID, b.RemainingDays, b.TotalDays, b.UsedDays, b.PendingDays)
	}
	for name, v := range map[string]decimal.Decimal{
		"used":      b.UsedDays,
		"pending":   b.PendingDays,
		"remaining": b.RemainingDays,
	} {
		if v.IsNegative() {
			return fmt.Errorf("balance %s: %s days is negative (%s)", b.ID, name, v)
		}
	}
	return nil
}
