package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditOnly struct {
	leave.BalanceService
	violations []leave.LeaveBalance
	err        error
}

func (a auditOnly) Audit(context.Context) ([]leave.LeaveBalance, error) {
	return a.violations, a.err
}

type gauge struct{ last int }

func (g *gauge) SetInvariantViolations(n int) { g.last = n }

func TestLedgerJobs_AuditSetsGauge(t *testing.T) {
	broken := leave.NewBalance("emp-1", "type-1", 2025, decimal.NewFromInt(5))
	broken.PendingDays = decimal.NewFromInt(-1)

	g := &gauge{last: -1}
	jobs := NewLedgerJobs(auditOnly{violations: []leave.LeaveBalance{broken}}, g)

	require.NoError(t, jobs.AuditLedger(context.Background()))
	assert.Equal(t, 1, g.last)

	jobs = NewLedgerJobs(auditOnly{err: errors.New("db down")}, g)
	assert.Error(t, jobs.AuditLedger(context.Background()))
	assert.Equal(t, 1, g.last)
}

func TestScheduler_RunOnceAndStartStop(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32

	require.NoError(t, s.AddJob(Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}))
	require.NoError(t, s.AddJob(Job{
		Name:     "fail",
		Interval: time.Hour,
		Fn:       func(ctx context.Context) error { return errors.New("boom") },
	}))
	assert.Error(t, s.AddJob(Job{Name: "bad", Interval: 0}))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail: boom")
	assert.Equal(t, int32(1), runs.Load())

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Error(t, s.AddJob(Job{Name: "late", Interval: time.Second, Fn: func(context.Context) error { return nil }}))
}
