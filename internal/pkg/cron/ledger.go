package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

// ViolationGauge receives the number of rows failing the last audit.
type ViolationGauge interface {
	SetInvariantViolations(n int)
}

// LedgerJobs contains ledger maintenance jobs
type LedgerJobs struct {
	balanceService leave.BalanceService
	gauge          ViolationGauge
}

func NewLedgerJobs(balanceService leave.BalanceService, gauge ViolationGauge) *LedgerJobs {
	return &LedgerJobs{
		balanceService: balanceService,
		gauge:          gauge,
	}
}

// RegisterJobs registers the ledger audit on the given interval
func (j *LedgerJobs) RegisterJobs(scheduler *Scheduler, auditInterval time.Duration) error {
	return scheduler.AddJob(Job{
		Name:     "ledger_audit",
		Interval: auditInterval,
		Fn:       j.AuditLedger,
	})
}

// AuditLedger reports balance rows whose amounts no longer add up.
func (j *LedgerJobs) AuditLedger(ctx context.Context) error {
	violations, err := j.balanceService.Audit(ctx)
	if err != nil {
		return fmt.Errorf("failed to audit leave balances: %w", err)
	}

	for _, b := range violations {
		slog.Warn("Leave balance violates ledger invariant",
			"balance_id", b.ID,
			"employee_id", b.EmployeeID,
			"leave_type_id", b.LeaveTypeID,
			"year", b.Year,
			"total", b.TotalDays.String(),
			"used", b.UsedDays.String(),
			"pending", b.PendingDays.String(),
			"remaining", b.RemainingDays.String(),
		)
	}
	if j.gauge != nil {
		j.gauge.SetInvariantViolations(len(violations))
	}
	return nil
}
