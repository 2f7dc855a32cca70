package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type BalanceServiceImpl struct {
	tx leave.TxManager
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	retry RetryPolicy
}

func NewBalanceService(
	tx leave.TxManager,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	retry RetryPolicy,
) leave.BalanceService {
	return &BalanceServiceImpl{
		tx:                     tx,
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		retry:                  retry.withDefaults(),
	}
}

// Create implements leave.BalanceService.
func (s *BalanceServiceImpl) Create(ctx context.Context, req leave.CreateLeaveBalanceRequest) (leave.LeaveBalance, error) {
	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			return leave.LeaveBalance{}, leave.ErrLeaveTypeInvalid(req.LeaveTypeID)
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave type by ID: %w", err)
	}

	created, err := s.LeaveBalanceRepository.Create(ctx, leave.NewBalance(req.EmployeeID, leaveType.ID, req.Year, req.TotalDays))
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	created.LeaveType = &leaveType
	return created, nil
}

// Get implements leave.BalanceService.
func (s *BalanceServiceImpl) Get(ctx context.Context, id string) (leave.LeaveBalance, error) {
	balance, err := s.LeaveBalanceRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	if leaveType, err := s.LeaveTypeRepository.GetByID(ctx, balance.LeaveTypeID); err == nil {
		balance.LeaveType = &leaveType
	}
	return balance, nil
}

// List implements leave.BalanceService.
func (s *BalanceServiceImpl) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, error) {
	return s.LeaveBalanceRepository.List(ctx, filter)
}

// ListByEmployee implements leave.BalanceService.
func (s *BalanceServiceImpl) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]leave.LeaveBalance, error) {
	return s.LeaveBalanceRepository.List(ctx, leave.BalanceFilter{EmployeeID: &employeeID, Year: year})
}

// Initialize implements leave.BalanceService. It creates one row per active
// leave type at the type's default days and leaves existing rows alone.
func (s *BalanceServiceImpl) Initialize(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	var created []leave.LeaveBalance
	err := s.retry.run(ctx, "initialize_balances", nil, func() error {
		created = make([]leave.LeaveBalance, 0)
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			leaveTypes, err := s.LeaveTypeRepository.List(ctx, false)
			if err != nil {
				return fmt.Errorf("failed to get active leave types: %w", err)
			}

			for _, leaveType := range leaveTypes {
				_, exists, err := s.LeaveBalanceRepository.GetByKeyForUpdate(ctx, employeeID, leaveType.ID, year)
				if err != nil {
					return fmt.Errorf("failed to get leave balance: %w", err)
				}
				if exists {
					slog.Debug("Balance already exists", "employee_id", employeeID, "leave_type", leaveType.Code, "year", year)
					continue
				}

				balance, err := s.LeaveBalanceRepository.Create(ctx, leave.NewBalance(employeeID, leaveType.ID, year, leaveType.DefaultDays))
				if err != nil {
					return err
				}
				lt := leaveType
				balance.LeaveType = &lt
				created = append(created, balance)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Leave balances initialized", "employee_id", employeeID, "year", year, "created", len(created))
	return created, nil
}

// Adjust implements leave.BalanceService.
func (s *BalanceServiceImpl) Adjust(ctx context.Context, id string, delta decimal.Decimal, reason string) (leave.LeaveBalance, error) {
	var adjusted leave.LeaveBalance
	err := s.retry.run(ctx, "adjust_balance", nil, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			balance, err := s.LeaveBalanceRepository.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if balance.RemainingDays.Add(delta).IsNegative() {
				return leave.ErrNegativeAdjustment(id, balance.RemainingDays.String(), delta.String())
			}

			balance.Adjust(delta)
			version, err := s.LeaveBalanceRepository.UpdateAmounts(ctx, balance)
			if err != nil {
				return err
			}
			balance.Version = version
			adjusted = balance
			return nil
		})
	})
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	slog.Info("Leave balance adjusted",
		"balance_id", id,
		"delta", delta.String(),
		"reason", reason,
		"total_days", adjusted.TotalDays.String(),
		"remaining_days", adjusted.RemainingDays.String(),
	)
	return adjusted, nil
}

// CarryOver implements leave.BalanceService. For every source row without
// a destination row, the destination gets the type's default days plus the
// source's remaining days. A negative remainder carries nothing.
func (s *BalanceServiceImpl) CarryOver(ctx context.Context, employeeID string, fromYear, toYear int) ([]leave.LeaveBalance, error) {
	if toYear <= fromYear {
		return nil, leave.ErrInvalidCarryOverYears(fromYear, toYear)
	}

	var created []leave.LeaveBalance
	err := s.retry.run(ctx, "carry_over_balances", nil, func() error {
		created = make([]leave.LeaveBalance, 0)
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			sources, err := s.LeaveBalanceRepository.List(ctx, leave.BalanceFilter{EmployeeID: &employeeID, Year: &fromYear})
			if err != nil {
				return fmt.Errorf("failed to list source balances: %w", err)
			}

			for _, source := range sources {
				_, exists, err := s.LeaveBalanceRepository.GetByKeyForUpdate(ctx, employeeID, source.LeaveTypeID, toYear)
				if err != nil {
					return fmt.Errorf("failed to get leave balance: %w", err)
				}
				if exists {
					continue
				}

				leaveType, err := s.LeaveTypeRepository.GetByID(ctx, source.LeaveTypeID)
				if err != nil {
					return fmt.Errorf("failed to get leave type by ID: %w", err)
				}

				carried := decimal.Max(source.RemainingDays, decimal.Zero)
				balance := leave.NewBalance(employeeID, leaveType.ID, toYear, leaveType.DefaultDays.Add(carried))
				balance.CarriedOverDays = carried

				balance, err = s.LeaveBalanceRepository.Create(ctx, balance)
				if err != nil {
					return err
				}
				balance.LeaveType = &leaveType
				created = append(created, balance)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Leave balances carried over",
		"employee_id", employeeID,
		"from_year", fromYear,
		"to_year", toYear,
		"created", len(created),
	)
	return created, nil
}

// Delete implements leave.BalanceService.
func (s *BalanceServiceImpl) Delete(ctx context.Context, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.LeaveBalanceRepository.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		reservations, err := s.LeaveBalanceRepository.CountReservations(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count reservations: %w", err)
		}
		if reservations > 0 {
			return leave.ErrBalanceInUse(id)
		}
		return s.LeaveBalanceRepository.Delete(ctx, id)
	})
}

// Audit implements leave.BalanceService. It returns every row whose amounts
// break the ledger invariant.
func (s *BalanceServiceImpl) Audit(ctx context.Context) ([]leave.LeaveBalance, error) {
	balances, err := s.LeaveBalanceRepository.List(ctx, leave.BalanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	violations := make([]leave.LeaveBalance, 0)
	for _, b := range balances {
		if err := b.Check(); err != nil {
			slog.Error("Leave balance invariant violated",
				"balance_id", b.ID,
				"employee_id", b.EmployeeID,
				"year", b.Year,
				"error", err,
			)
			violations = append(violations, b)
		}
	}
	return violations, nil
}
