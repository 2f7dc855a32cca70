package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	lb.id, lb.employee_id, lb.leave_type_id, lb.year,
	lb.total_days, lb.used_days, lb.pending_days, lb.remaining_days,
	lb.carried_over_days, lb.adjustment_days, lb.version,
	lb.created_at, lb.updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.PendingDays, &b.RemainingDays,
		&b.CarriedOverDays, &b.AdjustmentDays, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Create implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	if b.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveBalance{}, fmt.Errorf("failed to generate leave balance id: %w", err)
		}
		b.ID = id.String()
	}

	query := `
		INSERT INTO leave_balances (
			id, employee_id, leave_type_id, year,
			total_days, used_days, pending_days, remaining_days,
			carried_over_days, adjustment_days, version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, NOW(), NOW())
		RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		b.ID, b.EmployeeID, b.LeaveTypeID, b.Year,
		b.TotalDays, b.UsedDays, b.PendingDays, b.RemainingDays,
		b.CarriedOverDays, b.AdjustmentDays,
	).Scan(&b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.LeaveBalance{}, leave.ErrBalanceExists(b.EmployeeID, b.LeaveTypeID, b.Year)
		}
		if isForeignKeyViolation(err) {
			return leave.LeaveBalance{}, leave.ErrLeaveTypeInvalid(b.LeaveTypeID)
		}
		return leave.LeaveBalance{}, mapError(err)
	}

	return b, nil
}

func (r *leaveBalanceRepositoryImpl) getByID(ctx context.Context, id string, lock bool) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound(id)
	}

	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances lb WHERE lb.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound(id)
		}
		return leave.LeaveBalance{}, mapError(err)
	}
	return b, nil
}

// GetByID implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveBalance, error) {
	return r.getByID(ctx, id, true)
}

// GetByKeyForUpdate implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByKeyForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, bool, error) {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(leaveTypeID); err != nil {
		return leave.LeaveBalance{}, false, nil
	}

	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances lb
		WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
		FOR UPDATE
	`

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, false, nil
		}
		return leave.LeaveBalance{}, false, mapError(err)
	}
	return b, true, nil
}

// List implements leave.LeaveBalanceRepository. Rows come with their leave
// type attached.
func (r *leaveBalanceRepositoryImpl) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("lb.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.LeaveTypeID != nil {
		if _, err := uuid.Parse(*filter.LeaveTypeID); err != nil {
			return []leave.LeaveBalance{}, nil
		}
		conditions = append(conditions, fmt.Sprintf("lb.leave_type_id = $%d", argIdx))
		args = append(args, *filter.LeaveTypeID)
		argIdx++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("lb.year = $%d", argIdx))
		args = append(args, *filter.Year)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			lt.id, lt.code, lt.name, lt.is_paid, lt.allow_half_day, lt.is_active
		FROM leave_balances lb
		JOIN leave_types lt ON lt.id = lb.leave_type_id
		%s
		ORDER BY lb.year DESC, lt.name, lb.id
	`, leaveBalanceColumns, whereClause)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		var b leave.LeaveBalance
		var lt leave.LeaveType
		err := rows.Scan(
			&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
			&b.TotalDays, &b.UsedDays, &b.PendingDays, &b.RemainingDays,
			&b.CarriedOverDays, &b.AdjustmentDays, &b.Version,
			&b.CreatedAt, &b.UpdatedAt,
			&lt.ID, &lt.Code, &lt.Name, &lt.IsPaid, &lt.AllowHalfDay, &lt.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		b.LeaveType = &lt
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// UpdateAmounts implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) UpdateAmounts(ctx context.Context, b leave.LeaveBalance) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances SET
			total_days = $3,
			used_days = $4,
			pending_days = $5,
			remaining_days = $6,
			carried_over_days = $7,
			adjustment_days = $8,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var version int64
	err := q.QueryRow(ctx, query,
		b.ID, b.Version,
		b.TotalDays, b.UsedDays, b.PendingDays, b.RemainingDays,
		b.CarriedOverDays, b.AdjustmentDays,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, leave.ErrConcurrentModification("leave_balance", b.ID)
		}
		return 0, mapError(err)
	}
	return version, nil
}

// Delete implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.ErrBalanceNotFound(id)
	}

	tag, err := q.Exec(ctx, `DELETE FROM leave_balances WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.ErrBalanceInUse(id)
		}
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound(id)
	}
	return nil
}

// CountReservations implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) CountReservations(ctx context.Context, id string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE balance_id = $1`, id).Scan(&total)
	if err != nil {
		return 0, mapError(err)
	}
	return total, nil
}
