package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

const leaveTypeColumns = `
	id, code, name, description,
	is_paid, requires_approval, requires_attachment, allow_half_day, is_active,
	max_days_per_request, min_days_notice, default_days,
	created_at, updated_at`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(
		&lt.ID, &lt.Code, &lt.Name, &lt.Description,
		&lt.IsPaid, &lt.RequiresApproval, &lt.RequiresAttachment, &lt.AllowHalfDay, &lt.IsActive,
		&lt.MaxDaysPerRequest, &lt.MinDaysNotice, &lt.DefaultDays,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	return lt, err
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	if lt.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveType{}, fmt.Errorf("failed to generate leave type id: %w", err)
		}
		lt.ID = id.String()
	}

	query := `
		INSERT INTO leave_types (
			id, code, name, description,
			is_paid, requires_approval, requires_attachment, allow_half_day, is_active,
			max_days_per_request, min_days_notice, default_days,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		lt.ID, lt.Code, lt.Name, lt.Description,
		lt.IsPaid, lt.RequiresApproval, lt.RequiresAttachment, lt.AllowHalfDay, lt.IsActive,
		lt.MaxDaysPerRequest, lt.MinDaysNotice, lt.DefaultDays,
	).Scan(&lt.CreatedAt, &lt.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists(lt.Code)
		}
		return leave.LeaveType{}, mapError(err)
	}

	return lt, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound(id)
	}

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE id = $1`

	lt, err := scanLeaveType(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound(id)
		}
		return leave.LeaveType{}, mapError(err)
	}
	return lt, nil
}

// GetByCode implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE code = $1`

	lt, err := scanLeaveType(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeNotFound(code)
		}
		return leave.LeaveType{}, mapError(err)
	}
	return lt, nil
}

// List implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) List(ctx context.Context, includeInactive bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name, id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	types := make([]leave.LeaveType, 0)
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

// Update implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Update(ctx context.Context, lt leave.LeaveType) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_types SET
			code = $2, name = $3, description = $4,
			is_paid = $5, requires_approval = $6, requires_attachment = $7,
			allow_half_day = $8, is_active = $9,
			max_days_per_request = $10, min_days_notice = $11, default_days = $12,
			updated_at = $13
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		lt.ID, lt.Code, lt.Name, lt.Description,
		lt.IsPaid, lt.RequiresApproval, lt.RequiresAttachment,
		lt.AllowHalfDay, lt.IsActive,
		lt.MaxDaysPerRequest, lt.MinDaysNotice, lt.DefaultDays,
		lt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.ErrLeaveTypeCodeExists(lt.Code)
		}
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveTypeNotFound(lt.ID)
	}
	return nil
}

// Delete implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.ErrLeaveTypeInUse(id)
		}
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveTypeNotFound(id)
	}
	return nil
}

// CountReferences implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) CountReferences(ctx context.Context, id string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM leave_requests WHERE leave_type_id = $1) +
			(SELECT COUNT(*) FROM leave_balances WHERE leave_type_id = $1)
	`

	var total int64
	if err := q.QueryRow(ctx, query, id).Scan(&total); err != nil {
		return 0, mapError(err)
	}
	return total, nil
}
