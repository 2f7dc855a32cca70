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

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date, lr.total_days,
	lr.is_half_day, lr.half_day_period, lr.reason, lr.substitute_id, lr.contact_during,
	lr.status,
	lr.manager_status, lr.manager_reviewer_id, lr.manager_reviewed_at, lr.manager_notes,
	lr.hr_status, lr.hr_reviewer_id, lr.hr_reviewed_at, lr.hr_notes,
	lr.cancel_reason, lr.cancelled_by, lr.cancelled_at, lr.requires_hr_review,
	lr.balance_id, lr.submitted_at, lr.created_at, lr.updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate, &lr.TotalDays,
		&lr.IsHalfDay, &lr.HalfDayPeriod, &lr.Reason, &lr.SubstituteID, &lr.ContactDuring,
		&lr.Status,
		&lr.ManagerReview.Status, &lr.ManagerReview.ReviewerID, &lr.ManagerReview.ReviewedAt, &lr.ManagerReview.Notes,
		&lr.HRReview.Status, &lr.HRReview.ReviewerID, &lr.HRReview.ReviewedAt, &lr.HRReview.Notes,
		&lr.CancelReason, &lr.CancelledBy, &lr.CancelledAt, &lr.RequiresHRReview,
		&lr.BalanceID, &lr.SubmittedAt, &lr.CreatedAt, &lr.UpdatedAt,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, lr leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if lr.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to generate leave request id: %w", err)
		}
		lr.ID = id.String()
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date, total_days,
			is_half_day, half_day_period, reason, substitute_id, contact_during,
			status,
			manager_status, manager_reviewer_id, manager_reviewed_at, manager_notes,
			hr_status, hr_reviewer_id, hr_reviewed_at, hr_notes,
			cancel_reason, cancelled_by, cancelled_at, requires_hr_review,
			balance_id, submitted_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		)
	`

	_, err := q.Exec(ctx, query,
		lr.ID, lr.EmployeeID, lr.LeaveTypeID, lr.StartDate, lr.EndDate, lr.TotalDays,
		lr.IsHalfDay, lr.HalfDayPeriod, lr.Reason, lr.SubstituteID, lr.ContactDuring,
		lr.Status,
		lr.ManagerReview.Status, lr.ManagerReview.ReviewerID, lr.ManagerReview.ReviewedAt, lr.ManagerReview.Notes,
		lr.HRReview.Status, lr.HRReview.ReviewerID, lr.HRReview.ReviewedAt, lr.HRReview.Notes,
		lr.CancelReason, lr.CancelledBy, lr.CancelledAt, lr.RequiresHRReview,
		lr.BalanceID, lr.SubmittedAt, lr.CreatedAt, lr.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveTypeInvalid(lr.LeaveTypeID)
		}
		return leave.LeaveRequest{}, mapError(err)
	}

	return lr, nil
}

func (r *leaveRequestRepositoryImpl) getByID(ctx context.Context, id string, lock bool) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.LeaveRequest{}, leave.ErrRequestNotFound(id)
	}

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr WHERE lr.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrRequestNotFound(id)
		}
		return leave.LeaveRequest{}, mapError(err)
	}
	return lr, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.getByID(ctx, id, true)
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("lr.start_date >= make_date($%d, 1, 1) AND lr.start_date < make_date($%d + 1, 1, 1)", argIdx, argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leave_requests lr %s`, whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			lt.id, lt.code, lt.name, lt.is_paid, lt.allow_half_day, lt.is_active
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		%s
		ORDER BY lr.created_at DESC, lr.id DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		var lr leave.LeaveRequest
		var lt leave.LeaveType
		err := rows.Scan(
			&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate, &lr.TotalDays,
			&lr.IsHalfDay, &lr.HalfDayPeriod, &lr.Reason, &lr.SubstituteID, &lr.ContactDuring,
			&lr.Status,
			&lr.ManagerReview.Status, &lr.ManagerReview.ReviewerID, &lr.ManagerReview.ReviewedAt, &lr.ManagerReview.Notes,
			&lr.HRReview.Status, &lr.HRReview.ReviewerID, &lr.HRReview.ReviewedAt, &lr.HRReview.Notes,
			&lr.CancelReason, &lr.CancelledBy, &lr.CancelledAt, &lr.RequiresHRReview,
			&lr.BalanceID, &lr.SubmittedAt, &lr.CreatedAt, &lr.UpdatedAt,
			&lt.ID, &lt.Code, &lt.Name, &lt.IsPaid, &lt.AllowHalfDay, &lt.IsActive,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		lr.LeaveType = &lt
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update implements leave.LeaveRequestRepository. Every mutable column is
// written from lr.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, lr leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			leave_type_id = $2, start_date = $3, end_date = $4, total_days = $5,
			is_half_day = $6, half_day_period = $7, reason = $8, substitute_id = $9, contact_during = $10,
			status = $11,
			manager_status = $12, manager_reviewer_id = $13, manager_reviewed_at = $14, manager_notes = $15,
			hr_status = $16, hr_reviewer_id = $17, hr_reviewed_at = $18, hr_notes = $19,
			cancel_reason = $20, cancelled_by = $21, cancelled_at = $22, requires_hr_review = $23,
			balance_id = $24, submitted_at = $25, updated_at = $26
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		lr.ID, lr.LeaveTypeID, lr.StartDate, lr.EndDate, lr.TotalDays,
		lr.IsHalfDay, lr.HalfDayPeriod, lr.Reason, lr.SubstituteID, lr.ContactDuring,
		lr.Status,
		lr.ManagerReview.Status, lr.ManagerReview.ReviewerID, lr.ManagerReview.ReviewedAt, lr.ManagerReview.Notes,
		lr.HRReview.Status, lr.HRReview.ReviewerID, lr.HRReview.ReviewedAt, lr.HRReview.Notes,
		lr.CancelReason, lr.CancelledBy, lr.CancelledAt, lr.RequiresHRReview,
		lr.BalanceID, lr.SubmittedAt, lr.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.ErrLeaveTypeInvalid(lr.LeaveTypeID)
		}
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRequestNotFound(lr.ID)
	}
	return nil
}

// Delete implements leave.LeaveRequestRepository. History rows go with it.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.ErrRequestNotFound(id)
	}

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRequestNotFound(id)
	}
	return nil
}
