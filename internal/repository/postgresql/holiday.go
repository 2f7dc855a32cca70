package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `
	id, name, local_name, holiday_date, end_date, type, is_recurring, year,
	created_at, updated_at`

func scanHoliday(row pgx.Row) (leave.Holiday, error) {
	var h leave.Holiday
	err := row.Scan(
		&h.ID, &h.Name, &h.LocalName, &h.Date, &h.EndDate, &h.Type, &h.IsRecurring, &h.Year,
		&h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

// Create implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h leave.Holiday) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	if h.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.Holiday{}, fmt.Errorf("failed to generate holiday id: %w", err)
		}
		h.ID = id.String()
	}

	query := `
		INSERT INTO leave_holidays (
			id, name, local_name, holiday_date, end_date, type, is_recurring, year,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		h.ID, h.Name, h.LocalName, h.Date, h.EndDate, h.Type, h.IsRecurring, h.Year,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return leave.Holiday{}, mapError(err)
	}
	return h, nil
}

// GetByID implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.Holiday{}, leave.ErrHolidayNotFound(id)
	}

	query := `SELECT ` + holidayColumns + ` FROM leave_holidays WHERE id = $1`

	h, err := scanHoliday(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Holiday{}, leave.ErrHolidayNotFound(id)
		}
		return leave.Holiday{}, mapError(err)
	}
	return h, nil
}

// List implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) List(ctx context.Context, filter leave.HolidayFilter) ([]leave.Holiday, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, string(*filter.Type))
		argIdx++
	}

	query := `SELECT ` + holidayColumns + ` FROM leave_holidays`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY holiday_date, id`

	return r.query(ctx, query, args...)
}

// ListInRange implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) ListInRange(ctx context.Context, from, to time.Time) ([]leave.Holiday, error) {
	query := `
		SELECT ` + holidayColumns + `
		FROM leave_holidays
		WHERE holiday_date <= $2 AND COALESCE(end_date, holiday_date) >= $1
		ORDER BY holiday_date, id
	`
	return r.query(ctx, query, from, to)
}

// ListUpcoming implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]leave.Holiday, error) {
	query := `
		SELECT ` + holidayColumns + `
		FROM leave_holidays
		WHERE holiday_date >= $1
		ORDER BY holiday_date, id
		LIMIT $2
	`
	return r.query(ctx, query, from, limit)
}

// Update implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) Update(ctx context.Context, h leave.Holiday) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_holidays SET
			name = $2, local_name = $3, holiday_date = $4, end_date = $5,
			type = $6, is_recurring = $7, year = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		h.ID, h.Name, h.LocalName, h.Date, h.EndDate,
		h.Type, h.IsRecurring, h.Year, h.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrHolidayNotFound(h.ID)
	}
	return nil
}

// Delete implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := uuid.Parse(id); err != nil {
		return leave.ErrHolidayNotFound(id)
	}

	tag, err := q.Exec(ctx, `DELETE FROM leave_holidays WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrHolidayNotFound(id)
	}
	return nil
}

func (r *holidayRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	holidays := make([]leave.Holiday, 0)
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holidays, nil
}
