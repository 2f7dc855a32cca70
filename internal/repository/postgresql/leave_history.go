package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
)

type leaveHistoryRepositoryImpl struct {
	db *database.DB
}

func NewLeaveHistoryRepository(db *database.DB) leave.LeaveHistoryRepository {
	return &leaveHistoryRepositoryImpl{db: db}
}

// Append implements leave.LeaveHistoryRepository.
func (r *leaveHistoryRepositoryImpl) Append(ctx context.Context, entry leave.History) (leave.History, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.History{}, fmt.Errorf("failed to generate history id: %w", err)
		}
		entry.ID = id.String()
	}

	query := `
		INSERT INTO leave_request_history (
			id, request_id, action, from_status, to_status, performed_by, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		entry.ID, entry.RequestID, entry.Action, entry.FromStatus, entry.ToStatus,
		entry.PerformedBy, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.History{}, leave.ErrRequestNotFound(entry.RequestID)
		}
		return leave.History{}, mapError(err)
	}
	return entry, nil
}

// ListByRequest implements leave.LeaveHistoryRepository. Newest first.
func (r *leaveHistoryRepositoryImpl) ListByRequest(ctx context.Context, requestID string) ([]leave.History, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, request_id, action, from_status, to_status, performed_by, notes, created_at
		FROM leave_request_history
		WHERE request_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, requestID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := make([]leave.History, 0)
	for rows.Next() {
		var h leave.History
		if err := rows.Scan(
			&h.ID, &h.RequestID, &h.Action, &h.FromStatus, &h.ToStatus,
			&h.PerformedBy, &h.Notes, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
