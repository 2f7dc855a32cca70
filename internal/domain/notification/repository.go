package notification

import (
	"context"
	"time"
)

// Repository stores inbox entries. Every read and write is scoped to one
// recipient.
type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, filter ListFilter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, recipientID string, ids []string, readAt time.Time) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error)
	Delete(ctx context.Context, recipientID, id string) error
}
