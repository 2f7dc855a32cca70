package notification

import (
	"context"
)

// Service defines the inbox operations available to a recipient
type Service interface {
	List(ctx context.Context, recipientID string, filter ListFilter) ([]Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, recipientID string, req MarkAsReadRequest) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, recipientID, id string) error
}
