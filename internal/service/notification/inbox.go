package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	notif "github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/google/uuid"
)

type InboxServiceImpl struct {
	repo notif.Repository
	now  func() time.Time
}

func NewInboxService(repo notif.Repository, now func() time.Time) notif.Service {
	if now == nil {
		now = time.Now
	}
	return &InboxServiceImpl{repo: repo, now: now}
}

// List implements notification.Service.
func (s *InboxServiceImpl) List(ctx context.Context, recipientID string, filter notif.ListFilter) ([]notif.Notification, int64, error) {
	filter.Normalize()
	return s.repo.ListByRecipient(ctx, recipientID, filter)
}

// UnreadCount implements notification.Service.
func (s *InboxServiceImpl) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

// MarkAsRead implements notification.Service.
func (s *InboxServiceImpl) MarkAsRead(ctx context.Context, recipientID string, req notif.MarkAsReadRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.repo.MarkAsRead(ctx, recipientID, req.NotificationIDs, s.now())
}

// MarkAllAsRead implements notification.Service.
func (s *InboxServiceImpl) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID, s.now())
}

// Delete implements notification.Service.
func (s *InboxServiceImpl) Delete(ctx context.Context, recipientID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notif.ErrNotificationNotFound
	}
	return s.repo.Delete(ctx, recipientID, id)
}

// InboxSink stores an inbox entry for the request owner whenever someone
// else moves their request.
type InboxSink struct {
	repo notif.Repository
}

func NewInboxSink(repo notif.Repository) *InboxSink {
	return &InboxSink{repo: repo}
}

func (s *InboxSink) Name() string { return "inbox" }

func (s *InboxSink) Deliver(ctx context.Context, event leave.TransitionEvent) error {
	n, ok := InboxEntry(event)
	if !ok {
		return nil
	}
	if _, err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store inbox notification: %w", err)
	}
	return nil
}

// InboxEntry builds the owner's inbox entry for event. It reports false for
// the owner's own actions and for steps nobody needs to hear about.
func InboxEntry(event leave.TransitionEvent) (notif.Notification, bool) {
	if event.PerformedBy == event.EmployeeID {
		return notif.Notification{}, false
	}

	var (
		notifType notif.NotificationType
		title     string
		message   string
	)
	switch event.ToStatus {
	case leave.StatusPendingHR:
		notifType = notif.TypeLeaveForwarded
		title = "Leave request approved by manager"
		message = "Your leave request was approved by your manager and is waiting for HR review."
	case leave.StatusApproved:
		notifType = notif.TypeLeaveApproved
		title = "Leave request approved"
		message = "Your leave request has been approved."
	case leave.StatusRejected:
		notifType = notif.TypeLeaveRejected
		title = "Leave request rejected"
		message = "Your leave request has been rejected."
	case leave.StatusCancelled:
		notifType = notif.TypeLeaveCancelled
		title = "Leave request cancelled"
		message = "Your leave request was cancelled by HR."
	default:
		return notif.Notification{}, false
	}

	sender := event.PerformedBy
	return notif.Notification{
		RecipientID: event.EmployeeID,
		SenderID:    &sender,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"request_id":  event.RequestID,
			"action":      string(event.Action),
			"from_status": string(event.FromStatus),
			"to_status":   string(event.ToStatus),
		},
		CreatedAt: event.OccurredAt,
	}, true
}
