package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
)

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	defer r.s.lock(ctx)()

	if n.ID == "" {
		id, err := newID("notification")
		if err != nil {
			return notification.Notification{}, err
		}
		n.ID = id
	}
	r.s.notifications[n.ID] = n
	return n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, filter notification.ListFilter) ([]notification.Notification, int64, error) {
	defer r.s.lock(ctx)()
	filter.Normalize()

	matched := make([]notification.Notification, 0)
	for _, n := range r.s.notifications {
		if n.RecipientID != recipientID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	defer r.s.lock(ctx)()

	var count int64
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, recipientID string, ids []string, readAt time.Time) (int64, error) {
	defer r.s.lock(ctx)()

	var updated int64
	for _, id := range ids {
		n, ok := r.s.notifications[id]
		if !ok || n.RecipientID != recipientID || n.IsRead {
			continue
		}
		r.s.notifications[id] = markRead(n, readAt)
		updated++
	}
	return updated, nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error) {
	defer r.s.lock(ctx)()

	var updated int64
	for id, n := range r.s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		r.s.notifications[id] = markRead(n, readAt)
		updated++
	}
	return updated, nil
}

func (r *notificationRepository) Delete(ctx context.Context, recipientID, id string) error {
	defer r.s.lock(ctx)()

	n, ok := r.s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return notification.ErrNotificationNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func markRead(n notification.Notification, readAt time.Time) notification.Notification {
	n.IsRead = true
	n.ReadAt = &readAt
	return n
}
