package account

import (
	"context"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

// NotificationsAPI is the subset of *api.Endpoints used for the inbox.
type NotificationsAPI interface {
	ListNotifications(ctx context.Context) ([]api.Notification, error)
	MarkNotificationRead(ctx context.Context, id api.ID) error
}

// Inbox lists notifications and marks them read.
type Inbox struct {
	api    NotificationsAPI
	logger *logging.Logger
}

// NewInbox returns an Inbox backed by n.
func NewInbox(n NotificationsAPI, logger *logging.Logger) *Inbox {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Inbox{api: n, logger: logger.WithComponent("notifications")}
}

// List returns the notifications, only the unread ones when unreadOnly is set.
func (i *Inbox) List(ctx context.Context, unreadOnly bool) ([]api.Notification, error) {
	all, err := i.api.ListNotifications(ctx)
	if err != nil {
		i.logger.Warn("failed to fetch notifications", "error", err)
		return nil, err
	}
	if !unreadOnly {
		return all, nil
	}
	unread := make([]api.Notification, 0, len(all))
	for _, n := range all {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// MarkRead marks one notification read.
func (i *Inbox) MarkRead(ctx context.Context, id api.ID) error {
	if err := i.api.MarkNotificationRead(ctx, id); err != nil {
		i.logger.Warn("failed to mark notification read", "notification_id", string(id), "error", err)
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification read and returns how many were
// marked. It keeps going past individual failures and returns them joined.
func (i *Inbox) MarkAllRead(ctx context.Context) (int, error) {
	unread, err := i.List(ctx, true)
	if err != nil {
		return 0, err
	}
	var (
		marked int
		errs   []error
	)
	for _, n := range unread {
		if err := i.MarkRead(ctx, n.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		marked++
	}
	i.logger.Info("notifications marked read", "count", marked, "failed", len(errs))
	return marked, errors.Join(errs...)
}
