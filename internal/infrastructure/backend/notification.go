package backend

import (
	"context"
	"net/http"

	"github.com/retail/storefront/internal/domain/notification"
)

// NotificationClient wraps /api/notifications
type NotificationClient struct{ c *Client }

// NewNotificationClient creates a notification client
func NewNotificationClient(c *Client) *NotificationClient { return &NotificationClient{c: c} }

// Send dispatches a notification
func (n *NotificationClient) Send(ctx context.Context, note notification.Notification) error {
	return n.c.do(ctx, request{resource: "notifications", method: http.MethodPost, path: pathf("notifications"), body: note}, nil)
}

// ListByUser returns the notifications addressed to a user
func (n *NotificationClient) ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error) {
	var out []notification.Notification
	if err := n.c.do(ctx, request{resource: "notifications", method: http.MethodGet, path: pathf("notifications", "user", userID)}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}
