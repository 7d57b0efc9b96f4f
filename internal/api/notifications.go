package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/menjava/internal/model"
)

// NotificationsService covers the signed-in user's notifications.
type NotificationsService struct {
	c *Client
}

// List returns all notifications, newest as the backend orders them.
func (s *NotificationsService) List(ctx context.Context) ([]model.Notification, error) {
	body, err := s.c.get(ctx, "/notifications", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	list, err := model.NormalizeNotifications(body)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return list, nil
}

// MarkRead marks one notification read.
func (s *NotificationsService) MarkRead(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id) + "/read"
	if _, err := s.c.do(ctx, request{method: http.MethodPost, path: path}); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}
