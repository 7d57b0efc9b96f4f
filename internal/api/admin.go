package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/menjava/internal/model"
)

// AdminService covers moderation. Requests carry the admin token.
type AdminService struct {
	c *Client
}

// Items lists every item.
func (s *AdminService) Items(ctx context.Context) ([]model.Item, error) {
	body, err := s.c.get(ctx, "/admin/items", nil)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	items, err := model.NormalizeList(body)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// DeleteItem removes any item.
func (s *AdminService) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: "/admin/items/" + url.PathEscape(id)}); err != nil {
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	return nil
}

// Users lists every user.
func (s *AdminService) Users(ctx context.Context) ([]model.Identity, error) {
	body, err := s.c.get(ctx, "/admin/users", nil)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users, err := model.NormalizeIdentities(body)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Suspend suspends a user. The reason is sent as plain text.
func (s *AdminService) Suspend(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.ValidationErrors{"reason": "Suspension reason is required"}
	}
	_, err := s.c.do(ctx, request{
		method:      http.MethodPut,
		path:        userPath(id) + "/suspend",
		body:        strings.NewReader(reason),
		contentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("suspending user %s: %w", id, err)
	}
	return nil
}

// Unsuspend lifts a suspension.
func (s *AdminService) Unsuspend(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodPut, path: userPath(id) + "/unsuspend"}); err != nil {
		return fmt.Errorf("unsuspending user %s: %w", id, err)
	}
	return nil
}

// DeleteUser removes a user.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: userPath(id)}); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	return nil
}

func userPath(id string) string {
	return "/admin/users/" + url.PathEscape(id)
}
