package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erazemk/menjava/internal/model"
)

// UsersService covers the signed-in user's dashboard endpoints.
type UsersService struct {
	c *Client
}

// Dashboard returns the user's counters.
func (s *UsersService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	body, err := s.c.get(ctx, "/user/dashboard", nil)
	if err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}
	var stats model.DashboardStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("loading dashboard: %w: %v", model.ErrMalformedRecord, err)
	}
	return &stats, nil
}

// PostedItems returns the items the user posted.
func (s *UsersService) PostedItems(ctx context.Context) ([]model.Item, error) {
	return s.items(ctx, "/user/posted-items")
}

// ClaimedItems returns the items the user holds a claim on.
func (s *UsersService) ClaimedItems(ctx context.Context) ([]model.Item, error) {
	return s.items(ctx, "/user/claimed-items")
}

func (s *UsersService) items(ctx context.Context, path string) ([]model.Item, error) {
	body, err := s.c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	items, err := model.NormalizeList(body)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	return items, nil
}
