package render

import (
	"strings"
	"testing"
	"time"

	"github.com/erazemk/menjava/internal/model"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func claimedDesk() *model.Item {
	return &model.Item{
		ID:        "7",
		Title:     "Oak desk",
		Category:  model.CategoryFurniture,
		Location:  "Bobasi",
		Type:      model.TypeFree,
		Status:    model.StatusClaimed,
		PostedBy:  model.UserRef{ID: "1", Name: "Achieng", Phone: "0712345678", Address: "Manga Market"},
		ClaimedBy: &model.UserRef{ID: "2", Name: "Brian"},
		ImageIDs:  []string{"10", "11"},
		CreatedAt: now.Add(-72 * time.Hour),
	}
}

func TestItemCardContactVisibility(t *testing.T) {
	tests := []struct {
		name    string
		viewer  *model.Identity
		contact bool
	}{
		{"claimer", &model.Identity{ID: "2", Role: model.RoleUser}, true},
		{"owner", &model.Identity{ID: "1", Role: model.RoleUser}, false},
		{"stranger", &model.Identity{ID: "3", Role: model.RoleUser}, false},
		{"admin", &model.Identity{ID: "2", Role: model.RoleAdmin}, false},
		{"anonymous", nil, false},
	}

	for _, tt := range tests {
		card := ItemCard(claimedDesk(), tt.viewer, CardOptions{Now: now})
		if got := strings.Contains(card, "0712345678"); got != tt.contact {
			t.Errorf("%s: expected contact shown = %v, got card:\n%s", tt.name, tt.contact, card)
		}
	}
}

func TestItemCardDetails(t *testing.T) {
	item := claimedDesk()
	item.Type = model.TypeExchange
	item.ExchangeFor = "a chair"

	card := ItemCard(item, nil, CardOptions{Now: now, ImageURL: func(id string) string { return "http://img/" + id }})
	for _, want := range []string{"Oak desk", "Furniture", "Exchange for: a chair", "Bobasi", "posted by Achieng", "3 days ago", "Claimed", "2 photos", "http://img/11"} {
		if !strings.Contains(card, want) {
			t.Errorf("expected %q in card:\n%s", want, card)
		}
	}
}

func TestItemCardPhotoCount(t *testing.T) {
	tests := []struct {
		ids  []string
		want string
		not  string
	}{
		{[]string{"10"}, "1 photo", "1 photos"},
		{[]string{"10", "11", "12"}, "3 photos", "photoes"},
	}

	for _, tt := range tests {
		item := claimedDesk()
		item.ImageIDs = tt.ids
		card := ItemCard(item, nil, CardOptions{Now: now})
		if !strings.Contains(card, tt.want) || strings.Contains(card, tt.not) {
			t.Errorf("expected %q and not %q in card:\n%s", tt.want, tt.not, card)
		}
	}
}

func TestActions(t *testing.T) {
	available := claimedDesk()
	available.Status = model.StatusAvailable
	available.ClaimedBy = nil

	tests := []struct {
		name   string
		item   *model.Item
		viewer *model.Identity
		busy   bool
		want   string
	}{
		{"stranger claims", available, &model.Identity{ID: "3"}, false, "claim"},
		{"owner edits", available, &model.Identity{ID: "1"}, false, "edit, delete"},
		{"claimer unclaims", claimedDesk(), &model.Identity{ID: "2"}, false, "unclaim"},
		{"admin deletes", available, &model.Identity{ID: "9", Role: model.RoleAdmin}, false, "delete"},
		{"busy", available, &model.Identity{ID: "3"}, true, "working…"},
		{"anonymous", available, nil, false, ""},
	}

	for _, tt := range tests {
		got := strings.Join(Actions(tt.item, tt.viewer, tt.busy), ", ")
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestItemListEmpty(t *testing.T) {
	if got := ItemList(nil, nil, CardOptions{}); !strings.Contains(got, "No items found.") {
		t.Errorf("unexpected empty list %q", got)
	}
}

func TestDashboard(t *testing.T) {
	out := Dashboard(&model.DashboardStats{TotalPostedItems: 1200, AvailableItems: 3, ClaimedItemsCount: 1, TotalClaimedItems: 4})
	if !strings.Contains(out, "1,200") {
		t.Errorf("expected grouped count, got:\n%s", out)
	}
}

func TestUsers(t *testing.T) {
	out := Users([]model.Identity{
		{ID: "1", Name: "Achieng", Email: "a@example.co.ke"},
		{ID: "2", Name: "Spammer", Suspended: true, SuspensionReason: "Posting spam"},
	})
	if !strings.Contains(out, "Active") || !strings.Contains(out, "Suspended") || !strings.Contains(out, "Posting spam") {
		t.Errorf("unexpected users view:\n%s", out)
	}
}

func TestNotifications(t *testing.T) {
	out := Notifications([]model.Notification{
		{ID: "5", Message: "Brian claimed your item", CreatedAt: now.Add(-time.Hour)},
		{ID: "4", Message: "Welcome", IsRead: true},
	}, now)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "●") || strings.HasPrefix(lines[1], "●") {
		t.Errorf("expected only the unread line marked:\n%s", out)
	}
	if !strings.Contains(lines[0], "1 hour ago") {
		t.Errorf("expected relative time, got %q", lines[0])
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryLabel(model.CategoryElectronics); got != "Electronics" {
		t.Errorf("expected Electronics, got %q", got)
	}
}
