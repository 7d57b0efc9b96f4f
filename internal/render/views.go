package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/menjava/internal/model"
)

// Dashboard renders a user's counters.
func Dashboard(stats *model.DashboardStats) string {
	rows := []struct {
		label string
		value int
	}{
		{"Posted items", stats.TotalPostedItems},
		{"Available", stats.AvailableItems},
		{"Claimed by others", stats.ClaimedItemsCount},
		{"Items you claimed", stats.TotalClaimedItems},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Dashboard") + "\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-18s %s\n", r.label, humanize.Comma(int64(r.value)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Users renders the admin user list.
func Users(users []model.Identity) string {
	if len(users) == 0 {
		return mutedStyle.Render("No users.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Users") + "\n")
	for _, u := range users {
		status := activeLabel
		if u.Suspended {
			status = suspendedStyle.Render("Suspended")
			if u.SuspensionReason != "" {
				status += ": " + u.SuspensionReason
			}
		}
		fmt.Fprintf(&b, "%-6s %-24s %-32s %-20s %s\n", u.ID, u.Name, u.Email, u.Location, status)
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	suspendedStyle = badgeStyle.Padding(0).Foreground(colorDanger)
	activeLabel = badgeStyle.Padding(0).Foreground(colorAvailable).Render("Active")
)

// Notifications renders the feed, unread entries marked with a dot.
func Notifications(list []model.Notification, now time.Time) string {
	if len(list) == 0 {
		return mutedStyle.Render("No notifications.")
	}
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	for _, n := range list {
		marker := " "
		if !n.IsRead {
			marker = "●"
		}
		line := fmt.Sprintf("%s [%s] %s", marker, n.ID, n.Message)
		if !n.CreatedAt.IsZero() {
			line += " " + mutedStyle.Render(humanize.RelTime(n.CreatedAt, now, "ago", "from now"))
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
