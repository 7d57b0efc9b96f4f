package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/menjava/internal/db"
	"github.com/erazemk/menjava/internal/exchangetest"
	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/session"
	"github.com/erazemk/menjava/internal/store"
)

const testPassword = "pass!word1"

type fixture struct {
	srv          *exchangetest.Server
	client       *Client
	sess         *session.Session
	owner        *exchangetest.User
	claimer      *exchangetest.User
	admin        *exchangetest.User
	unauthorized int
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{srv: exchangetest.New(t)}

	sess, err := session.Load(context.Background(), store.NewStateStore(db.NewTestDB(t)), nil)
	if err != nil {
		t.Fatalf("session.Load: %v", err)
	}
	f.sess = sess

	client, err := New(f.srv.URL, sess, WithUnauthorizedHandler(func() { f.unauthorized++ }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.client = client

	f.owner = f.srv.AddUser(t, exchangetest.User{
		Name: "Owner", Email: "owner@example.co.ke", Phone: "0712345678", Address: "Manga Market", Location: "Bobasi",
	}, testPassword)
	f.claimer = f.srv.AddUser(t, exchangetest.User{Name: "Claimer", Email: "claimer@example.co.ke"}, testPassword)
	f.admin = f.srv.AddUser(t, exchangetest.User{Name: "Moderator", Email: "admin@example.co.ke", Role: "ADMIN"}, testPassword)
	return f
}

func (f *fixture) login(t *testing.T, u *exchangetest.User) *model.Identity {
	t.Helper()
	id, err := f.client.Auth().Login(context.Background(), Credentials{Email: u.Email, Password: testPassword})
	if err != nil {
		t.Fatalf("Login %s: %v", u.Email, err)
	}
	return id
}

func itemID(it *exchangetest.Item) string {
	return strconv.FormatInt(it.ID, 10)
}

func TestNewRejectsBadURL(t *testing.T) {
	sess, _ := session.Load(context.Background(), store.NewStateStore(db.NewTestDB(t)), nil)
	for _, raw := range []string{"", "localhost:8080", "ftp://example.com", "http://"} {
		if _, err := New(raw, sess); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestLoginStoresSession(t *testing.T) {
	f := setup(t)

	id := f.login(t, f.owner)
	if id.ID != strconv.FormatInt(f.owner.ID, 10) {
		t.Errorf("expected numeric id as string, got %q", id.ID)
	}
	if id.Role != model.RoleUser {
		t.Errorf("expected USER, got %q", id.Role)
	}
	if got := f.sess.CurrentIdentity(); got == nil || got.ID != id.ID {
		t.Errorf("expected session identity %s, got %+v", id.ID, got)
	}
}

func TestLoginSuspended(t *testing.T) {
	f := setup(t)
	f.login(t, f.claimer)
	before := f.sess.CurrentIdentity()

	f.srv.AddUser(t, exchangetest.User{Name: "Spammer", Email: "spam@example.co.ke", SuspensionReason: "Posting spam"}, testPassword)
	_, err := f.client.Auth().Login(context.Background(), Credentials{Email: "spam@example.co.ke", Password: testPassword})

	var suspended *model.SuspendedError
	if !errors.As(err, &suspended) {
		t.Fatalf("expected SuspendedError, got %v", err)
	}
	if suspended.Reason != "Posting spam" {
		t.Errorf("expected reason, got %q", suspended.Reason)
	}
	if !errors.Is(err, model.ErrUnauthorized) {
		t.Error("expected suspension to count as unauthorized")
	}
	if diff := cmp.Diff(before, f.sess.CurrentIdentity()); diff != "" {
		t.Errorf("session changed (-want +got):\n%s", diff)
	}
}

func TestLoginBadPasswordClearsSession(t *testing.T) {
	f := setup(t)
	f.login(t, f.claimer)

	_, err := f.client.Auth().Login(context.Background(), Credentials{Email: f.owner.Email, Password: "wrong"})
	var remote *model.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Status != http.StatusUnauthorized || remote.Message != "Invalid email or password" {
		t.Errorf("unexpected error %d %q", remote.Status, remote.Message)
	}
	if f.sess.CurrentIdentity() != nil {
		t.Error("expected 401 to clear the session")
	}
	if f.unauthorized != 1 {
		t.Errorf("expected unauthorized hook once, got %d", f.unauthorized)
	}
}

func TestExpiredTokenClearsSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	identity := &model.Identity{ID: strconv.FormatInt(f.claimer.ID, 10), Role: model.RoleUser}
	if err := f.sess.SignIn(ctx, f.srv.Token(t, f.claimer, -time.Minute), identity); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := f.sess.SignInAdmin(ctx, f.srv.Token(t, f.admin, time.Hour), &model.Identity{ID: "a", Role: model.RoleAdmin}); err != nil {
		t.Fatalf("SignInAdmin: %v", err)
	}

	_, err := f.client.Users().Dashboard(ctx)
	if !errors.Is(err, model.ErrRemoteFailure) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	if f.sess.User() != nil || f.sess.Admin() != nil {
		t.Error("expected both slots cleared")
	}
	if f.unauthorized != 1 {
		t.Errorf("expected unauthorized hook once, got %d", f.unauthorized)
	}
}

func TestAdminLoginDefaultsIdentity(t *testing.T) {
	f := setup(t)

	admin, err := f.client.Auth().AdminLogin(context.Background(), Credentials{Email: f.admin.Email, Password: testPassword})
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if !admin.IsAdmin() || admin.Email != f.admin.Email {
		t.Errorf("expected admin identity from email, got %+v", admin)
	}
	if f.sess.TokenFor("/admin/users") == "" {
		t.Error("expected admin token stored")
	}
	if f.sess.TokenFor("/items") != "" {
		t.Error("expected no user token")
	}
}

func TestSignup(t *testing.T) {
	f := setup(t)

	req := &model.SignupRequest{
		Name: "New", Email: "new@example.co.ke", Password: testPassword, ConfirmPassword: testPassword,
		Location: "Bobasi", Phone: "+254712345678", Address: "Manga Market",
	}
	user, err := f.client.Auth().Signup(context.Background(), req)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user == nil || user.Email != "new@example.co.ke" {
		t.Fatalf("expected new user, got %+v", user)
	}
	if f.sess.User() == nil {
		t.Error("expected signup to sign in")
	}
}

func TestSignupValidatesFirst(t *testing.T) {
	f := setup(t)

	req := &model.SignupRequest{Name: "New", Email: "new@example.co.ke", Password: testPassword, ConfirmPassword: "other!pass"}
	_, err := f.client.Auth().Signup(context.Background(), req)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := f.srv.TotalHits(); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}

func TestFilterEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		path   string
		query  url.Values
	}{
		{"all", Filter{}, "/items", nil},
		{"available", Filter{AvailableOnly: true}, "/items/available", nil},
		{"location", Filter{Location: "Bobasi", AvailableOnly: true}, "/items/location/Bobasi", nil},
		{"category", Filter{Category: "books", Location: "Bobasi"}, "/items/category/BOOKS", nil},
		{"search", Filter{Search: " desk ", Category: "BOOKS"}, "/items/search", url.Values{"searchTerm": {"desk"}}},
		{"search with location", Filter{Search: "desk", Location: "Nyaribari Chache"}, "/items/search",
			url.Values{"searchTerm": {"desk"}, "location": {"Nyaribari Chache"}}},
		{"escaped location", Filter{Location: "South Mugirango"}, "/items/location/South%20Mugirango", nil},
	}

	for _, tt := range tests {
		path, query := tt.filter.endpoint()
		if path != tt.path {
			t.Errorf("%s: expected path %q, got %q", tt.name, tt.path, path)
		}
		if diff := cmp.Diff(tt.query, query); diff != "" {
			t.Errorf("%s: query mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestListItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE", Location: "Bobasi"})
	claimed := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Novel", Category: "BOOKS", Location: "Bonchari"})
	f.srv.ClaimAs(claimed.ID, f.claimer)

	all, err := f.client.Items().List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
	if all[1].ClaimedBy == nil || all[1].ClaimedBy.ID != strconv.FormatInt(f.claimer.ID, 10) {
		t.Errorf("expected claimer on second item, got %+v", all[1].ClaimedBy)
	}
	for i := range all {
		if err := model.CheckInvariants(&all[i]); err != nil {
			t.Errorf("CheckInvariants: %v", err)
		}
	}

	available, _ := f.client.Items().List(ctx, Filter{AvailableOnly: true})
	if len(available) != 1 || available[0].Title != "Desk" {
		t.Errorf("expected only Desk available, got %v", available)
	}

	books, _ := f.client.Items().List(ctx, Filter{Category: model.CategoryBooks})
	if len(books) != 1 || books[0].Title != "Novel" {
		t.Errorf("expected only Novel, got %v", books)
	}

	found, _ := f.client.Items().List(ctx, Filter{Search: "des", Location: "Bobasi"})
	if len(found) != 1 {
		t.Errorf("expected one search hit, got %d", len(found))
	}
	if f.srv.Hits(http.MethodGet, "/items/search") != 1 {
		t.Error("expected the search endpoint to be used")
	}
}

func TestClaimAndUnclaim(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	it := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE"})
	f.login(t, f.claimer)

	claimed, err := f.client.Items().Claim(ctx, itemID(it))
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.Status != model.StatusClaimed || claimed.ClaimedBy.ID != strconv.FormatInt(f.claimer.ID, 10) {
		t.Errorf("expected claimed by claimer, got %+v", claimed)
	}

	released, err := f.client.Items().Unclaim(ctx, itemID(it))
	if err != nil {
		t.Fatalf("Unclaim: %v", err)
	}
	if released.Status != model.StatusAvailable || released.ClaimedBy != nil {
		t.Errorf("expected available, got %+v", released)
	}
}

func TestClaimEmptyReply(t *testing.T) {
	f := setup(t)
	f.srv.EmptyReplies = true
	it := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE"})
	f.login(t, f.claimer)

	got, err := f.client.Items().Claim(context.Background(), itemID(it))
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if got != nil {
		t.Errorf("expected no item from a message-only reply, got %+v", got)
	}
}

func TestClaimConflictBodies(t *testing.T) {
	tests := []struct {
		name     string
		style    exchangetest.ConflictStyle
		wantItem bool
	}{
		{"nested", exchangetest.ConflictNested, true},
		{"bare", exchangetest.ConflictBare, true},
		{"message only", exchangetest.ConflictMessageOnly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.srv.Conflict = tt.style
			rival := f.srv.AddUser(t, exchangetest.User{Name: "Rival", Email: "rival@example.co.ke"}, testPassword)
			it := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE"})
			f.srv.ClaimAs(it.ID, rival)
			f.login(t, f.claimer)

			_, err := f.client.Items().Claim(context.Background(), itemID(it))
			var remote *model.RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("expected RemoteError, got %v", err)
			}
			if !remote.Conflict() {
				t.Error("expected a conflict")
			}
			if (remote.Item != nil) != tt.wantItem {
				t.Fatalf("expected item attached = %v, got %+v", tt.wantItem, remote.Item)
			}
			if remote.Item != nil && remote.Item.ClaimedBy.ID != strconv.FormatInt(rival.ID, 10) {
				t.Errorf("expected rival as claimer, got %+v", remote.Item.ClaimedBy)
			}
		})
	}
}

func pngUpload(t *testing.T, name string) model.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{200, 10, 10, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return model.Upload{Name: name, MIME: "image/png", Data: &buf}
}

func TestCreateItem(t *testing.T) {
	f := setup(t)
	f.login(t, f.owner)

	draft := &model.Draft{
		Title:       "Bookshelf",
		Category:    "furniture",
		Location:    "Bobasi",
		Type:        model.TypeExchange,
		ExchangeFor: "  a chair ",
		Images:      []model.Upload{pngUpload(t, "front.png"), pngUpload(t, "back.png")},
	}
	item, err := f.client.Items().Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.Title != "Bookshelf" || item.Category != model.CategoryFurniture || item.ExchangeFor != "a chair" {
		t.Errorf("unexpected item %+v", item)
	}
	if len(item.ImageIDs) != 2 {
		t.Errorf("expected 2 images, got %d", len(item.ImageIDs))
	}
	if item.PostedBy.ID != strconv.FormatInt(f.owner.ID, 10) {
		t.Errorf("expected owner as poster, got %q", item.PostedBy.ID)
	}
}

func TestCreateItemValidatesFirst(t *testing.T) {
	f := setup(t)
	f.login(t, f.owner)
	hits := f.srv.TotalHits()

	_, err := f.client.Items().Create(context.Background(), &model.Draft{Title: "Bookshelf", Category: "FURNITURE", Location: "Bobasi"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.srv.TotalHits() != hits {
		t.Error("expected no request for an invalid draft")
	}
}

func TestUpdateAndDeleteItem(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	it := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE"})

	f.login(t, f.claimer)
	title := "Stolen"
	_, err := f.client.Items().Update(ctx, itemID(it), &model.ItemUpdate{Title: &title})
	var remote *model.RemoteError
	if !errors.As(err, &remote) || remote.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner edit, got %v", err)
	}

	f.login(t, f.owner)
	title = "Oak desk"
	updated, err := f.client.Items().Update(ctx, itemID(it), &model.ItemUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Oak desk" {
		t.Errorf("expected new title, got %q", updated.Title)
	}

	if err := f.client.Items().Delete(ctx, itemID(it)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.srv.Item(it.ID) != nil {
		t.Error("expected item deleted")
	}
}

func TestAdminOperations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	it := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE"})

	if _, err := f.client.Auth().AdminLogin(ctx, Credentials{Email: f.admin.Email, Password: testPassword}); err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}

	users, err := f.client.Admin().Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	ownerID := strconv.FormatInt(f.owner.ID, 10)
	if err := f.client.Admin().Suspend(ctx, ownerID, " "); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for blank reason, got %v", err)
	}
	if err := f.client.Admin().Suspend(ctx, ownerID, "Selling, not giving"); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if got := f.srv.User(f.owner.ID).SuspensionReason; got != "Selling, not giving" {
		t.Errorf("expected reason stored, got %q", got)
	}
	if err := f.client.Admin().Unsuspend(ctx, ownerID); err != nil {
		t.Fatalf("Unsuspend: %v", err)
	}

	items, err := f.client.Admin().Items(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected 1 item, got %d (%v)", len(items), err)
	}
	if err := f.client.Admin().DeleteItem(ctx, itemID(it)); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := f.client.Admin().DeleteUser(ctx, ownerID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !f.srv.User(f.owner.ID).Deleted {
		t.Error("expected user deleted")
	}
}

func TestAdminRoutesNeedAdminToken(t *testing.T) {
	f := setup(t)
	f.login(t, f.owner)

	// The user token is never sent to /admin, so the backend sees no credentials.
	_, err := f.client.Admin().Users(context.Background())
	var remote *model.RemoteError
	if !errors.As(err, &remote) || !remote.Unauthenticated() {
		t.Fatalf("expected 401, got %v", err)
	}
	if f.sess.User() != nil {
		t.Error("expected the rejected admin call to clear the session")
	}
}

func TestDashboardAndNotifications(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	it := f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE"})
	f.srv.AddItem(t, f.owner, exchangetest.Item{Title: "Lamp", Category: "ELECTRONICS"})

	f.login(t, f.claimer)
	if _, err := f.client.Items().Claim(ctx, itemID(it)); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	claimed, err := f.client.Users().ClaimedItems(ctx)
	if err != nil || len(claimed) != 1 {
		t.Fatalf("expected 1 claimed item, got %d (%v)", len(claimed), err)
	}

	f.login(t, f.owner)
	stats, err := f.client.Users().Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	want := &model.DashboardStats{TotalPostedItems: 2, AvailableItems: 1, ClaimedItemsCount: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	posted, err := f.client.Users().PostedItems(ctx)
	if err != nil || len(posted) != 2 {
		t.Fatalf("expected 2 posted items, got %d (%v)", len(posted), err)
	}

	list, err := f.client.Notifications().List(ctx)
	if err != nil {
		t.Fatalf("List notifications: %v", err)
	}
	if len(list) != 1 || list[0].IsRead {
		t.Fatalf("expected one unread notification, got %+v", list)
	}
	if err := f.client.Notifications().MarkRead(ctx, list[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, _ = f.client.Notifications().List(ctx)
	if !list[0].IsRead {
		t.Error("expected notification read")
	}
}

func TestRequestIDs(t *testing.T) {
	f := setup(t)
	f.client.Items().List(context.Background(), Filter{})
	f.client.Items().List(context.Background(), Filter{})

	ids := f.srv.RequestIDs()
	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("expected two distinct request ids, got %v", ids)
	}
}

func TestImageURL(t *testing.T) {
	f := setup(t)
	got := f.client.Items().ImageURL("42")
	if got != f.srv.URL+"/items/images/42" {
		t.Errorf("unexpected image url %q", got)
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMsg     string
		wantItem    bool
	}{
		{"empty", "", "", "", false},
		{"message", "application/json", `{"message":"nope"}`, "nope", false},
		{"error field", "application/json", `{"error":"bad thing"}`, "bad thing", false},
		{"plain text", "text/plain; charset=utf-8", "Item already claimed\nstack...", "Item already claimed", false},
		{"html", "text/html", "<html>oops</html>", "", false},
		{"nested item", "application/json",
			`{"message":"taken","item":{"id":1,"status":"CLAIMED","postedBy":{"id":2},"claimedBy":{"id":3}}}`, "taken", true},
		{"bare item", "application/json", `{"id":1,"status":"CLAIMED","postedBy":{"id":2},"claimedBy":{"id":3}}`, "", true},
		{"malformed item ignored", "application/json", `{"message":"taken","item":{"id":1}}`, "taken", false},
	}

	for _, tt := range tests {
		remote := decodeError(http.StatusConflict, tt.contentType, []byte(tt.body))
		if remote.Message != tt.wantMsg {
			t.Errorf("%s: expected message %q, got %q", tt.name, tt.wantMsg, remote.Message)
		}
		if (remote.Item != nil) != tt.wantItem {
			t.Errorf("%s: expected item %v, got %+v", tt.name, tt.wantItem, remote.Item)
		}
	}
}
