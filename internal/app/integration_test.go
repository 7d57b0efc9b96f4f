package app

import (
	"context"
	"strconv"
	"testing"

	"github.com/erazemk/menjava/internal/api"
	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/db"
	"github.com/erazemk/menjava/internal/exchangetest"
	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/policy"
	"github.com/erazemk/menjava/internal/session"
	"github.com/erazemk/menjava/internal/store"
)

const password = "pass!word1"

type world struct {
	srv      *exchangetest.Server
	client   *api.Client
	sess     *session.Session
	browse   *Browse
	claims   *claim.Coordinator
	notifier *recordingNotifier
	refresh  int
}

func newWorld(t *testing.T) *world {
	t.Helper()
	conn := db.NewTestDB(t)
	sess, err := session.Load(context.Background(), store.NewStateStore(conn), nil)
	if err != nil {
		t.Fatalf("session.Load: %v", err)
	}

	w := &world{srv: exchangetest.New(t), sess: sess, notifier: &recordingNotifier{}}
	w.client, err = api.New(w.srv.URL, sess)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	w.browse = NewBrowse(BrowseParams{Items: w.client.Items(), Cache: NewItemCache(conn), Notifier: w.notifier})
	w.claims = claim.New(claim.Params{
		Items:    w.client.Items(),
		Session:  sess,
		Notifier: w.notifier,
		Refresh:  func() { w.refresh++ },
	})
	return w
}

func (w *world) login(t *testing.T, u *exchangetest.User) {
	t.Helper()
	if _, err := w.client.Auth().Login(context.Background(), api.Credentials{Email: u.Email, Password: password}); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestClaimRoundTripAgainstBackend(t *testing.T) {
	w := newWorld(t)
	owner := w.srv.AddUser(t, exchangetest.User{Name: "Owner", Email: "owner@example.co.ke", Phone: "0712345678"}, password)
	claimer := w.srv.AddUser(t, exchangetest.User{Name: "Claimer", Email: "claimer@example.co.ke"}, password)
	w.srv.AddItem(t, owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE", Location: "Bobasi"})
	w.login(t, claimer)
	ctx := context.Background()

	listing, err := w.browse.Load(ctx, api.Filter{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	desk := &listing.All[0]
	viewer := w.sess.CurrentIdentity()
	if policy.CanSeeContactDetails(desk, viewer) {
		t.Error("expected contact hidden before claiming")
	}

	if err := w.claims.Claim(ctx, desk); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !policy.CanSeeContactDetails(desk, viewer) || desk.PostedBy.Phone != "0712345678" {
		t.Errorf("expected contact visible to the claimer, got %+v", desk.PostedBy)
	}
	w.browse.Remember(ctx, desk)

	if err := w.claims.Unclaim(ctx, desk); err != nil {
		t.Fatalf("Unclaim: %v", err)
	}
	if desk.Status != model.StatusAvailable || desk.ClaimedBy != nil {
		t.Errorf("expected available again, got %+v", desk)
	}
	if w.refresh != 2 {
		t.Errorf("expected 2 refreshes, got %d", w.refresh)
	}
	if len(w.notifier.successes) != 2 || len(w.notifier.errors) != 0 {
		t.Errorf("unexpected notices %v / %v", w.notifier.successes, w.notifier.errors)
	}
}

func TestClaimRaceAgainstBackend(t *testing.T) {
	w := newWorld(t)
	owner := w.srv.AddUser(t, exchangetest.User{Name: "Owner", Email: "owner@example.co.ke"}, password)
	claimer := w.srv.AddUser(t, exchangetest.User{Name: "Claimer", Email: "claimer@example.co.ke"}, password)
	rival := w.srv.AddUser(t, exchangetest.User{Name: "Rival", Email: "rival@example.co.ke"}, password)
	w.srv.AddItem(t, owner, exchangetest.Item{Title: "Desk", Category: "FURNITURE", Location: "Bobasi"})
	w.login(t, claimer)
	ctx := context.Background()

	listing, err := w.browse.Load(ctx, api.Filter{AvailableOnly: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	desk := &listing.All[0]

	// Someone else claims between our listing and our request.
	w.srv.BeforeClaim = func(id int64) { w.srv.ClaimAs(id, rival) }

	if err := w.claims.Claim(ctx, desk); err == nil {
		t.Fatal("expected the claim to lose the race")
	}
	if desk.Status != model.StatusClaimed || desk.ClaimedBy.ID != strconv.FormatInt(rival.ID, 10) {
		t.Errorf("expected item re-synced to the rival's claim, got %+v", desk)
	}
	if policy.CanSeeContactDetails(desk, w.sess.CurrentIdentity()) {
		t.Error("expected contact hidden from the loser")
	}
	if len(w.notifier.errors) != 1 || w.notifier.errors[0] != "Item already claimed" {
		t.Errorf("expected backend message, got %v", w.notifier.errors)
	}
	if w.refresh != 0 {
		t.Errorf("expected no refresh after a failure, got %d", w.refresh)
	}
}
