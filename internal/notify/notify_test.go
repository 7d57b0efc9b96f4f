package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/erazemk/menjava/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu     sync.Mutex
	items  []model.Notification
	err    error
	calls  int
	marked []string
}

func (s *fakeSource) List(context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]model.Notification(nil), s.items...), nil
}

func (s *fakeSource) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.marked = append(s.marked, id)
	return nil
}

func (s *fakeSource) set(items ...model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

type signer struct{ user *model.Identity }

func (s signer) User() *model.Identity { return s.user }

var alice = &model.Identity{ID: "1", Role: model.RoleUser}

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut, nil)

	c.Success("Item claimed successfully!")
	c.Error("Item already claimed")

	if !strings.Contains(out.String(), "Item claimed successfully!") {
		t.Errorf("expected success on out, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Item already claimed") {
		t.Errorf("expected error on errOut, got %q", errOut.String())
	}
	if strings.Contains(out.String(), "already") {
		t.Error("expected errors kept off out")
	}
}

func TestFeedLoadSignedOut(t *testing.T) {
	src := &fakeSource{items: []model.Notification{{ID: "1"}}}
	feed := NewFeed(src, signer{}, nil)

	changed, err := feed.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if changed || src.calls != 0 {
		t.Errorf("expected no fetch while signed out, got changed=%v calls=%d", changed, src.calls)
	}
}

func TestFeedLoadAndMarkRead(t *testing.T) {
	src := &fakeSource{items: []model.Notification{
		{ID: "1", Message: "Bob claimed your item"},
		{ID: "2", Message: "Old news", IsRead: true},
	}}
	feed := NewFeed(src, signer{alice}, nil)
	ctx := context.Background()

	changed, err := feed.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !changed || len(feed.Items()) != 2 {
		t.Fatalf("expected 2 new items, got changed=%v %v", changed, feed.Items())
	}
	if feed.Unread() != 1 {
		t.Errorf("expected 1 unread, got %d", feed.Unread())
	}

	if changed, _ := feed.Load(ctx); changed {
		t.Error("expected identical reload to report no change")
	}

	if err := feed.MarkRead(ctx, "1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if feed.Unread() != 0 {
		t.Errorf("expected 0 unread, got %d", feed.Unread())
	}
	if len(src.marked) != 1 || src.marked[0] != "1" {
		t.Errorf("expected backend ack for 1, got %v", src.marked)
	}
}

func TestFeedMarkReadFailure(t *testing.T) {
	src := &fakeSource{items: []model.Notification{{ID: "1"}}}
	feed := NewFeed(src, signer{alice}, nil)
	feed.Load(context.Background())

	src.err = errors.New("offline")
	if err := feed.MarkRead(context.Background(), "1"); err == nil {
		t.Fatal("expected error")
	}
	if feed.Unread() != 1 {
		t.Error("expected item to stay unread")
	}
}

func TestPollReportsChanges(t *testing.T) {
	src := &fakeSource{items: []model.Notification{{ID: "1"}}}
	feed := NewFeed(src, signer{alice}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []model.Notification, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		feed.Poll(ctx, 5*time.Millisecond, func(items []model.Notification) { changes <- items })
	}()

	first := <-changes
	if len(first) != 1 {
		t.Fatalf("expected initial load of 1 item, got %d", len(first))
	}

	src.set(model.Notification{ID: "1"}, model.Notification{ID: "2"})
	select {
	case second := <-changes:
		if len(second) != 2 {
			t.Errorf("expected 2 items, got %d", len(second))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	<-done
}

func TestPollSurvivesErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	feed := NewFeed(src, signer{alice}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	feed.Poll(ctx, 5*time.Millisecond, nil)

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.calls < 2 {
		t.Errorf("expected retries after failure, got %d calls", src.calls)
	}
}
