// Package exchangetest runs an in-memory exchange backend for tests.
package exchangetest

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/menjava/internal/auth"
	"github.com/erazemk/menjava/internal/model"
)

// ConflictStyle selects how a rejected claim reports the current item.
type ConflictStyle int

const (
	// ConflictNested answers {"message": ..., "item": {...}}.
	ConflictNested ConflictStyle = iota
	// ConflictBare answers with the item record itself.
	ConflictBare
	// ConflictMessageOnly answers {"message": ...} and the client must re-fetch.
	ConflictMessageOnly
)

// Server is a fake backend. Exported fields may be changed between requests.
type Server struct {
	URL string

	// Conflict is the body style of a rejected claim.
	Conflict ConflictStyle
	// EmptyReplies makes claim and unclaim answer without an item.
	EmptyReplies bool
	// BeforeClaim runs inside a claim request before the item is checked.
	BeforeClaim func(itemID int64)

	secret string
	logger *slog.Logger

	mu            sync.Mutex
	nextID        int64
	users         map[int64]*User
	items         map[int64]*Item
	images        map[int64][]byte
	notifications []*notification
	hits          map[string]int
	requestIDs    []string
}

// New starts a fake backend that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		secret: "exchangetest-secret",
		logger: slog.Default(),
		nextID: 100,
		users:  make(map[int64]*User),
		items:  make(map[int64]*Item),
		images: make(map[int64][]byte),
		hits:   make(map[string]int),
	}

	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	s.URL = ts.URL
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.record)

	r.Post("/auth/login", s.login)
	r.Post("/auth/signup", s.signup)
	r.Post("/admin/auth/login", s.adminLogin)

	r.Get("/items", s.listItems)
	r.Get("/items/available", s.listAvailable)
	r.Get("/items/category/{category}", s.listByCategory)
	r.Get("/items/location/{location}", s.listByLocation)
	r.Get("/items/search", s.searchItems)
	r.Get("/items/images/{id}", s.getImage)
	r.Get("/items/{id}", s.getItem)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(string(model.RoleUser)))
			r.Use(requireActive)
			r.Post("/items/upload", s.uploadItem)
			r.Put("/items/{id}", s.updateItem)
			r.Delete("/items/{id}", s.deleteItem)
			r.Put("/items/{id}/claim", s.claimItem)
			r.Put("/items/{id}/unclaim", s.unclaimItem)
		})

		r.Get("/user/dashboard", s.dashboard)
		r.Get("/user/posted-items", s.postedItems)
		r.Get("/user/claimed-items", s.claimedItems)
		r.Get("/notifications", s.listNotifications)
		r.Post("/notifications/{id}/read", s.markRead)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(string(model.RoleAdmin)))
			r.Get("/admin/items", s.adminItems)
			r.Delete("/admin/items/{id}", s.adminDeleteItem)
			r.Get("/admin/users", s.adminUsers)
			r.Put("/admin/users/{id}/suspend", s.suspendUser)
			r.Put("/admin/users/{id}/unsuspend", s.unsuspendUser)
			r.Delete("/admin/users/{id}", s.adminDeleteUser)
		})
	})

	return r
}

// Hits returns how many requests reached method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// TotalHits returns the number of requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.hits {
		n += c
	}
	return n
}

// RequestIDs returns the request ids seen, in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser creates an account and returns it. Role defaults to USER.
func (s *Server) AddUser(t *testing.T, u User, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	u.PasswordHash = string(hash)
	if u.Role == "" {
		u.Role = string(model.RoleUser)
	}
	s.users[u.ID] = &u
	return &u
}

// AddItem lists an item for owner. Status defaults to AVAILABLE and type to FREE.
func (s *Server) AddItem(t *testing.T, owner *User, it Item) *Item {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.id()
	it.OwnerID = owner.ID
	if it.Status == "" {
		it.Status = string(model.StatusAvailable)
	}
	if it.Type == "" {
		it.Type = string(model.TypeFree)
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if len(it.ImageIDs) == 0 {
		img := s.id()
		s.images[img] = []byte("\xff\xd8fake")
		it.ImageIDs = []int64{img}
	}
	s.items[it.ID] = &it
	return &it
}

// Token issues a token for u, with ttl as in auth.GenerateToken.
func (s *Server) Token(t *testing.T, u *User, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(s.secret, strconv.FormatInt(u.ID, 10), u.Email, u.Role, ttl)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

// ClaimAs claims an item for u directly, as another client would.
func (s *Server) ClaimAs(itemID int64, u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.items[itemID]; it != nil {
		it.Status = string(model.StatusClaimed)
		it.ClaimerID = u.ID
	}
}

// Item returns a copy of the stored item, or nil.
func (s *Server) Item(id int64) *Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	if it == nil {
		return nil
	}
	copied := *it
	return &copied
}

// User returns a copy of the stored account, or nil.
func (s *Server) User(id int64) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}

// itemJSON renders an item. The caller holds s.mu.
func (s *Server) itemJSON(it *Item) itemJSON {
	out := itemJSON{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		Location:    it.Location,
		Type:        it.Type,
		Status:      it.Status,
		ImageIDs:    append([]int64{}, it.ImageIDs...),
		CreatedAt:   it.CreatedAt.Format(localDateTime),
	}
	if it.Type == string(model.TypeExchange) {
		want := it.ExchangeFor
		out.ExchangeFor = &want
	}
	if owner := s.users[it.OwnerID]; owner != nil {
		out.PostedBy = owner.json()
	} else {
		out.PostedBy = userJSON{ID: it.OwnerID}
	}
	if it.ClaimerID != 0 {
		if claimer := s.users[it.ClaimerID]; claimer != nil {
			ref := claimer.json()
			out.ClaimedBy = &ref
		}
	}
	return out
}

// list renders the items matching keep, oldest first. The caller holds s.mu.
func (s *Server) list(keep func(*Item) bool) []itemJSON {
	ids := make([]int64, 0, len(s.items))
	for id, it := range s.items {
		if keep == nil || keep(it) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]itemJSON, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.itemJSON(s.items[id]))
	}
	return out
}

// notify queues a notification for userID. The caller holds s.mu.
func (s *Server) notify(userID int64, msg string) {
	s.notifications = append(s.notifications, &notification{
		ID:        s.id(),
		UserID:    userID,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	})
}

// Notify queues a notification for u.
func (s *Server) Notify(u *User, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(u.ID, msg)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func generateToken(secret string, u *User) (string, error) {
	return auth.GenerateToken(secret, strconv.FormatInt(u.ID, 10), u.Email, u.Role, 0)
}
