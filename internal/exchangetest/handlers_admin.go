package exchangetest

import (
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/erazemk/menjava/internal/model"
)

func (s *Server) adminItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(nil))
}

func (s *Server) adminDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[id] == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	delete(s.items, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]userJSON, 0, len(s.users))
	for _, u := range s.users {
		if !u.Deleted && u.Role == string(model.RoleUser) {
			out = append(out, u.json())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	jsonResponse(w, http.StatusOK, out)
}

// account returns the target user of an admin action or writes an error.
// The caller holds s.mu.
func (s *Server) account(w http.ResponseWriter, r *http.Request) *User {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return nil
	}
	u := s.users[id]
	if u == nil || u.Deleted {
		jsonError(w, http.StatusNotFound, "User not found")
		return nil
	}
	return u
}

func (s *Server) suspendUser(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		jsonError(w, http.StatusUnsupportedMediaType, "reason must be text/plain")
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	reason := strings.TrimSpace(string(data))
	if reason == "" {
		jsonError(w, http.StatusBadRequest, "Suspension reason is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.account(w, r)
	if u == nil {
		return
	}
	u.SuspensionReason = reason
	jsonResponse(w, http.StatusOK, map[string]string{"message": "User suspended"})
}

func (s *Server) unsuspendUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.account(w, r)
	if u == nil {
		return
	}
	u.SuspensionReason = ""
	jsonResponse(w, http.StatusOK, map[string]string{"message": "User unsuspended"})
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.account(w, r)
	if u == nil {
		return
	}
	u.Deleted = true
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []notificationJSON{}
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if n.UserID == u.ID {
			out = append(out, notificationJSON{
				ID:        n.ID,
				Message:   n.Message,
				Read:      n.Read,
				CreatedAt: n.CreatedAt.Format(localDateTime),
			})
		}
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id && n.UserID == u.ID {
			n.Read = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	jsonError(w, http.StatusNotFound, "Notification not found")
}
