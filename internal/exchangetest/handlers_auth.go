package exchangetest

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/menjava/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// findByEmail returns the active account with email. The caller holds s.mu.
func (s *Server) findByEmail(email string) *User {
	for _, u := range s.users {
		if !u.Deleted && strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// checkLogin verifies credentials and returns the account or writes a 401.
func (s *Server) checkLogin(w http.ResponseWriter, r *http.Request) *User {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}

	s.mu.Lock()
	u := s.findByEmail(req.Email)
	s.mu.Unlock()
	if u == nil {
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email)
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return nil
	}
	return u
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	u := s.checkLogin(w, r)
	if u == nil {
		return
	}
	if u.Role != string(model.RoleUser) {
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.mu.Lock()
	view := u.json()
	reason := u.SuspensionReason
	s.mu.Unlock()

	if reason != "" {
		jsonResponse(w, http.StatusOK, map[string]any{
			"message": "Your account has been suspended",
			"user":    view,
		})
		return
	}

	token, err := s.issue(u)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"token": token, "user": view})
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	u := s.checkLogin(w, r)
	if u == nil {
		return
	}
	if u.Role != string(model.RoleAdmin) {
		jsonError(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	token, err := s.issue(u)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	// Only the token; the client fills in the admin identity.
	jsonResponse(w, http.StatusOK, map[string]any{"token": token})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name, email and password required")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	s.mu.Lock()
	if s.findByEmail(req.Email) != nil {
		s.mu.Unlock()
		jsonError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := &User{
		ID:           s.id(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Location:     req.Location,
		Role:         string(model.RoleUser),
		PasswordHash: string(hash),
	}
	s.users[u.ID] = u
	view := u.json()
	s.mu.Unlock()

	token, err := s.issue(u)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"token": token, "user": view})
}

func (s *Server) issue(u *User) (string, error) {
	return generateToken(s.secret, u)
}
