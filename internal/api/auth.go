package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/erazemk/menjava/internal/model"
)

// AuthService covers login, admin login and signup.
type AuthService struct {
	c *Client
}

// Credentials are an email and password.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the login and signup reply.
type authResponse struct {
	Token   string          `json:"token"`
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
	Admin   json.RawMessage `json:"admin"`
}

// Login signs a user in and stores the session. A suspended account yields a
// *model.SuspendedError and leaves the session untouched.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*model.Identity, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, model.ValidationErrors{"credentials": "Email and password are required"}
	}

	resp, err := s.post(ctx, "/auth/login", creds)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	user, err := identityOrNil(resp.User)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if resp.Token == "" {
		if user != nil && user.SuspensionReason != "" {
			msg := resp.Message
			if msg == "" {
				msg = "Your account is suspended."
			}
			return nil, &model.SuspendedError{Message: msg, Reason: user.SuspensionReason, User: user}
		}
		return nil, &model.RemoteError{Status: http.StatusOK, Message: resp.Message, Err: fmt.Errorf("login reply carried no token")}
	}
	if user == nil {
		return nil, fmt.Errorf("logging in: %w: reply has no user", model.ErrMalformedRecord)
	}

	if err := s.c.session.SignIn(ctx, resp.Token, user); err != nil {
		return nil, err
	}
	s.c.logger.Info("user logged in", "user", user.ID, "email", user.Email)
	return user, nil
}

// AdminLogin signs an admin in. When the reply has no admin record the
// identity is the email with the admin role.
func (s *AuthService) AdminLogin(ctx context.Context, creds Credentials) (*model.Identity, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, model.ValidationErrors{"credentials": "Email and password are required"}
	}

	resp, err := s.post(ctx, "/admin/auth/login", creds)
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	if resp.Token == "" {
		return nil, &model.RemoteError{Status: http.StatusOK, Message: resp.Message, Err: fmt.Errorf("admin login reply carried no token")}
	}

	admin, err := identityOrNil(resp.Admin)
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	if admin == nil {
		admin = &model.Identity{Email: creds.Email}
	}
	if admin.ID == "" {
		admin.ID = admin.Email
	}
	admin.Role = model.RoleAdmin

	if err := s.c.session.SignInAdmin(ctx, resp.Token, admin); err != nil {
		return nil, err
	}
	s.c.logger.Info("admin logged in", "email", admin.Email)
	return admin, nil
}

// Signup registers a new user and signs them in when the backend returns a token.
func (s *AuthService) Signup(ctx context.Context, req *model.SignupRequest) (*model.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.post(ctx, "/auth/signup", req)
	if err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}

	user, err := identityOrNil(resp.User)
	if err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}
	if resp.Token == "" || user == nil {
		return user, nil
	}
	if err := s.c.session.SignIn(ctx, resp.Token, user); err != nil {
		return nil, err
	}
	s.c.logger.Info("user signed up", "user", user.ID, "email", user.Email)
	return user, nil
}

// Logout drops the user slot. The backend keeps no session to end.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.session.SignOut(ctx)
}

// AdminLogout drops the admin slot.
func (s *AuthService) AdminLogout(ctx context.Context) error {
	return s.c.session.SignOutAdmin(ctx)
}

func (s *AuthService) post(ctx context.Context, path string, payload any) (*authResponse, error) {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedRecord, err)
	}
	return &resp, nil
}

func identityOrNil(raw json.RawMessage) (*model.Identity, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return model.NormalizeIdentity(raw)
}
