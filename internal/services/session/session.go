package session

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
)

const (
	KeyAuthToken       = "auth_token"
	KeyRememberedEmail = "remembered_email"
)

const (
	// UnauthorizedMessage replaces whatever the backend says on a 401 at login.
	UnauthorizedMessage = "Invalid email or password. This portal is for administrators only."
	ThrottledMessage    = "Too many login attempts. Please wait a minute and try again."
)

type Backend interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	Register(ctx context.Context, in backend.Record) (backend.Record, error)
	ForgotPassword(ctx context.Context, email string) error
}

type Store interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
	Reset(ctx context.Context, key string) error
}

type Session struct {
	Token string         `json:"token"`
	Email string         `json:"email"`
	User  backend.Record `json:"user,omitempty"`
}

type Service struct {
	backend Backend
	store   Store
	rl      RateLimiter
	limit   int64
}

func New(b Backend, store Store) *Service {
	return &Service{backend: b, store: store, limit: 10}
}

func (s *Service) WithRateLimiter(rl RateLimiter, perMinute int64) *Service {
	s.rl = rl
	if perMinute > 0 {
		s.limit = perMinute
	}
	return s
}

func (s *Service) Login(ctx context.Context, email, password string, remember bool) (Session, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return Session{}, err
	}
	if password == "" {
		return Session{}, apperr.Validation("Password is required")
	}

	rlKey := "rl:login:" + strings.ToLower(email)
	if s.rl != nil {
		allowed, n, err := s.rl.Allow(ctx, rlKey, s.limit, time.Minute)
		if err != nil {
			// лимитер best effort: без Redis логин всё равно работает
			slog.Warn("login rate limiter unavailable", "error", err.Error())
		} else if !allowed {
			slog.Warn("login throttled", "email", email, "count", n)
			return Session{}, apperr.Validation(ThrottledMessage)
		}
	}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			if derr := s.store.DeleteValue(ctx, KeyAuthToken); derr != nil {
				slog.Error("clear auth token", "error", derr.Error())
			}
			return Session{}, apperr.Unauthorized(UnauthorizedMessage)
		}
		return Session{}, err
	}

	if err := s.store.SetValue(ctx, KeyAuthToken, res.Token); err != nil {
		return Session{}, err
	}
	if remember {
		err = s.store.SetValue(ctx, KeyRememberedEmail, email)
	} else {
		err = s.store.DeleteValue(ctx, KeyRememberedEmail)
	}
	if err != nil {
		slog.Warn("remembered email not saved", "error", err.Error())
	}
	if s.rl != nil {
		_ = s.rl.Reset(ctx, rlKey)
	}

	slog.Info("operator logged in", "email", email)
	return Session{Token: res.Token, Email: email, User: res.User}, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.store.DeleteValue(ctx, KeyAuthToken)
}

// Token implements backend.TokenSource from the stored session.
func (s *Service) Token(ctx context.Context) (string, error) {
	v, _, err := s.store.GetValue(ctx, KeyAuthToken)
	return v, err
}

func (s *Service) RememberedEmail(ctx context.Context) (string, error) {
	v, _, err := s.store.GetValue(ctx, KeyRememberedEmail)
	return v, err
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

func (s *Service) Register(ctx context.Context, r Registration) (backend.Record, error) {
	r.Email = strings.TrimSpace(r.Email)
	if strings.TrimSpace(r.Name) == "" {
		return nil, apperr.Validation("Name is required")
	}
	if err := validateEmail(r.Email); err != nil {
		return nil, err
	}
	if len(r.Password) < 6 {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}
	in := backend.Record{"name": strings.TrimSpace(r.Name), "email": r.Email, "password": r.Password}
	if r.Phone != "" {
		in["phone"] = r.Phone
	}
	return s.backend.Register(ctx, in)
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.backend.ForgotPassword(ctx, email)
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Validation("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("Email is not valid")
	}
	return nil
}
