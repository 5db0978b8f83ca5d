package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/pkg/logger"
)

// API is the slice of the REST client the session needs.
type API interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	GetUserByWorldID(ctx context.Context, worldID string) (*domain.User, error)
	SetToken(token string)
}

// Session holds the authenticated identity for the component tree's
// lifetime. Nothing is persisted: closing the app logs the user out.
type Session struct {
	api API

	mu     sync.RWMutex
	user   *domain.User
	token  string
	expiry time.Time

	log zerolog.Logger
}

// NewSession creates an unauthenticated session.
func NewSession(api API) *Session {
	return &Session{api: api, log: logger.WithComponent("auth")}
}

// Login exchanges the wallet identity for a session. The returned
// bearer token is installed on the REST client and its expiry is read
// (unverified; the signature belongs to the backend) so the client can
// re-login proactively instead of collecting 401s.
func (s *Session) Login(ctx context.Context, worldID, walletAddress string) (*domain.User, error) {
	resp, err := s.api.Login(ctx, domain.LoginRequest{
		WorldID:       worldID,
		WalletAddress: walletAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	log := logger.WithWorldID(resp.User.WorldID)

	s.mu.Lock()
	s.user = &resp.User
	s.token = resp.Token
	s.expiry = tokenExpiry(resp.Token)
	s.log = log
	s.mu.Unlock()

	s.api.SetToken(resp.Token)
	log.Info().Msg("logged in")
	return &resp.User, nil
}

// tokenExpiry reads the exp claim without verifying the signature.
// A token we cannot parse simply has no known expiry.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Refresh re-fetches the current user's profile.
func (s *Session) Refresh(ctx context.Context) error {
	worldID, err := s.RequireWorldID()
	if err != nil {
		return err
	}
	user, err := s.api.GetUserByWorldID(ctx, worldID)
	if err != nil {
		return fmt.Errorf("refresh user: %w", err)
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether a user is logged in with an
// unexpired token.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	if !s.expiry.IsZero() && time.Now().After(s.expiry) {
		return false
	}
	return true
}

// User returns the logged-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// RequireWorldID returns the stable reactor identity, or
// ErrNotAuthenticated when there is none. Authentication-gated actions
// call this first so the caller can show its login prompt.
func (s *Session) RequireWorldID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.WorldID == "" {
		return "", common.ErrNotAuthenticated
	}
	if !s.expiry.IsZero() && time.Now().After(s.expiry) {
		return "", common.ErrNotAuthenticated
	}
	return s.user.WorldID, nil
}

// Logout drops the in-memory session.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.expiry = time.Time{}
	s.log = logger.WithComponent("auth")
	s.mu.Unlock()
	s.api.SetToken("")
}
