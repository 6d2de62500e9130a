package auth

import (
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// claims are the custom fields the API embeds in access tokens.
type claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserFromToken decodes the current-user snapshot from an access token's
// claims. The token is not signature-verified here: the client has no signing
// key, and the snapshot is display-only. The server re-checks authorization
// on every request.
func UserFromToken(access string) (models.User, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &c); err != nil {
		return models.User{}, fmt.Errorf("decode access token: %w", err)
	}
	return models.User{
		UserID:    c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      models.Role(c.Role),
	}, nil
}

// Session is the process-wide authenticated state: the credential store plus
// a snapshot of the logged-in user. It is safe for concurrent use.
type Session struct {
	store CredentialStore

	mu   sync.RWMutex
	user *models.User
}

// NewSession wraps a credential store. The user snapshot starts empty; call
// Rehydrate to recover it from persisted credentials.
func NewSession(store CredentialStore) *Session {
	return &Session{store: store}
}

// Store exposes the underlying credential store.
func (s *Session) Store() CredentialStore { return s.store }

// Establish persists a freshly issued credential pair and sets the user
// snapshot. Used after login and after a successful refresh.
func (s *Session) Establish(access, refresh string, user models.User) error {
	if err := s.store.Set(access, refresh); err != nil {
		return err
	}
	s.mu.Lock()
	u := user
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Rehydrate rebuilds the user snapshot from a persisted access token, if one
// exists. Returns false when there is nothing to rehydrate from.
func (s *Session) Rehydrate() bool {
	access := s.store.Access()
	if access == "" {
		return false
	}
	user, err := UserFromToken(access)
	if err != nil {
		return false
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return true
}

// CurrentUser returns the user snapshot, if the session is established.
func (s *Session) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Clear deauthenticates the session: both credentials and the user snapshot
// are dropped.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Session) setUser(user models.User) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.mu.Unlock()
}
