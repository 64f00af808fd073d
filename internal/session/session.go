// Package session holds the dashboard's authentication token and the
// identity it belongs to.
package session

import (
	"context"
	"sort"
	"sync"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/logger"

	"github.com/sirupsen/logrus"
)

// TokenKey is the storage key the token is persisted under.
const TokenKey = "token"

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds client.Credentials) (*client.LoginResult, error)
}

// IdentitySource fetches the identity behind the current token.
type IdentitySource interface {
	GetUserInfo(ctx context.Context) (*client.User, error)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage failures.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log.WithComponent("session") }
}

// Store holds the token and the cached user. It is safe for concurrent use.
type Store struct {
	storage Storage
	log     *logrus.Entry

	mu        sync.RWMutex
	token     string
	user      *client.User
	listeners map[int]func(*client.User)
	nextID    int
}

// New returns a Store hydrated with any token persisted in storage. The
// user is unknown until Login or Refresh.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		log:       logger.Discard().WithComponent("session"),
		listeners: make(map[int]func(*client.User)),
	}
	for _, opt := range opts {
		opt(s)
	}
	token, err := storage.Load(TokenKey)
	if err != nil {
		s.log.WithError(err).Warn("failed to load persisted token")
	}
	s.token = token
	return s
}

// Login authenticates through auth. On failure nothing is persisted and the
// store keeps its previous state.
func (s *Store) Login(ctx context.Context, auth Authenticator, creds client.Credentials) (*client.LoginResult, error) {
	if err := client.Validate(creds); err != nil {
		return nil, err
	}
	res, err := auth.Login(ctx, creds)
	if err != nil {
		if apperrors.IsNetwork(err) || apperrors.IsAuth(err) || apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, apperrors.Auth("%s", apperrors.MessageOf(err))
	}
	if res == nil || res.Token == "" {
		return nil, apperrors.Auth("login failed")
	}
	if err := s.storage.Save(TokenKey, res.Token); err != nil {
		return nil, apperrors.Internal("failed to persist session", err)
	}

	s.mu.Lock()
	s.token = res.Token
	s.user = copyUser(res.User)
	s.mu.Unlock()

	s.NotifyIdentityChanged()
	return res, nil
}

// Logout forgets the token and the user. It always succeeds; storage
// failures are logged.
func (s *Store) Logout() {
	if err := s.storage.Delete(TokenKey); err != nil {
		s.log.WithError(err).Warn("failed to delete persisted token")
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.NotifyIdentityChanged()
}

// Refresh re-fetches the identity behind the token. An auth failure means
// the token is no longer valid and logs the store out.
func (s *Store) Refresh(ctx context.Context, src IdentitySource) error {
	if !s.IsAuthenticated() {
		return apperrors.Auth("not logged in")
	}
	user, err := src.GetUserInfo(ctx)
	if err != nil {
		if apperrors.IsAuth(err) {
			s.Logout()
		}
		return err
	}

	s.mu.Lock()
	s.user = copyUser(user)
	s.mu.Unlock()

	s.NotifyIdentityChanged()
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// CurrentUser returns a copy of the cached user, or nil.
func (s *Store) CurrentUser() *client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// OnIdentityChanged registers fn to be called after every identity change.
// The returned func unregisters it.
func (s *Store) OnIdentityChanged(fn func(*client.User)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// NotifyIdentityChanged calls every registered listener once with the
// current user. Listeners run on the caller's goroutine without the lock
// held, in registration order.
func (s *Store) NotifyIdentityChanged() {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*client.User), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	user := s.user
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(copyUser(user))
	}
}

func copyUser(u *client.User) *client.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
