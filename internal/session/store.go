// Package session owns the single source of truth for who the current user
// is. A Store is constructed explicitly and injected into its consumers.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"keebshop/internal/domain"
	applog "keebshop/internal/log"
)

type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "uninitialized"
}

// Resolved reports whether the state is past loading.
func (s State) Resolved() bool { return s == Authenticated || s == Anonymous }

// Persisted is the raw content of the two storage slots. Identity holds the
// serialized identity exactly as stored.
type Persisted struct {
	Token    string
	Identity []byte
}

type Storage interface {
	Load(ctx context.Context) (Persisted, error)
	Save(ctx context.Context, token string, identity []byte) error
	Clear(ctx context.Context) error
}

type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error)
	Register(ctx context.Context, reg domain.Registration) (domain.AuthResponse, error)
}

type Snapshot struct {
	State    State
	Identity *domain.Identity
}

func (s Snapshot) IsAuthenticated() bool { return s.Identity != nil }

func (s Snapshot) Role() domain.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

type Store struct {
	storage Storage
	auth    Authenticator

	mu        sync.RWMutex
	state     State
	identity  *domain.Identity
	listeners []func(context.Context, Snapshot)
}

func New(storage Storage, auth Authenticator) *Store {
	return &Store{storage: storage, auth: auth}
}

// OnChange registers fn to run after every authentication transition.
func (s *Store) OnChange(fn func(context.Context, Snapshot)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

func (s *Store) State() State               { return s.Snapshot().State }
func (s *Store) Identity() *domain.Identity { return s.Snapshot().Identity }
func (s *Store) IsAuthenticated() bool      { return s.Snapshot().IsAuthenticated() }
func (s *Store) Role() domain.Role          { return s.Snapshot().Role() }

// Init restores a persisted session. A missing slot or an unparseable
// identity resolves to Anonymous with both slots cleared.
func (s *Store) Init(ctx context.Context) {
	s.mu.Lock()
	s.state = Loading
	s.mu.Unlock()

	id, ok := s.restore(ctx)
	if ok {
		s.transition(ctx, Authenticated, &id)
		applog.Info(nil, "session.restore", map[string]any{"user_id": id.ID, "role": id.Role})
		return
	}
	s.transition(ctx, Anonymous, nil)
}

func (s *Store) restore(ctx context.Context) (domain.Identity, bool) {
	p, err := s.storage.Load(ctx)
	if err != nil {
		applog.Error(nil, "session.restore.fail", err, nil)
		s.clear(ctx)
		return domain.Identity{}, false
	}
	if p.Token == "" && len(p.Identity) == 0 {
		return domain.Identity{}, false
	}
	if p.Token == "" || len(p.Identity) == 0 {
		applog.Security(nil, "session.restore.partial", nil)
		s.clear(ctx)
		return domain.Identity{}, false
	}
	var id domain.Identity
	if err := json.Unmarshal(p.Identity, &id); err != nil || id.Username == "" {
		applog.Security(nil, "session.restore.corrupt", nil)
		s.clear(ctx)
		return domain.Identity{}, false
	}
	return id, true
}

func (s *Store) Login(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return domain.Identity{}, err
	}
	return s.establish(ctx, resp)
}

func (s *Store) Register(ctx context.Context, reg domain.Registration) (domain.Identity, error) {
	resp, err := s.auth.Register(ctx, reg)
	if err != nil {
		return domain.Identity{}, err
	}
	return s.establish(ctx, resp)
}

func (s *Store) establish(ctx context.Context, resp domain.AuthResponse) (domain.Identity, error) {
	if resp.Token == "" {
		return domain.Identity{}, fmt.Errorf("auth response carried no token")
	}
	id := resp.Identity()
	raw, err := json.Marshal(id)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("encode identity: %w", err)
	}
	if err := s.storage.Save(ctx, resp.Token, raw); err != nil {
		return domain.Identity{}, fmt.Errorf("persist session: %w", err)
	}
	s.transition(ctx, Authenticated, &id)
	return id, nil
}

// Logout never calls the backend and always succeeds locally.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)
	s.transition(ctx, Anonymous, nil)
}

// Invalidate drops the session after the backend rejected the token.
func (s *Store) Invalidate(ctx context.Context, reason string) {
	applog.Security(nil, "session.invalidated", map[string]any{"reason": reason})
	s.Logout(ctx)
}

func (s *Store) clear(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		applog.Error(nil, "session.clear.fail", err, nil)
	}
}

func (s *Store) transition(ctx context.Context, st State, id *domain.Identity) {
	s.mu.Lock()
	s.state = st
	s.identity = id
	snap := s.snapshotLocked()
	ls := append(([]func(context.Context, Snapshot))(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range ls {
		fn(ctx, snap)
	}
}
