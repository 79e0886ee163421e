package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keebshop/internal/api"
	"keebshop/internal/domain"
	"keebshop/internal/session"
)

type memStorage struct {
	mu       sync.Mutex
	token    string
	identity []byte
	saveErr  error
	clears   int
}

func (m *memStorage) Load(context.Context) (session.Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return session.Persisted{Token: m.token, Identity: append([]byte(nil), m.identity...)}, nil
}

func (m *memStorage) Save(_ context.Context, token string, identity []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token, m.identity = token, append([]byte(nil), identity...)
	return nil
}

func (m *memStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.identity = "", nil
	m.clears++
	return nil
}

type fakeAuth struct {
	resp domain.AuthResponse
	err  error
	regs []domain.Registration
}

func (f *fakeAuth) Login(context.Context, domain.Credentials) (domain.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, reg domain.Registration) (domain.AuthResponse, error) {
	f.regs = append(f.regs, reg)
	return f.resp, f.err
}

var alice = domain.AuthResponse{Token: "jwt-alice", Type: "Bearer", ID: 1, Username: "alice", Email: "alice@keeb.test", Role: "USER"}

func TestInitRestoresValidPair(t *testing.T) {
	id := domain.Identity{ID: 4, Username: "kai", Email: "kai@keeb.test", Role: domain.RoleAdmin}
	raw, _ := json.Marshal(id)
	st := &memStorage{token: "tok", identity: raw}
	s := session.New(st, &fakeAuth{})
	require.Equal(t, session.Uninitialized, s.State())

	s.Init(context.Background())

	require.Equal(t, session.Authenticated, s.State())
	assert.Equal(t, id, *s.Identity())
	assert.Equal(t, domain.RoleAdmin, s.Role())
	assert.Zero(t, st.clears)
}

func TestInitAnonymousAndClearsHalfSessions(t *testing.T) {
	cases := map[string]*memStorage{
		"token only":    {token: "tok"},
		"identity only": {identity: []byte(`{"id":1,"username":"a"}`)},
		"garbage json":  {token: "tok", identity: []byte(`{not json`)},
	}
	for name, st := range cases {
		t.Run(name, func(t *testing.T) {
			s := session.New(st, &fakeAuth{})
			s.Init(context.Background())
			assert.Equal(t, session.Anonymous, s.State())
			assert.False(t, s.IsAuthenticated())
			assert.Empty(t, st.token)
			assert.Empty(t, st.identity)
			assert.Equal(t, 1, st.clears)
		})
	}
}

func TestInitEmptyStorageIsAnonymous(t *testing.T) {
	st := &memStorage{}
	s := session.New(st, &fakeAuth{})
	s.Init(context.Background())
	assert.Equal(t, session.Anonymous, s.State())
}

func TestLoginPersistsPairAndNotifies(t *testing.T) {
	st := &memStorage{}
	s := session.New(st, &fakeAuth{resp: alice})
	s.Init(context.Background())

	var seen []session.Snapshot
	s.OnChange(func(_ context.Context, snap session.Snapshot) { seen = append(seen, snap) })

	id, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: 1, Username: "alice", Email: "alice@keeb.test", Role: domain.RoleUser}, id)
	assert.Equal(t, "jwt-alice", st.token)

	var stored domain.Identity
	require.NoError(t, json.Unmarshal(st.identity, &stored))
	assert.Equal(t, id, stored)

	require.Len(t, seen, 1)
	assert.Equal(t, session.Authenticated, seen[0].State)

	// A fresh store over the same storage restores the same identity.
	again := session.New(st, &fakeAuth{})
	again.Init(context.Background())
	assert.Equal(t, id, *again.Identity())
}

func TestLoginFailureKeepsPriorState(t *testing.T) {
	st := &memStorage{}
	boom := errors.New("bad credentials")
	s := session.New(st, &fakeAuth{err: boom})
	s.Init(context.Background())

	_, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "nope"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, session.Anonymous, s.State())
	assert.Empty(t, st.token)
}

func TestLoginPersistFailureDoesNotAuthenticate(t *testing.T) {
	st := &memStorage{saveErr: errors.New("disk full")}
	s := session.New(st, &fakeAuth{resp: alice})
	s.Init(context.Background())
	_, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, session.Anonymous, s.State())
}

func TestRegisterEstablishesSession(t *testing.T) {
	st := &memStorage{}
	auth := &fakeAuth{resp: alice}
	s := session.New(st, auth)
	s.Init(context.Background())
	_, err := s.Register(context.Background(), domain.Registration{Username: "alice", Email: "alice@keeb.test", Password: "secret1", FirstName: "A", LastName: "L"})
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	require.Len(t, auth.regs, 1)
}

func TestLogoutClearsPair(t *testing.T) {
	st := &memStorage{}
	s := session.New(st, &fakeAuth{resp: alice})
	s.Init(context.Background())
	_, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	s.Logout(context.Background())
	assert.Equal(t, session.Anonymous, s.State())
	assert.Nil(t, s.Identity())
	assert.Empty(t, st.token)
	assert.Empty(t, st.identity)
}

func TestSupervisorInvalidatesOnSignal(t *testing.T) {
	st := &memStorage{}
	s := session.New(st, &fakeAuth{resp: alice})
	s.Init(context.Background())
	_, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	sv := session.NewSupervisor(context.Background(), s)
	sv.Handle(api.SessionInvalid{Method: "GET", Path: "/cart", Status: 401})

	assert.Equal(t, session.Anonymous, s.State())
	assert.Empty(t, st.token)
}

func TestSnapshotIsACopy(t *testing.T) {
	st := &memStorage{}
	s := session.New(st, &fakeAuth{resp: alice})
	s.Init(context.Background())
	_, _ = s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret1"})
	snap := s.Snapshot()
	snap.Identity.Role = domain.RoleAdmin
	assert.Equal(t, domain.RoleUser, s.Role())
}
