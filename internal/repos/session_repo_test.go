package repos_test

import (
	"context"
	"encoding/json"
	"testing"

	"keebshop/internal/domain"
	"keebshop/internal/repos"
	"keebshop/internal/session"
)

type noAuth struct{}

func (noAuth) Login(context.Context, domain.Credentials) (domain.AuthResponse, error) {
	return domain.AuthResponse{}, nil
}

func (noAuth) Register(context.Context, domain.Registration) (domain.AuthResponse, error) {
	return domain.AuthResponse{}, nil
}

func memRepo(t *testing.T, secret string) *repos.SessionRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewSessionRepo(db, repos.NewSealer(secret))
}

func TestSessionPairRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, secret := range []string{"", "s3cr3t"} {
		repo := memRepo(t, secret)
		id := domain.Identity{ID: 9, Username: "mira", Email: "mira@keeb.test", Role: domain.RoleUser}
		raw, _ := json.Marshal(id)
		if err := repo.Save(ctx, "jwt-mira", raw); err != nil {
			t.Fatal(err)
		}
		if got := repo.Token(ctx); got != "jwt-mira" {
			t.Fatalf("secret=%q token=%q", secret, got)
		}

		s := session.New(repo, noAuth{})
		s.Init(ctx)
		if s.State() != session.Authenticated || *s.Identity() != id {
			t.Fatalf("secret=%q restore failed: %v %+v", secret, s.State(), s.Identity())
		}
	}
}

func TestSealedTokenNotStoredInPlaintext(t *testing.T) {
	ctx := context.Background()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	repo := repos.NewSessionRepo(db, repos.NewSealer("s3cr3t"))
	if err := repo.Save(ctx, "jwt-plain", []byte(`{"id":1,"username":"a"}`)); err != nil {
		t.Fatal(err)
	}
	var stored string
	if err := db.Get(&stored, `SELECT value FROM session_slots WHERE slot='token'`); err != nil {
		t.Fatal(err)
	}
	if stored == "jwt-plain" {
		t.Fatal("token stored in plaintext")
	}

	// A different secret cannot open it: the token slot reads as missing and
	// the store clears the half session.
	other := repos.NewSessionRepo(db, repos.NewSealer("other"))
	s := session.New(other, noAuth{})
	s.Init(ctx)
	if s.State() != session.Anonymous {
		t.Fatalf("want anonymous, got %v", s.State())
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM session_slots`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("slots not cleared, %d left", n)
	}
}

func TestCorruptIdentityClearsBothSlots(t *testing.T) {
	ctx := context.Background()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`INSERT INTO session_slots(slot, value) VALUES ('token','tok'), ('user','{oops')`)
	repo := repos.NewSessionRepo(db, repos.NewSealer(""))

	s := session.New(repo, noAuth{})
	s.Init(ctx)
	if s.State() != session.Anonymous {
		t.Fatalf("want anonymous, got %v", s.State())
	}
	if tok := repo.Token(ctx); tok != "" {
		t.Fatalf("token survived: %q", tok)
	}
}

func TestTokenWithheldWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`INSERT INTO session_slots(slot, value) VALUES ('token','tok')`)
	if tok := repos.NewSessionRepo(db, repos.Sealer{}).Token(ctx); tok != "" {
		t.Fatalf("half session leaked token %q", tok)
	}
}

func TestSaveRejectsHalfPair(t *testing.T) {
	repo := memRepo(t, "")
	if err := repo.Save(context.Background(), "tok", nil); err == nil {
		t.Fatal("expected error for missing identity")
	}
}
