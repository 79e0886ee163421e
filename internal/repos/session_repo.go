package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"keebshop/internal/session"
)

const (
	slotToken = "token"
	slotUser  = "user"
)

// SessionRepo persists the session pair in sqlite. It also serves as the API
// client's token source.
type SessionRepo struct {
	db     *sqlx.DB
	sealer Sealer
}

func NewSessionRepo(db *sqlx.DB, sealer Sealer) *SessionRepo {
	return &SessionRepo{db: db, sealer: sealer}
}

type slotRow struct {
	Slot  string `db:"slot"`
	Value string `db:"value"`
}

// Load returns whatever slots exist; an unopenable token is reported as absent.
func (r *SessionRepo) Load(ctx context.Context) (session.Persisted, error) {
	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT slot, value FROM session_slots`); err != nil {
		return session.Persisted{}, err
	}
	var p session.Persisted
	for _, row := range rows {
		switch row.Slot {
		case slotToken:
			if tok, err := r.sealer.Open(row.Value); err == nil {
				p.Token = tok
			}
		case slotUser:
			p.Identity = []byte(row.Value)
		}
	}
	return p, nil
}

func (r *SessionRepo) Save(ctx context.Context, token string, identity []byte) error {
	if token == "" || len(identity) == 0 {
		return errors.New("session pair requires token and identity")
	}
	sealed, err := r.sealer.Seal(token)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO session_slots(slot, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, upsert, slotToken, sealed); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsert, slotUser, string(identity)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_slots WHERE slot IN ('token','user')`)
	return err
}

// Token implements api.TokenSource. The token is only handed out while the
// identity slot is also present.
func (r *SessionRepo) Token(ctx context.Context) string {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM session_slots WHERE slot = 'user'`); err != nil || n == 0 {
		return ""
	}
	var stored string
	err := r.db.GetContext(ctx, &stored, `SELECT value FROM session_slots WHERE slot = 'token'`)
	if err != nil {
		return ""
	}
	tok, err := r.sealer.Open(stored)
	if err != nil {
		return ""
	}
	return tok
}
