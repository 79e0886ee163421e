package session

import (
	"context"
	"fmt"

	"keebshop/internal/api"
)

// Supervisor turns the API client's session-invalid signal into a session
// transition. Navigation is left to the web layer.
type Supervisor struct {
	store *Store
	ctx   context.Context
}

func NewSupervisor(ctx context.Context, store *Store) *Supervisor {
	return &Supervisor{store: store, ctx: ctx}
}

// Watch subscribes to client signals.
func (sv *Supervisor) Watch(client *api.Client) {
	client.OnSessionInvalid(sv.Handle)
}

func (sv *Supervisor) Handle(sig api.SessionInvalid) {
	if !sv.store.IsAuthenticated() && sv.store.State().Resolved() {
		return
	}
	sv.store.Invalidate(sv.ctx, fmt.Sprintf("%s %s returned %d", sig.Method, sig.Path, sig.Status))
}
