// Package gate decides whether the current session may open a view.
package gate

import (
	"keebshop/internal/domain"
	"keebshop/internal/session"
)

type Requirement struct {
	Authenticated bool
	AdminOnly     bool
	ConsumerOnly  bool
}

var (
	Public   = Requirement{}
	SignedIn = Requirement{Authenticated: true}
	Admin    = Requirement{Authenticated: true, AdminOnly: true}
	Consumer = Requirement{Authenticated: true, ConsumerOnly: true}
)

func (r Requirement) protected() bool { return r.Authenticated || r.AdminOnly || r.ConsumerOnly }

type Decision int

const (
	Admit Decision = iota
	Wait
	RedirectLogin
	RedirectHome
	RedirectAdminDashboard
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case RedirectAdminDashboard:
		return "redirect_admin"
	}
	return "admit"
}

// Target is the path a redirect decision leads to, "" otherwise.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return "/login"
	case RedirectHome:
		return "/"
	case RedirectAdminDashboard:
		return "/admin"
	}
	return ""
}

// Decide checks loading first, then authentication, then role. Public views
// are admitted in any state.
func Decide(snap session.Snapshot, req Requirement) Decision {
	if !req.protected() {
		return Admit
	}
	if !snap.State.Resolved() {
		return Wait
	}
	if !snap.IsAuthenticated() {
		return RedirectLogin
	}
	role := snap.Role()
	switch {
	case req.AdminOnly && role != domain.RoleAdmin:
		return RedirectHome
	case req.ConsumerOnly && role == domain.RoleAdmin:
		return RedirectAdminDashboard
	}
	return Admit
}
