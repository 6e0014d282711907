package service

import (
	"context"
	"errors"
	"sync"

	"github.com/likbrus/likbrus.github.io/internal/model"
)

// AuthState is the tri-state seen by a client before and after its
// session is resolved.
type AuthState int

const (
	StateUnknown AuthState = iota
	StateAnonymous
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Page paths the gate knows about.
const (
	PageLogin     = "/login"
	PageDashboard = "/dashboard"
	PageAdmin     = "/admin"
	PageReset     = "/reset"
)

var privilegedPages = map[string]bool{PageAdmin: true, PageReset: true}

// IdentityResolver is satisfied by AuthService.
type IdentityResolver interface {
	Resolve(ctx context.Context, accessToken string) (*Identity, error)
}

// Gate follows one client's session. It starts Unknown, settles on
// Anonymous or Authenticated once resolved, and moves again on sign-in,
// refresh and sign-out events for the same session.
type Gate struct {
	mu       sync.RWMutex
	resolver IdentityResolver
	state    AuthState
	identity *Identity
	token    string
}

func NewGate(resolver IdentityResolver) *Gate {
	return &Gate{resolver: resolver}
}

// Resolve settles the state from an access token. Backend failures other
// than an invalid or expired session are returned and leave the state as
// it was.
func (g *Gate) Resolve(ctx context.Context, accessToken string) (AuthState, error) {
	id, err := g.resolver.Resolve(ctx, accessToken)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = accessToken
	switch {
	case err == nil:
		g.state, g.identity = StateAuthenticated, id
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrSessionExpired):
		g.state, g.identity = StateAnonymous, nil
	default:
		return g.state, err
	}
	return g.state, nil
}

// Apply handles an auth event from the change feed. Events for other
// sessions are ignored. A refresh re-derives privilege.
func (g *Gate) Apply(ctx context.Context, ev model.ChangeEvent) AuthState {
	if ev.Table != model.TableAuth {
		return g.State()
	}
	g.mu.RLock()
	mine := g.identity != nil && g.identity.SessionID.String() == ev.SessionID
	token := g.token
	g.mu.RUnlock()
	if !mine {
		return g.State()
	}

	switch ev.Op {
	case model.OpSignedOut:
		g.mu.Lock()
		g.state, g.identity = StateAnonymous, nil
		g.mu.Unlock()
	case model.OpTokenRefreshed, model.OpSignedIn:
		if _, err := g.Resolve(ctx, token); err != nil {
			return g.State()
		}
	}
	return g.State()
}

func (g *Gate) State() AuthState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Identity() *Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity
}

// Redirect returns where a request for page must go instead, or "" when
// the page may be shown. While the state is Unknown nothing is decided.
func (g *Gate) Redirect(page string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch g.state {
	case StateAnonymous:
		if page != PageLogin {
			return PageLogin
		}
	case StateAuthenticated:
		if privilegedPages[page] && !g.identity.Privileged {
			return PageDashboard
		}
	}
	return ""
}
