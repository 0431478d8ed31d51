// AngelaMos | 2026
// guards_test.go

package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/session"
	"github.com/angelamos/coursegate/internal/tier"
)

func TestGuardProtectedPagesRedirectsAnonymousToLogin(t *testing.T) {
	decision := session.GuardProtectedPages(session.Snapshot{
		Initialized:   true,
		Authenticated: false,
	})

	require.False(t, decision.Allow)
	require.Equal(t, session.PathLogin, decision.RedirectTo)
}

func TestGuardProtectedPagesAllowsAuthenticated(t *testing.T) {
	decision := session.GuardProtectedPages(session.Snapshot{
		Initialized:   true,
		Authenticated: true,
		User:          &session.User{Role: session.RoleUser, Tier: tier.Free},
	})

	require.True(t, decision.Allow)
	require.Empty(t, decision.RedirectTo)
}

func TestGuardAuthPagesRedirectsAdminToAdminConsole(t *testing.T) {
	decision := session.GuardAuthPages(session.Snapshot{
		Initialized:   true,
		Authenticated: true,
		User:          &session.User{Role: session.RoleAdmin, Tier: tier.Tier2},
	})

	require.Equal(t, session.PathAdmin, decision.RedirectTo)
}

func TestGuardAuthPagesRedirectsUserToDashboard(t *testing.T) {
	decision := session.GuardAuthPages(session.Snapshot{
		Initialized:   true,
		Authenticated: true,
		User:          &session.User{Role: session.RoleUser, Tier: tier.Tier1},
	})

	require.Equal(t, session.PathDashboard, decision.RedirectTo)
}

func TestGuardAuthPagesAllowsAnonymous(t *testing.T) {
	decision := session.GuardAuthPages(session.Snapshot{
		Initialized: true,
	})

	require.True(t, decision.Allow)
}

func TestGuardsWaitBeforeInitialization(t *testing.T) {
	uninitialized := session.Snapshot{}

	require.True(t, session.GuardAuthPages(uninitialized).Wait)
	require.True(t, session.GuardProtectedPages(uninitialized).Wait)
}
