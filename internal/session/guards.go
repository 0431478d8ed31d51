// AngelaMos | 2026
// guards.go

package session

// Navigation targets the guards redirect to.
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathAdmin     = "/admin"
)

// Decision is a guard verdict: render the requested page, redirect elsewhere,
// or wait because the session has not finished initializing. Callers are
// expected to show a loading placeholder instead of evaluating guards before
// initialization; Wait makes that misuse detectable rather than letting a
// not-yet-loaded session be misclassified as logged out.
type Decision struct {
	Allow      bool
	Wait       bool
	RedirectTo string
}

// GuardAuthPages keeps authenticated users away from login/signup pages:
// admins land on the admin console, everyone else on the dashboard.
func GuardAuthPages(snap Snapshot) Decision {
	if !snap.Initialized {
		return Decision{Wait: true}
	}

	if !snap.Authenticated {
		return Decision{Allow: true}
	}

	if snap.User != nil && snap.User.IsAdmin() {
		return Decision{RedirectTo: PathAdmin}
	}
	return Decision{RedirectTo: PathDashboard}
}

// GuardProtectedPages sends unauthenticated visitors to the login entry point.
func GuardProtectedPages(snap Snapshot) Decision {
	if !snap.Initialized {
		return Decision{Wait: true}
	}

	if !snap.Authenticated {
		return Decision{RedirectTo: PathLogin}
	}
	return Decision{Allow: true}
}
