// Package access decides, per navigation subtree, whether the current
// identity may see it, and where a freshly authenticated identity lands.
// Both decisions are total: every input maps to a grant or a redirect,
// never an error.
package access

import "github.com/unipress/portal/core/session"

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Grant renders the requested subtree.
	Grant Decision = iota
	// RedirectLogin sends an anonymous visitor to the authentication page.
	RedirectLogin
	// RedirectDenied sends an authenticated but unauthorized visitor to the
	// unauthorized page.
	RedirectDenied
)

// Shared fallback routes.
const (
	LoginRoute  = "/login"
	DeniedRoute = "/unauthorized"
)

var landingRoutes = map[session.RoleID]string{
	session.RoleAdmin:   "/admin",
	session.RoleUMM:     "/umm",
	session.RoleFMC:     "/fmc",
	session.RoleStudent: "/student",
	session.RoleGuest:   "/guest",
}

// Authorize gates a navigation subtree declared to allow the given roles.
func Authorize(identity *session.Identity, allowed ...session.RoleID) Decision {
	if identity == nil {
		return RedirectLogin
	}
	for _, role := range allowed {
		if identity.RoleID == role {
			return Grant
		}
	}
	return RedirectDenied
}

// Landing maps an identity's role to its default landing route. An anonymous
// identity lands on the login page; an unknown role on the unauthorized page.
func Landing(identity *session.Identity) string {
	if identity == nil {
		return LoginRoute
	}
	if route, ok := landingRoutes[identity.RoleID]; ok {
		return route
	}
	return DeniedRoute
}

// Route translates a Decision into its redirect target; Grant has none.
func (d Decision) Route() string {
	switch d {
	case RedirectLogin:
		return LoginRoute
	case RedirectDenied:
		return DeniedRoute
	default:
		return ""
	}
}
