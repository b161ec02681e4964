package echoapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/core/access"
	"github.com/unipress/portal/core/session"
	"github.com/unipress/portal/upstream"
)

var contextManagerKey = "sessionManager"

// sessionMiddleware resolves the request's session Manager from the sealed
// browser cookie, minting a fresh session id when none (or a tampered one)
// is presented, and restores persisted state the first time a manager is
// seen after a gateway restart.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		name := s.deps.Conf.Session.CookieName

		var sid string
		if cookie, err := ctx.Cookie(name); err == nil {
			if err := s.sealer.Decode(name, cookie.Value, &sid); err != nil {
				sid = ""
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			sealed, err := s.sealer.Encode(name, sid)
			if err != nil {
				return errors.Wrap(err, "sealing session cookie")
			}
			// no Max-Age: the cookie lives for the browsing session only
			ctx.SetCookie(&http.Cookie{
				Name:     name,
				Value:    sealed,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		m := s.deps.Sessions.Manager(sid)
		if err := m.Restore(ctx.Request().Context()); err != nil {
			return errors.Wrap(err, "restoring session")
		}
		ctx.Set(contextManagerKey, m)
		return next(ctx)
	}
}

func currentManager(ctx echo.Context) *session.Manager {
	m, _ := ctx.Get(contextManagerKey).(*session.Manager)
	return m
}

func currentIdentity(ctx echo.Context) *session.Identity {
	if m := currentManager(ctx); m != nil {
		if identity, ok := m.Current(); ok {
			return &identity
		}
	}
	return nil
}

// gate guards a navigation subtree: anonymous visitors are redirected to the
// login page, authenticated ones with the wrong role to the unauthorized
// page. Re-evaluated on every request, so a logout (or auto-expiry) takes
// effect on the next navigation.
func (s *server) gate(allowed ...session.RoleID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			decision := access.Authorize(currentIdentity(ctx), allowed...)
			if decision == access.Grant {
				return next(ctx)
			}
			return ctx.Redirect(http.StatusFound, decision.Route())
		}
	}
}

// mapUpstreamError translates upstream client failures on proxied calls.
// A credential rejection means the session is no longer valid anywhere:
// the local session is torn down before reporting 401.
func mapUpstreamError(ctx echo.Context, err error) error {
	switch errors.Cause(err) {
	case upstream.ErrUnauthorized:
		if m := currentManager(ctx); m != nil {
			_ = m.Logout(ctx.Request().Context())
		}
		return errUnauthorized
	case upstream.ErrForbidden:
		return errHttpForbidden
	case upstream.ErrNotFound:
		return errHttpNotFound
	}
	return err
}
