package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/access"
	"github.com/unipress/portal/core/session"
	"github.com/unipress/portal/upstream"
)

type authApi struct {
	upstream *upstream.Client
	validate *validator.Validate
}

func registerAuthAPI(e *echo.Echo, deps Deps) {
	api := authApi{upstream: deps.Upstream, validate: deps.Validate}

	e.POST("/login", api.login)
	e.GET("/login", api.loginPage)
	e.POST("/logout", api.logout)
	e.POST("/signup", api.signup)
	e.POST("/forgot-password", api.forgotPassword)
	e.GET("/unauthorized", api.unauthorizedPage)
	e.GET("/redirect", api.landing)
	e.GET("/me", api.me)
	e.PUT("/profile", api.updateProfile)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.upstream.Login(ctx.Request().Context(), upstream.Credentials{
		Username: data.Username,
		Password: data.Password,
	})
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case *upstream.APIError:
			if cause.StatusCode < http.StatusInternalServerError {
				return core.NewValidationError(errors.New("invalid credentials"))
			}
		default:
			if cause == upstream.ErrUnauthorized || cause == upstream.ErrNotFound {
				return core.NewValidationError(errors.New("invalid credentials"))
			}
		}
		return errors.Wrap(err, "authenticating against upstream")
	}

	if err := currentManager(ctx).Login(ctx.Request().Context(), res.User, res.Token); err != nil {
		if errors.Is(err, session.ErrCredentialExpired) || errors.Is(err, session.ErrCredentialInvalid) {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "installing session")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		User:     res.User,
		Redirect: access.Landing(&res.User),
	})
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := currentManager(ctx).Logout(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) signup(ctx echo.Context) error {
	var data SignupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignupRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.upstream.Register(ctx.Request().Context(), upstream.NewAccount{
		Username:  data.Username,
		Email:     data.Email,
		Password:  data.Password,
		FacultyID: data.FacultyID,
	})
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "registering account")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) forgotPassword(ctx echo.Context) error {
	var data ForgotPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPasswordRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.upstream.ForgotPassword(ctx.Request().Context(), data.Email); err != nil {
		// do not leak which addresses exist to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

// landing performs the one-time post-login dispatch: every role lands on its
// own subtree, anonymous visitors land back on the login page.
func (api *authApi) landing(ctx echo.Context) error {
	return ctx.Redirect(http.StatusFound, access.Landing(currentIdentity(ctx)))
}

func (api *authApi) me(ctx echo.Context) error {
	m := currentManager(ctx)
	if _, ok := m.Current(); !ok {
		return errUnauthorized
	}

	usr, err := api.upstream.Me(ctx.Request().Context(), m.Credential())
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "fetching profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) updateProfile(ctx echo.Context) error {
	m := currentManager(ctx)
	identity, ok := m.Current()
	if !ok {
		return errUnauthorized
	}

	req := ctx.Request()
	usr, err := api.upstream.UpdateUser(
		req.Context(), m.Credential(), identity.ID,
		req.Header.Get(echo.HeaderContentType), req.Body,
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) loginPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "login"})
}

func (api *authApi) unauthorizedPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "unauthorized"})
}
