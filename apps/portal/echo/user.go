package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/core/session"
	"github.com/unipress/portal/upstream"
)

// adminApi is the user-management subtree, reserved for the Admin role.
type adminApi struct {
	upstream *upstream.Client
}

func registerAdminAPI(g *echo.Group, deps Deps) {
	api := adminApi{upstream: deps.Upstream}

	g.GET("", api.queryUsers) // landing: user management
	g.GET("/users", api.queryUsers)
	g.POST("/users", api.createUser)
	g.PUT("/users/:id", api.updateUser)
	g.DELETE("/users/:id", api.destroyUser)
	g.GET("/roles", api.queryRoles)
}

func (api *adminApi) queryUsers(ctx echo.Context) error {
	users, err := api.upstream.Users(ctx.Request().Context(), currentManager(ctx).Credential())
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying users")
	}
	if users == nil {
		users = []session.Identity{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *adminApi) createUser(ctx echo.Context) error {
	req := ctx.Request()
	usr, err := api.upstream.CreateUser(
		req.Context(), currentManager(ctx).Credential(),
		req.Header.Get(echo.HeaderContentType), req.Body,
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *adminApi) updateUser(ctx echo.Context) error {
	req := ctx.Request()
	usr, err := api.upstream.UpdateUser(
		req.Context(), currentManager(ctx).Credential(), ctx.Param("id"),
		req.Header.Get(echo.HeaderContentType), req.Body,
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *adminApi) destroyUser(ctx echo.Context) error {
	// Say No to Suicide! the admin cannot delete themselves
	if identity := currentIdentity(ctx); identity != nil && identity.ID == ctx.Param("id") {
		return errHttpForbidden
	}

	err := api.upstream.DeleteUser(ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) queryRoles(ctx echo.Context) error {
	roles, err := api.upstream.Roles(ctx.Request().Context(), currentManager(ctx).Credential())
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying roles")
	}
	return ctx.JSON(http.StatusOK, roles)
}
