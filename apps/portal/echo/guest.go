package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/upstream"
)

// guestApi is the read-only subtree for guests: published contributions only.
type guestApi struct {
	upstream *upstream.Client
}

func registerGuestAPI(g *echo.Group, deps Deps) {
	api := guestApi{upstream: deps.Upstream}

	g.GET("", api.dashboard) // landing: published contributions
	g.GET("/contributions/:id", api.retrieve)
}

func (api *guestApi) dashboard(ctx echo.Context) error {
	published, err := api.upstream.PublicContributions(ctx.Request().Context(), currentManager(ctx).Credential())
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying public contributions")
	}
	if published == nil {
		published = []upstream.PublicContribution{}
	}
	return ctx.JSON(http.StatusOK, published)
}

func (api *guestApi) retrieve(ctx echo.Context) error {
	published, err := api.upstream.PublicContribution(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "retrieving public contribution")
	}
	return ctx.JSON(http.StatusOK, published)
}
