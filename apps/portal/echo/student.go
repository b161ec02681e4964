package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/upstream"
)

// studentApi is the coursework-submission subtree for students.
type studentApi struct {
	upstream *upstream.Client
}

func registerStudentAPI(g *echo.Group, deps Deps) {
	api := studentApi{upstream: deps.Upstream}

	g.GET("", api.dashboard) // landing: open topics in the student's faculty
	g.GET("/topics/:id", api.retrieveTopic)
	g.GET("/topics/:id/contributions", api.myContributions)
	g.POST("/contributions", api.createContribution)
	g.PUT("/contributions/:id", api.updateContribution)
	g.DELETE("/contributions/:id", api.destroyContribution)
}

func (api *studentApi) dashboard(ctx echo.Context) error {
	identity := currentIdentity(ctx)

	topics, err := api.upstream.TopicsByFaculty(
		ctx.Request().Context(), currentManager(ctx).Credential(), identity.FacultyID,
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying faculty topics")
	}
	if topics == nil {
		topics = []upstream.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *studentApi) retrieveTopic(ctx echo.Context) error {
	topic, err := api.upstream.Topic(ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "retrieving topic")
	}
	return ctx.JSON(http.StatusOK, topic)
}

// myContributions lists only the requesting student's submissions in a topic.
func (api *studentApi) myContributions(ctx echo.Context) error {
	identity := currentIdentity(ctx)

	contributions, err := api.upstream.StudentContributions(
		ctx.Request().Context(), currentManager(ctx).Credential(),
		identity.ID, identity.FacultyID, ctx.Param("id"),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying student contributions")
	}
	if contributions == nil {
		contributions = []upstream.Contribution{}
	}
	return ctx.JSON(http.StatusOK, contributions)
}

func (api *studentApi) createContribution(ctx echo.Context) error {
	req := ctx.Request()
	contribution, err := api.upstream.CreateContribution(
		req.Context(), currentManager(ctx).Credential(),
		req.Header.Get(echo.HeaderContentType), req.Body,
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "creating contribution")
	}
	return ctx.JSON(http.StatusCreated, contribution)
}

func (api *studentApi) updateContribution(ctx echo.Context) error {
	req := ctx.Request()
	contribution, err := api.upstream.UpdateContribution(
		req.Context(), currentManager(ctx).Credential(), ctx.Param("id"),
		req.Header.Get(echo.HeaderContentType), req.Body,
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "updating contribution")
	}
	return ctx.JSON(http.StatusOK, contribution)
}

func (api *studentApi) destroyContribution(ctx echo.Context) error {
	err := api.upstream.DeleteContribution(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "deleting contribution")
	}
	return ctx.NoContent(http.StatusNoContent)
}
