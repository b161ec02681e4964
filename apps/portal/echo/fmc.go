package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/upstream"
)

// fmcApi is the grading/publication subtree for faculty moderators.
type fmcApi struct {
	upstream *upstream.Client
	validate *validator.Validate
}

func registerFMCAPI(g *echo.Group, deps Deps) {
	api := fmcApi{upstream: deps.Upstream, validate: deps.Validate}

	g.GET("", api.dashboard) // landing: the moderator's faculty topics
	g.GET("/topics/:id/contributions", api.queryTopicContributions)
	g.PUT("/contributions/:id/status", api.gradeContribution)
	g.GET("/public-contributions", api.queryPublished)
	g.POST("/public-contributions", api.publish)
	g.DELETE("/public-contributions/:id", api.unpublish)
}

func (api *fmcApi) dashboard(ctx echo.Context) error {
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

func (api *fmcApi) queryTopicContributions(ctx echo.Context) error {
	contributions, err := api.upstream.ContributionsByTopic(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying topic contributions")
	}
	if contributions == nil {
		contributions = []upstream.Contribution{}
	}
	return ctx.JSON(http.StatusOK, contributions)
}

func (api *fmcApi) gradeContribution(ctx echo.Context) error {
	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	contribution, err := api.upstream.GradeContribution(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
		upstream.ContributionStatusInput{Status: data.Status, Feedback: data.Feedback},
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "grading contribution")
	}
	return ctx.JSON(http.StatusOK, contribution)
}

func (api *fmcApi) queryPublished(ctx echo.Context) error {
	published, err := api.upstream.PublicContributions(ctx.Request().Context(), currentManager(ctx).Credential())
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying public contributions")
	}
	if published == nil {
		published = []upstream.PublicContribution{}
	}
	return ctx.JSON(http.StatusOK, published)
}

func (api *fmcApi) publish(ctx echo.Context) error {
	var data PublishRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PublishRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	published, err := api.upstream.PublishContribution(
		ctx.Request().Context(), currentManager(ctx).Credential(),
		upstream.PublicContributionInput{ContributionID: data.ContributionID},
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "publishing contribution")
	}
	return ctx.JSON(http.StatusCreated, published)
}

func (api *fmcApi) unpublish(ctx echo.Context) error {
	err := api.upstream.UnpublishContribution(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "unpublishing contribution")
	}
	return ctx.NoContent(http.StatusNoContent)
}
