package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipress/portal/upstream"
)

// ummApi is the faculty/topic management subtree for the unit manager role.
type ummApi struct {
	upstream *upstream.Client
	validate *validator.Validate
}

func registerUMMAPI(g *echo.Group, deps Deps) {
	api := ummApi{upstream: deps.Upstream, validate: deps.Validate}

	g.GET("", api.queryFaculties) // landing: faculties management
	g.GET("/faculties", api.queryFaculties)
	g.POST("/faculties", api.createFaculty)
	g.GET("/faculties/:id", api.retrieveFaculty)
	g.PUT("/faculties/:id", api.updateFaculty)
	g.DELETE("/faculties/:id", api.destroyFaculty)
	g.GET("/faculties/:id/topics", api.queryFacultyTopics)

	g.POST("/topics", api.createTopic)
	g.PUT("/topics/:id", api.updateTopic)
	g.DELETE("/topics/:id", api.destroyTopic)
	g.GET("/topics/:id/contributions", api.queryTopicContributions)
}

func (api *ummApi) queryFaculties(ctx echo.Context) error {
	faculties, err := api.upstream.Faculties(ctx.Request().Context(), currentManager(ctx).Credential())
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying faculties")
	}
	if faculties == nil {
		faculties = []upstream.Faculty{}
	}
	return ctx.JSON(http.StatusOK, faculties)
}

func (api *ummApi) retrieveFaculty(ctx echo.Context) error {
	faculty, err := api.upstream.Faculty(ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "retrieving faculty")
	}
	return ctx.JSON(http.StatusOK, faculty)
}

func (api *ummApi) createFaculty(ctx echo.Context) error {
	var data FacultyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FacultyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	faculty, err := api.upstream.CreateFaculty(
		ctx.Request().Context(), currentManager(ctx).Credential(),
		upstream.FacultyInput{FacultyName: data.FacultyName},
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "creating faculty")
	}
	return ctx.JSON(http.StatusCreated, faculty)
}

func (api *ummApi) updateFaculty(ctx echo.Context) error {
	var data FacultyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FacultyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	faculty, err := api.upstream.UpdateFaculty(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
		upstream.FacultyInput{FacultyName: data.FacultyName},
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "updating faculty")
	}
	return ctx.JSON(http.StatusOK, faculty)
}

func (api *ummApi) destroyFaculty(ctx echo.Context) error {
	err := api.upstream.DeleteFaculty(ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "deleting faculty")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ummApi) queryFacultyTopics(ctx echo.Context) error {
	topics, err := api.upstream.TopicsByFaculty(ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "querying faculty topics")
	}
	if topics == nil {
		topics = []upstream.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *ummApi) createTopic(ctx echo.Context) error {
	var data TopicRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TopicRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	topic, err := api.upstream.CreateTopic(
		ctx.Request().Context(), currentManager(ctx).Credential(),
		topicInput(data),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "creating topic")
	}
	return ctx.JSON(http.StatusCreated, topic)
}

func (api *ummApi) updateTopic(ctx echo.Context) error {
	var data TopicRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TopicRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	topic, err := api.upstream.UpdateTopic(
		ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"),
		topicInput(data),
	)
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "updating topic")
	}
	return ctx.JSON(http.StatusOK, topic)
}

func (api *ummApi) destroyTopic(ctx echo.Context) error {
	err := api.upstream.DeleteTopic(ctx.Request().Context(), currentManager(ctx).Credential(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(mapUpstreamError(ctx, err), "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ummApi) queryTopicContributions(ctx echo.Context) error {
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

func topicInput(data TopicRequest) upstream.TopicInput {
	return upstream.TopicInput{
		TopicName:   data.TopicName,
		Description: data.Description,
		FacultyID:   data.FacultyID,
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
	}
}
