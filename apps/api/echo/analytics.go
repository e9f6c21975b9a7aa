package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core/attendance"
)

type analyticsApi struct {
	deps *Deps
}

func registerAnalyticsAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := analyticsApi{deps: deps}

	ag := g.Group("/analytics", auth)
	ag.POST("/insights", api.insights)
	ag.GET("/dashboard", api.dashboard)
}

func (api *analyticsApi) insights(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data attendance.AnalyticsRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalyticsRequest")
	}
	if err = data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	insights, err := api.deps.AttendanceSvc.Insights(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "generating insights")
	}
	return ctx.JSON(http.StatusOK, insights)
}

func (api *analyticsApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	dash, err := api.deps.AttendanceSvc.Dashboard(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}
