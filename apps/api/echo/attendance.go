package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
)

type attendanceApi struct {
	deps *Deps
}

func registerAttendanceAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := attendanceApi{deps: deps}

	ag := g.Group("/attendance", auth)
	ag.POST("/mark", api.mark)
	ag.GET("", api.query)

	g.POST("/reports/attendance", api.report, auth)
}

// MarkResponse reports how a mark batch went.
type MarkResponse struct {
	Message string `json:"message"`
	Records int    `json:"records"`
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data attendance.MarkRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	if err = data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	res, err := api.deps.AttendanceSvc.Mark(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}

	return ctx.JSON(http.StatusOK, MarkResponse{
		Message: fmt.Sprintf("Attendance marked for %d students", res.Processed),
		Records: res.Created,
	})
}

func (api *attendanceApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	date := core.CleanString(ctx.QueryParam("date"))
	if date == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}

	recs, err := api.deps.AttendanceSvc.Find(
		ctx.Request().Context(),
		usr,
		date,
		core.CleanString(ctx.QueryParam("class_name")),
		core.CleanString(ctx.QueryParam("section")),
	)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) report(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data attendance.ReportRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportRequest")
	}
	if err = data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	rows, err := api.deps.AttendanceSvc.Report(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}
	return ctx.JSON(http.StatusOK, rows)
}
