package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core/student"
)

type studentApi struct {
	deps *Deps
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students", auth)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)

	g.GET("/classes", api.classes, auth)
}

// create registers a new student from a multipart form, processing the
// optional photo for facial recognition.
func (api *studentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	data := student.NewStudent{
		Name:          ctx.FormValue("name"),
		RollNumber:    ctx.FormValue("roll_number"),
		ClassName:     ctx.FormValue("class_name"),
		Section:       ctx.FormValue("section"),
		DateOfBirth:   ctx.FormValue("date_of_birth"),
		ParentName:    ctx.FormValue("parent_name"),
		ParentContact: ctx.FormValue("parent_contact"),
	}

	if fh, fErr := ctx.FormFile("photo"); fErr == nil {
		f, oErr := fh.Open()
		if oErr != nil {
			return errors.Wrap(oErr, "opening photo upload")
		}
		defer func() { _ = f.Close() }()
		if data.Photo, err = ioutil.ReadAll(f); err != nil {
			return errors.Wrap(err, "reading photo upload")
		}
	}

	if err = data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter student.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	students, err := api.deps.StudentSvc.Filter(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "filtering students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.deps.StudentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by id")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) classes(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	classes, err := api.deps.StudentSvc.Classes(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "grouping classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}
