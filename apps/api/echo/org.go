package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/org"
)

type orgApi struct {
	svc *org.Service
}

func registerOrgAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *org.Service) {
	api := orgApi{svc: svc}

	og := g.Group("/org", jwt)

	og.GET("/departments", api.queryDepartments)
	og.POST("/departments", api.createDepartment, adminMiddleware())
	og.GET("/programs", api.queryPrograms)
	og.POST("/programs", api.createProgram, adminMiddleware())
	og.GET("/sections", api.querySections)
	og.POST("/sections", api.createSection, adminMiddleware())
	og.GET("/terms", api.queryTerms)
	og.POST("/terms", api.createTerm, adminMiddleware())
	og.GET("/subjects", api.querySubjects)
	og.POST("/subjects", api.createSubject, adminMiddleware())
}

func (api *orgApi) createDepartment(ctx echo.Context) error {
	var data org.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	dep, err := api.svc.CreateDepartment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dep)
}

func (api *orgApi) createProgram(ctx echo.Context) error {
	var data org.NewProgram
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgram")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	prog, err := api.svc.CreateProgram(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prog)
}

func (api *orgApi) createSection(ctx echo.Context) error {
	var data org.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sec, err := api.svc.CreateSection(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *orgApi) createTerm(ctx echo.Context) error {
	var data org.NewTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	term, err := api.svc.CreateTerm(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating term")
	}
	return ctx.JSON(http.StatusCreated, term)
}

func (api *orgApi) createSubject(ctx echo.Context) error {
	var data org.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *orgApi) queryDepartments(ctx echo.Context) error {
	deps, err := api.svc.QueryDepartments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	return ctx.JSON(http.StatusOK, deps)
}

func (api *orgApi) queryPrograms(ctx echo.Context) error {
	progs, err := api.svc.QueryPrograms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying programs")
	}
	return ctx.JSON(http.StatusOK, progs)
}

func (api *orgApi) querySections(ctx echo.Context) error {
	secs, err := api.svc.QuerySections(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	return ctx.JSON(http.StatusOK, secs)
}

func (api *orgApi) queryTerms(ctx echo.Context) error {
	terms, err := api.svc.QueryTerms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying terms")
	}
	return ctx.JSON(http.StatusOK, terms)
}

func (api *orgApi) querySubjects(ctx echo.Context) error {
	subs, err := api.svc.QuerySubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subs)
}
