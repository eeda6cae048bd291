package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/leave"
	"github.com/trezcool/chuo/core/user"
)

type leaveApi struct {
	usrSvc *user.Service
	svc    *leave.Service
}

func registerLeaveAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *leave.Service) {
	api := leaveApi{usrSvc: usrSvc, svc: svc}

	lg := g.Group("/leave", jwt)

	lg.POST("", api.apply)
	lg.GET("", api.queryOwn)
	lg.GET("/pending", api.queryPending, adminMiddleware())
	lg.PUT("/:id/decision", api.decide, adminMiddleware())
}

func (api *leaveApi) apply(ctx echo.Context) error {
	var data leave.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	app, err := api.svc.Apply(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating leave application")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *leaveApi) queryOwn(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	apps, err := api.svc.QueryByUser(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying leave applications")
	}
	if apps == nil {
		apps = []leave.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *leaveApi) queryPending(ctx echo.Context) error {
	apps, err := api.svc.QueryPending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending leave applications")
	}
	if apps == nil {
		apps = []leave.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *leaveApi) decide(ctx echo.Context) error {
	var data leave.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	app, err := api.svc.Decide(ctx.Request().Context(), ctx.Param("id"), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
