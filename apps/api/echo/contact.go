package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/contact"
)

type contactApi struct {
	svc *contact.Service
}

func registerContactAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *contact.Service) {
	api := contactApi{svc: svc}

	cg := g.Group("/contact")

	// public endpoint for the admissions/enquiry form
	cg.POST("", api.submit)

	cg.GET("", api.queryAll, jwt, adminMiddleware())
}

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	msg, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *contactApi) queryAll(ctx echo.Context) error {
	msgs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying contact messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}
