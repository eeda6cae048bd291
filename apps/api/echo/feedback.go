package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/feedback"
	"github.com/trezcool/chuo/core/user"
)

type feedbackApi struct {
	usrSvc *user.Service
	svc    *feedback.Service
}

func registerFeedbackAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *feedback.Service) {
	api := feedbackApi{usrSvc: usrSvc, svc: svc}

	fg := g.Group("/feedback", jwt)

	fg.POST("", api.submit, studentMiddleware())
	fg.GET("", api.queryBySubject, staffMiddleware())
}

func (api *feedbackApi) submit(ctx echo.Context) error {
	var data feedback.NewFeedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fb, err := api.svc.Submit(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fb)
}

func (api *feedbackApi) queryBySubject(ctx echo.Context) error {
	subjectID := ctx.QueryParam("subject")
	fbs, err := api.svc.QueryBySubject(ctx.Request().Context(), subjectID)
	if err != nil {
		return errors.Wrap(err, "querying feedback")
	}
	if fbs == nil {
		fbs = []feedback.Feedback{}
	}
	return ctx.JSON(http.StatusOK, fbs)
}
