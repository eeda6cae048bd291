package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/user"
)

type assessmentApi struct {
	usrSvc    *user.Service
	svc       *assessment.Service
	ingestSvc *ingest.Service
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *assessment.Service, ingestSvc *ingest.Service) {
	api := assessmentApi{usrSvc: usrSvc, svc: svc, ingestSvc: ingestSvc}

	ag := g.Group("/assessments", jwt, staffMiddleware())

	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:id/scores", api.queryScores)
	ag.POST("/:id/scores", api.enterScore)
	ag.POST("/:id/scores/import", api.importScores)
}

func (api *assessmentApi) create(ctx echo.Context) error {
	var data assessment.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	asmt, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, asmt)
}

func (api *assessmentApi) query(ctx echo.Context) error {
	subjectID := ctx.QueryParam("subject")
	asmts, err := api.svc.QueryBySubject(ctx.Request().Context(), subjectID)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if asmts == nil {
		asmts = []assessment.Assessment{}
	}
	return ctx.JSON(http.StatusOK, asmts)
}

func (api *assessmentApi) queryScores(ctx echo.Context) error {
	scores, err := api.svc.Scores(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying scores")
	}
	if scores == nil {
		scores = []assessment.Score{}
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *assessmentApi) enterScore(ctx echo.Context) error {
	var data assessment.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Enter(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

// importScores bulk-records marks for an assessment from an uploaded CSV file.
// Only the staff member who created the assessment, or an admin, may import into it.
func (api *assessmentApi) importScores(ctx echo.Context) error {
	asmt, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if asmt.CreatedBy != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	src, err := bindCSVUpload(ctx)
	if err != nil {
		return err
	}

	rep, err := api.ingestSvc.ImportScores(ctx.Request().Context(), asmt.ID, src)
	if err != nil {
		return errors.Wrap(err, "importing scores")
	}
	return ctx.JSON(http.StatusOK, rep)
}
