package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/user"
)

type attendanceApi struct {
	usrSvc    *user.Service
	svc       *attendance.Service
	ingestSvc *ingest.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *attendance.Service, ingestSvc *ingest.Service) {
	api := attendanceApi{usrSvc: usrSvc, svc: svc, ingestSvc: ingestSvc}

	ag := g.Group("/attendance", jwt, staffMiddleware())

	ag.POST("/sessions", api.createSession)
	ag.GET("/sessions", api.querySessions)
	ag.GET("/sessions/:id/marks", api.queryMarks)
	ag.POST("/sessions/:id/marks", api.mark)
	ag.POST("/sessions/:id/import", api.importMarks)
}

func (api *attendanceApi) createSession(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sess, err := api.svc.CreateSession(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *attendanceApi) querySessions(ctx echo.Context) error {
	sectionID := ctx.QueryParam("section")
	sessions, err := api.svc.QuerySessionsBySection(ctx.Request().Context(), sectionID)
	if err != nil {
		return errors.Wrap(err, "querying attendance sessions")
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *attendanceApi) queryMarks(ctx echo.Context) error {
	marks, err := api.svc.Marks(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance marks")
	}
	if marks == nil {
		marks = []attendance.Mark{}
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	m, err := api.svc.Mark(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

// importMarks bulk-records attendance for a session from an uploaded CSV file.
// Only the staff member who took the session, or an admin, may import into it.
func (api *attendanceApi) importMarks(ctx echo.Context) error {
	sess, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if sess.TakenBy != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	src, err := bindCSVUpload(ctx)
	if err != nil {
		return err
	}

	rep, err := api.ingestSvc.ImportAttendance(ctx.Request().Context(), sess.ID, src)
	if err != nil {
		return errors.Wrap(err, "importing attendance")
	}
	return ctx.JSON(http.StatusOK, rep)
}
