package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core/student"
)

type (
	projectApi struct {
		svc *student.Service
	}

	projectsResponse struct {
		Success  bool              `json:"success"`
		Projects []student.Student `json:"projects"`
		Total    int               `json:"total"`
	}

	projectResponse struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Project student.Student `json:"project"`
	}

	statsResponse struct {
		Success bool          `json:"success"`
		Stats   student.Stats `json:"stats"`
	}
)

// registerProjectAPI serves the student records under /projects.
func registerProjectAPI(g *echo.Group, deps ServerDeps) {
	api := projectApi{svc: deps.StudentSvc}

	pg := g.Group("/projects", sessionMiddleware(deps.SessionMgr, newSessionCookies(deps)))
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.PUT("", api.update)
	pg.PATCH("", api.updateAttendance)
	pg.DELETE("", api.destroy)
	pg.GET("/stats", api.stats)
}

// Handlers

func (api *projectApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	students, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, projectsResponse{Success: true, Projects: students, Total: len(students)})
}

func (api *projectApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusOK, projectResponse{Success: true, Message: "Student created successfully", Project: std})
}

func (api *projectApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	std, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, projectResponse{Success: true, Message: "Student updated successfully", Project: std})
}

func (api *projectApi) updateAttendance(ctx echo.Context) error {
	var data student.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}

	std, err := api.svc.UpdateAttendance(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, projectResponse{Success: true, Message: "Attendance updated successfully", Project: std})
}

func (api *projectApi) destroy(ctx echo.Context) error {
	std, err := api.svc.Delete(ctx.Request().Context(), ctx.QueryParam("id"))
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, projectResponse{Success: true, Message: "Student deleted successfully", Project: std})
}

func (api *projectApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, statsResponse{Success: true, Stats: stats})
}
