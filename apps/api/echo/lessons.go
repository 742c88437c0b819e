package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/recording"
)

type lessonApi struct {
	svc    *lesson.Service
	recSvc *recording.Service
}

// syncedLesson pairs a mutated lesson with where the write landed, so the
// frontend can tell a remote-synced save from a local-only one.
type syncedLesson struct {
	Lesson lesson.Lesson    `json:"lesson"`
	Sync   core.SyncOutcome `json:"sync"`
}

func registerLessonAPI(g *echo.Group, svc *lesson.Service, recSvc *recording.Service, jwt, admin echo.MiddlewareFunc) {
	api := lessonApi{svc: svc, recSvc: recSvc}

	lg := g.Group("/lessons")
	lg.GET("", api.lessonQuery)
	lg.GET("/upcoming", api.lessonUpcoming)
	lg.GET("/past", api.lessonPast)
	lg.GET("/export", api.lessonExport, jwt, admin)
	lg.GET("/:id", api.lessonRetrieve)
	lg.GET("/:id/recordings", api.lessonRecordings)

	lg.POST("", api.lessonCreate, jwt, admin)
	lg.PUT("/:id", api.lessonUpdate, jwt, admin)
	lg.DELETE("/:id", api.lessonDelete, jwt, admin)
	lg.DELETE("", api.lessonDeleteAll, jwt, admin)
}

func (api lessonApi) lessonQuery(ctx echo.Context) error {
	lessons, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api lessonApi) lessonUpcoming(ctx echo.Context) error {
	lessons, err := api.svc.Upcoming(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying upcoming lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api lessonApi) lessonPast(ctx echo.Context) error {
	lessons, err := api.svc.Past(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying past lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api lessonApi) lessonRetrieve(ctx echo.Context) error {
	lsn, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api lessonApi) lessonRecordings(ctx echo.Context) error {
	recs, err := api.recSvc.GetForLesson(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying lesson recordings")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api lessonApi) lessonCreate(ctx echo.Context) error {
	var nl lesson.NewLesson
	if err := ctx.Bind(&nl); err != nil {
		return errors.Wrap(err, "binding lesson")
	}

	lsn, outcome, err := api.svc.Create(ctx.Request().Context(), nl)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, syncedLesson{Lesson: lsn, Sync: outcome})
}

func (api lessonApi) lessonUpdate(ctx echo.Context) error {
	var ul lesson.UpdateLesson
	if err := ctx.Bind(&ul); err != nil {
		return errors.Wrap(err, "binding lesson")
	}

	lsn, outcome, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), ul)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, syncedLesson{Lesson: lsn, Sync: outcome})
}

func (api lessonApi) lessonDelete(ctx echo.Context) error {
	outcome, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sync": outcome})
}

func (api lessonApi) lessonDeleteAll(ctx echo.Context) error {
	outcome, err := api.svc.DeleteAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "deleting all lessons")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sync": outcome})
}

// lessonExport downloads the full collection as a JSON backup file.
func (api lessonApi) lessonExport(ctx echo.Context) error {
	lessons, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	data, err := json.MarshalIndent(lessons, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding export")
	}

	fname := fmt.Sprintf("lessons-export-%s.json", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fname+`"`)
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}
