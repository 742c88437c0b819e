package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/recording"
)

type recordingApi struct {
	svc *recording.Service
}

type syncedRecording struct {
	Recording recording.RecordingLink `json:"recording"`
	Sync      core.SyncOutcome        `json:"sync"`
}

func registerRecordingAPI(g *echo.Group, svc *recording.Service, jwt, admin echo.MiddlewareFunc) {
	api := recordingApi{svc: svc}

	rg := g.Group("/recordings")
	rg.GET("", api.recordingQuery)
	rg.GET("/:id", api.recordingRetrieve)

	rg.POST("", api.recordingCreate, jwt, admin)
	rg.PUT("/:id", api.recordingUpdate, jwt, admin)
	rg.DELETE("/:id", api.recordingDelete, jwt, admin)
	rg.DELETE("", api.recordingDeleteAll, jwt, admin)
}

func (api recordingApi) recordingQuery(ctx echo.Context) error {
	recs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying recordings")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api recordingApi) recordingRetrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api recordingApi) recordingCreate(ctx echo.Context) error {
	var nr recording.NewRecording
	if err := ctx.Bind(&nr); err != nil {
		return errors.Wrap(err, "binding recording")
	}

	rec, outcome, err := api.svc.Create(ctx.Request().Context(), nr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, syncedRecording{Recording: rec, Sync: outcome})
}

func (api recordingApi) recordingUpdate(ctx echo.Context) error {
	var ur recording.UpdateRecording
	if err := ctx.Bind(&ur); err != nil {
		return errors.Wrap(err, "binding recording")
	}

	rec, outcome, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), ur)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, syncedRecording{Recording: rec, Sync: outcome})
}

func (api recordingApi) recordingDelete(ctx echo.Context) error {
	outcome, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sync": outcome})
}

func (api recordingApi) recordingDeleteAll(ctx echo.Context) error {
	outcome, err := api.svc.DeleteAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "deleting all recordings")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sync": outcome})
}
