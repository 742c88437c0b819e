package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/schedule"
)

type importApi struct {
	svc    *lesson.Service
	parser *schedule.Parser
}

type (
	importParseRequest struct {
		Text string `json:"text" validate:"required"`
	}

	importConfirmRequest struct {
		Candidates       []schedule.ParsedLesson `json:"candidates"`
		ReplaceConflicts bool                    `json:"replaceConflicts"`
	}

	importConfirmResponse struct {
		Report lesson.ImportReport `json:"report"`
		Sync   core.SyncOutcome    `json:"sync"`
	}
)

func registerImportAPI(g *echo.Group, svc *lesson.Service, parser *schedule.Parser, jwt, admin echo.MiddlewareFunc) {
	api := importApi{svc: svc, parser: parser}

	ig := g.Group("/import", jwt, admin)
	ig.POST("/parse", api.importParse)
	ig.POST("/confirm", api.importConfirm)
}

// importParse extracts lesson candidates from freeform text. Nothing is
// persisted; the candidates go back to the admin for review.
func (api importApi) importParse(ctx echo.Context) error {
	var req importParseRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding parse request")
	}
	if err := core.Validate.Struct(req); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"candidates": api.parser.ParseLessons(req.Text)})
}

// importConfirm merges reviewed candidates into the collection.
func (api importApi) importConfirm(ctx echo.Context) error {
	var req importConfirmRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding confirm request")
	}

	drafts := make([]lesson.Draft, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		drafts = append(drafts, c.Draft())
	}

	report, outcome, err := api.svc.Import(ctx.Request().Context(), drafts, req.ReplaceConflicts)
	if err != nil {
		return errors.Wrap(err, "importing lessons")
	}
	return ctx.JSON(http.StatusOK, importConfirmResponse{Report: report, Sync: outcome})
}
