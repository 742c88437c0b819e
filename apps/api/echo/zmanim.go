package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/schedule"
	"github.com/mirpeset/mirpeset/core/zman"
)

type zmanApi struct {
	svc    *zman.Service
	parser *schedule.Parser
}

type zmanBulkRequest struct {
	// Candidates come straight from the parse step; malformed ones fail
	// individually without aborting the batch.
	Candidates []schedule.ParsedZman `json:"candidates"`
}

type zmanBulkResponse struct {
	zman.BulkResult
	Failed int `json:"failed"`
}

func registerZmanAPI(g *echo.Group, svc *zman.Service, parser *schedule.Parser, jwt, admin echo.MiddlewareFunc) {
	api := zmanApi{svc: svc, parser: parser}

	zg := g.Group("/zmanim")
	zg.GET("", api.zmanQuery)

	zg.POST("", api.zmanCreate, jwt, admin)
	zg.POST("/parse", api.zmanParse, jwt, admin)
	zg.POST("/bulk", api.zmanBulk, jwt, admin)
}

func (api zmanApi) zmanQuery(ctx echo.Context) error {
	zmanim, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying zmanim")
	}
	return ctx.JSON(http.StatusOK, zmanim)
}

func (api zmanApi) zmanCreate(ctx echo.Context) error {
	var nz zman.NewZman
	if err := ctx.Bind(&nz); err != nil {
		return errors.Wrap(err, "binding zman")
	}
	if err := core.Validate.Struct(nz); err != nil {
		return err
	}

	z, err := api.svc.Create(ctx.Request().Context(), nz)
	if err != nil {
		return errors.Wrap(err, "creating zman")
	}
	return ctx.JSON(http.StatusCreated, z)
}

// zmanParse extracts time-marker candidates from freeform text for review.
func (api zmanApi) zmanParse(ctx echo.Context) error {
	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding parse request")
	}
	if err := core.Validate.Struct(req); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"candidates": api.parser.ParseZmanim(req.Text)})
}

// zmanBulk inserts reviewed candidates, deduplicating on (day, type, time).
func (api zmanApi) zmanBulk(ctx echo.Context) error {
	var req zmanBulkRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding bulk request")
	}

	items := make([]zman.NewZman, 0, len(req.Candidates))
	var failed int
	for _, c := range req.Candidates {
		nz, err := c.NewZman()
		if err != nil {
			failed++
			continue
		}
		items = append(items, nz)
	}

	res, err := api.svc.BulkInsert(ctx.Request().Context(), items)
	if err != nil {
		return errors.Wrap(err, "bulk inserting zmanim")
	}
	return ctx.JSON(http.StatusOK, zmanBulkResponse{BulkResult: res, Failed: failed})
}
