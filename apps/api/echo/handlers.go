package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authApi struct{}

func registerAuthAPI(g *echo.Group) {
	api := authApi{}
	ag := g.Group("/auth")
	ag.POST("/login", api.login)
}

func (api authApi) login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding login request")
	}
	if err := core.Validate.Struct(req); err != nil {
		return err
	}

	claims, err := authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": token})
}
