package handler

import (
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// /api/profile（決済前に住所・電話番号を埋めてもらう）
type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	g := e.Group("/api/profile", auth...)
	g.GET("", h.get)
	g.PUT("", h.update)
}

func (h *ProfileHandler) get(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	u, err := st.Account.Profile(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *ProfileHandler) update(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	var req model.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	u, err := st.Account.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
