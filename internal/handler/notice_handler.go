package handler

import (
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/middleware"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GET /api/notices はトーストを取り出す（取り出したものは消える）。
// 未ログインでも空配列を返す。
type NoticeHandler struct{}

func NewNoticeHandler() *NoticeHandler {
	return &NoticeHandler{}
}

func (h *NoticeHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/notices", h.drain)
}

func (h *NoticeHandler) drain(c echo.Context) error {
	st, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusOK, []usecase.Notice{})
	}
	return c.JSON(http.StatusOK, st.Notices.Drain())
}
