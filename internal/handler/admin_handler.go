package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/admin 管理画面（ログイン + Admin ロール）
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, guards ...echo.MiddlewareFunc) {
	g := e.Group("/api/admin", guards...)

	g.GET("/orders", h.listOrders)
	g.DELETE("/orders/:id", h.deleteOrder)
	g.GET("/dashboard", h.dashboard)
	g.GET("/users", h.listUsers)
	g.DELETE("/users/:id", h.deleteUser)
	g.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	page, limit, ok := pageParams(c, 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page or limit"})
	}

	out, err := st.Admin.ListOrders(c.Request().Context(), usecase.AdminOrderListInput{
		Page:   page,
		Limit:  limit,
		Q:      c.QueryParam("q"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) deleteOrder(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := st.Admin.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	raw, err := st.Admin.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func (h *AdminHandler) listUsers(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	users, err := st.Admin.ListUsers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) deleteUser(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := st.Admin.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) listAuditLogs(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	page, limit, ok := pageParams(c, 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page or limit"})
	}

	in := usecase.AuditLogListInput{
		Page:     page,
		Limit:    limit,
		Action:   c.QueryParam("action"),
		Actor:    c.QueryParam("actor"),
		Resource: c.QueryParam("resource"),
	}
	// from / to は RFC3339
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &t
	}

	logs, err := st.Admin.ListAuditLogs(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// page（default 1）と limit。範囲チェックは usecase 側。
func pageParams(c echo.Context, defLimit int) (int, int, bool) {
	page, limit := 1, defLimit
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}
	return page, limit, true
}
