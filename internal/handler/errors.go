package handler

import (
	"errors"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/middleware"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/session"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	//401はどこから来てもログイン画面へ
	if errors.Is(err, usecase.ErrNoSession) || errors.Is(err, repo.ErrUnauthorized) {
		return middleware.Unauthorized(c)
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	if ce, ok := usecase.AsCheckoutError(err); ok {
		return c.JSON(checkoutStatus(ce), ErrorResponse{Error: ce.Message})
	}

	switch {
	case errors.Is(err, usecase.ErrEmptyCart),
		errors.Is(err, usecase.ErrSnapshotRequired),
		errors.Is(err, usecase.ErrInvalidCartInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrCheckoutInProgress),
		errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrOrderMismatch):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "backend unavailable"})
	}
	if ae, ok := repo.AsAPIError(err); ok {
		status := ae.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		msg := ae.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return c.JSON(status, ErrorResponse{Error: msg})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func checkoutStatus(ce *usecase.CheckoutError) int {
	switch {
	case errors.Is(ce.Reason, usecase.ErrProfileIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(ce.Reason, usecase.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(ce, repo.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// currentSession は RequireLogin の後ろでだけ使う
func currentSession(c echo.Context) (*session.State, error) {
	st, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, usecase.ErrNoSession
	}
	return st, nil
}
