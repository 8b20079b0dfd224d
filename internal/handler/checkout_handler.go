package handler

import (
	"errors"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/checkout は決済ウィジェットとのやりとり。
// ウィジェットのコールバック（handler / payment.failed / ondismiss）をそのまま受ける。
type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

// payment.failed の response.error をそのまま送ってもよい
type paymentFailedRequest struct {
	Reason string `json:"reason"`
	Error  struct {
		Description string `json:"description"`
	} `json:"error"`
}

type checkoutResult struct {
	usecase.CheckoutStatus
	Message   string `json:"message,omitempty"`
	ItemCount int    `json:"itemCount"`
}

type retryResult struct {
	Verified int `json:"verified"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	g := e.Group("/api/checkout", auth...)
	g.GET("", h.status)
	g.POST("", h.begin)
	g.POST("/payment", h.paymentSucceeded)
	g.POST("/failure", h.paymentFailed)
	g.POST("/dismiss", h.dismiss)
	g.POST("/pending/retry", h.retryPending)
}

func (h *CheckoutHandler) status(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st.Checkout.Status())
}

// POST /api/checkout → ウィジェット設定
func (h *CheckoutHandler) begin(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	opts, err := st.Checkout.Begin(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *CheckoutHandler) paymentSucceeded(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	var req model.PaymentReceipt
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := st.Checkout.PaymentSucceeded(c.Request().Context(), req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, checkoutResult{
		CheckoutStatus: st.Checkout.Status(),
		Message:        "Payment successful! Order placed.",
		ItemCount:      st.Cart.Snapshot().ItemCount(),
	})
}

func (h *CheckoutHandler) paymentFailed(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	var req paymentFailedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	reason := req.Reason
	if reason == "" {
		reason = req.Error.Description
	}

	err = st.Checkout.PaymentFailed(c.Request().Context(), reason)
	//失敗の報告そのものは受け付けた
	if ce, ok := usecase.AsCheckoutError(err); ok && errors.Is(ce.Reason, usecase.ErrPaymentFailed) {
		return c.JSON(http.StatusOK, checkoutResult{
			CheckoutStatus: st.Checkout.Status(),
			Message:        ce.Message,
			ItemCount:      st.Cart.Snapshot().ItemCount(),
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, checkoutResult{CheckoutStatus: st.Checkout.Status()})
}

func (h *CheckoutHandler) dismiss(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := st.Checkout.Dismiss(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, checkoutResult{
		CheckoutStatus: st.Checkout.Status(),
		Message:        "Payment cancelled",
		ItemCount:      st.Cart.Snapshot().ItemCount(),
	})
}

func (h *CheckoutHandler) retryPending(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	n, err := st.Checkout.RetryPending(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, retryResult{Verified: n})
}
