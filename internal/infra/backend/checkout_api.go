package backend

import (
	"context"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

// 二重送信防止キー
const idempotencyHeader = "X-Idempotency-Key"

func (g *Gateway) CreateOrder(ctx context.Context, req model.CreateOrderRequest, idempotencyKey string) (model.CreateOrderResult, error) {
	var out model.CreateOrderResult
	err := g.call(ctx, http.MethodPost, "/cart/create-order", req, &out, withHeader(idempotencyHeader, idempotencyKey))
	if err != nil {
		return model.CreateOrderResult{}, err
	}
	return out, nil
}

// VerifyPayment は payment_id をキーにして何度送っても同じ結果になる前提
func (g *Gateway) VerifyPayment(ctx context.Context, v model.PaymentVerification) error {
	return g.call(ctx, http.MethodPost, "/cart/verify-payment", v, nil, withHeader(idempotencyHeader, v.RazorpayPaymentID))
}
