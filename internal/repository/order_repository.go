package repository

import (
	"context"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

// 決済の作成と検証
type CheckoutGateway interface {
	// idempotencyKey が同じなら同じ注文を返す約束
	CreateOrder(ctx context.Context, req model.CreateOrderRequest, idempotencyKey string) (model.CreateOrderResult, error)
	VerifyPayment(ctx context.Context, v model.PaymentVerification) error
}

// 管理者向けの注文・ユーザーAPI（素通し）
type AdminGateway interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	Dashboard(ctx context.Context) ([]byte, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}
