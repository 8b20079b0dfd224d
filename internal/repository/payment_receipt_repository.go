package repository

import (
	"context"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

// 検証待ちレシートの保存先。リロードや再起動をまたいで残す。
type PaymentReceiptRepository interface {
	// 同じ razorpay_order_id は上書き
	Save(ctx context.Context, r model.PendingReceipt) error
	ListByUserID(ctx context.Context, userID string) ([]model.PendingReceipt, error)
	RecordAttempt(ctx context.Context, razorpayOrderID string, lastErr string) error
	Delete(ctx context.Context, razorpayOrderID string) error
}
