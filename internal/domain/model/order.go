package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// サーバー側の注文
type Order struct {
	ID              string          `json:"id"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Shipping        ShippingAddress `json:"shippingAddress"`
	Items           []OrderItem     `json:"items"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
}

// DisplayID は決済側の注文IDが無ければ ORD-xxxxxx を作る
func (o Order) DisplayID() string {
	if o.RazorpayOrderID != "" {
		return o.RazorpayOrderID
	}
	id := o.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "ORD-" + id
}

// 決済プロバイダ側の注文ハンドル（amountは最小通貨単位）
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// POST /cart/create-order に送る金額
type CreateOrderRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Amount   decimal.Decimal `json:"amount"`
}

// POST /cart/create-order の結果
type CreateOrderResult struct {
	Order   RemoteOrder `json:"order"`
	OrderID string      `json:"orderId"`
}

// 決済ウィジェットの handler が返すレシート
type PaymentReceipt struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// POST /cart/verify-payment のボディ
type PaymentVerification struct {
	PaymentReceipt
	OrderID string `json:"orderId"`
}
