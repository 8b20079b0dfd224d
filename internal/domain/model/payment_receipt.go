package model

import "time"

// 検証待ちのレシート。検証が通るまで残す。
type PendingReceipt struct {
	RazorpayOrderID   string    `gorm:"primaryKey;type:varchar(64)" json:"razorpay_order_id"`
	OrderID           string    `gorm:"type:varchar(64);not null" json:"orderId"`
	RazorpayPaymentID string    `gorm:"type:varchar(64);not null" json:"razorpay_payment_id"`
	RazorpaySignature string    `gorm:"type:varchar(255);not null" json:"razorpay_signature"`
	UserID            string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Attempts          int       `gorm:"not null;default:0" json:"attempts"`
	LastError         string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PendingReceipt) TableName() string {
	return "pending_payment_receipts"
}

// Verification は verify-payment 用のボディに戻す
func (r PendingReceipt) Verification() PaymentVerification {
	return PaymentVerification{
		PaymentReceipt: PaymentReceipt{
			RazorpayOrderID:   r.RazorpayOrderID,
			RazorpayPaymentID: r.RazorpayPaymentID,
			RazorpaySignature: r.RazorpaySignature,
		},
		OrderID: r.OrderID,
	}
}
