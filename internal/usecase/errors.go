package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	// セッション（資格情報）が無い
	ErrNoSession = errors.New("no session")

	// 数量の差分が0、商品IDが空など
	ErrInvalidCartInput = errors.New("invalid cart input")

	// カートに無い商品を増やすには商品スナップショットが必要
	ErrSnapshotRequired = errors.New("product snapshot required for a new cart line")

	// 空のカートでは決済を始めない
	ErrEmptyCart = errors.New("cart is empty")

	// 決済処理中（processing=true）の再入
	ErrCheckoutInProgress = errors.New("checkout already in progress")

	// 現在の状態では受け付けない遷移
	ErrInvalidTransition = errors.New("invalid checkout transition")

	// ウィジェットからのレシートが待っている注文と違う
	ErrOrderMismatch = errors.New("receipt does not match the pending order")

	// プロフィール（住所・電話番号）不足
	ErrProfileIncomplete = errors.New("profile incomplete")

	// 注文作成レスポンスに order.id が無い
	ErrInvalidOrderResponse = errors.New("invalid order response")

	// 注文作成の失敗全般
	ErrCreateOrderFailed = errors.New("create order failed")

	// プロバイダ側で失敗した / 閉じられた
	ErrPaymentFailed    = errors.New("payment failed")
	ErrPaymentCancelled = errors.New("payment cancelled")

	// 決済は成功したが検証できなかった
	ErrVerificationFailed = errors.New("payment verification failed")
)

// CheckoutError はユーザーに見せる文言と分類（Reason）を持つ
type CheckoutError struct {
	Reason  error
	Message string
	Cause   error
}

func (e *CheckoutError) Error() string {
	return e.Message
}

func (e *CheckoutError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}

func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	ok := errors.As(err, &ce)
	return ce, ok
}
