package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	"github.com/chiragvgohil-05/soffa-clg/internal/metrics"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

type CheckoutState string

const (
	CheckoutIdle             CheckoutState = "idle"
	CheckoutCreatingOrder    CheckoutState = "creating_order"
	CheckoutAwaitingPayment  CheckoutState = "awaiting_payment"
	CheckoutVerifyingPayment CheckoutState = "verifying_payment"
)

const (
	msgInvalidOrderResponse = "Invalid order response from server"
	msgCheckoutUnavailable  = "Checkout service unavailable. Please try again later."
	msgCheckoutFailed       = "Failed to initiate checkout"
	msgPaymentSucceeded     = "Payment successful! Order placed."
	msgPaymentCancelled     = "Payment cancelled"
	msgVerificationFailed   = "Payment verification failed"
)

type CheckoutConfig struct {
	RazorpayKeyID         string
	Currency              string
	StoreName             string
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	VerifyMaxRetries      uint64
	VerifyBackoff         time.Duration
}

// Quote は決済金額の内訳
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeQuote は送料を決める。小計がしきい値を超えれば無料、それ以外は一律。
func ComputeQuote(subtotal decimal.Decimal, freeThreshold decimal.Decimal, flatFee decimal.Decimal) Quote {
	shipping := flatFee
	if subtotal.GreaterThan(freeThreshold) {
		shipping = decimal.Zero
	}
	return Quote{Subtotal: subtotal, Shipping: shipping, Total: subtotal.Add(shipping)}
}

// MinorUnits は最小通貨単位（パイサ）
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// WidgetOptions はブラウザの決済ウィジェットに渡す設定
type WidgetOptions struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Notes       map[string]string `json:"notes"`
	Quote       Quote             `json:"quote"`
}

type CheckoutStatus struct {
	State           CheckoutState `json:"state"`
	Processing      bool          `json:"processing"`
	OrderID         string        `json:"orderId,omitempty"`
	RazorpayOrderID string        `json:"razorpayOrderId,omitempty"`
}

type awaitingOrder struct {
	orderID         string
	razorpayOrderID string
	amount          int64
	currency        string
}

// CheckoutOrchestrator は 注文作成 → 決済ウィジェット → 検証 を順番に進める。
// どの失敗でも Idle に戻る。
type CheckoutOrchestrator struct {
	cfg      CheckoutConfig
	gateway  repo.CheckoutGateway
	cart     *CartStore
	receipts repo.PaymentReceiptRepository
	session  Principal
	notifier Notifier
	newKey   func() string
	log      *slog.Logger

	mu         sync.Mutex
	state      CheckoutState
	processing bool
	pending    *awaitingOrder
}

func NewCheckoutOrchestrator(
	cfg CheckoutConfig,
	gateway repo.CheckoutGateway,
	cart *CartStore,
	receipts repo.PaymentReceiptRepository,
	session Principal,
	notifier Notifier,
	logger *slog.Logger,
) *CheckoutOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.VerifyBackoff <= 0 {
		cfg.VerifyBackoff = 500 * time.Millisecond
	}
	return &CheckoutOrchestrator{
		cfg:      cfg,
		gateway:  gateway,
		cart:     cart,
		receipts: receipts,
		session:  session,
		notifier: notifier,
		newKey:   uuid.NewString,
		log:      logger.With(slog.String("component", "checkout")),
		state:    CheckoutIdle,
	}
}

func (o *CheckoutOrchestrator) Status() CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := CheckoutStatus{State: o.state, Processing: o.processing}
	if o.pending != nil {
		st.OrderID = o.pending.orderID
		st.RazorpayOrderID = o.pending.razorpayOrderID
	}
	return st
}

// Begin は注文を作ってウィジェット設定を返す（Idle → CreatingOrder → AwaitingPayment）。
// 空カートは通信せずに拒否する。
func (o *CheckoutOrchestrator) Begin(ctx context.Context) (WidgetOptions, error) {
	if !o.session.HasCredential() {
		return WidgetOptions{}, ErrNoSession
	}

	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return WidgetOptions{}, ErrCheckoutInProgress
	}
	cart := o.cart.Snapshot()
	if cart.IsEmpty() {
		o.mu.Unlock()
		return WidgetOptions{}, ErrEmptyCart
	}
	o.processing = true
	o.state = CheckoutCreatingOrder
	o.mu.Unlock()

	quote := ComputeQuote(cart.Sum(), o.cfg.FreeShippingThreshold, o.cfg.FlatShippingFee)

	res, err := o.gateway.CreateOrder(ctx, model.CreateOrderRequest{
		Subtotal: quote.Subtotal,
		Shipping: quote.Shipping,
		Amount:   quote.Total,
	}, o.newKey())
	if err != nil {
		cerr := classifyCreateOrderError(err)
		o.finish("create_failed")
		if !errors.Is(err, repo.ErrUnauthorized) {
			o.notifier.Notify(NoticeError, cerr.Message)
		}
		o.log.Warn("create order failed", slog.String("error", err.Error()))
		return WidgetOptions{}, cerr
	}
	if res.Order.ID == "" {
		o.finish("create_failed")
		o.notifier.Notify(NoticeError, msgInvalidOrderResponse)
		return WidgetOptions{}, &CheckoutError{Reason: ErrInvalidOrderResponse, Message: msgInvalidOrderResponse}
	}

	//金額はバックエンドの値を優先。無いときだけ手元で計算した値
	amount := res.Order.Amount
	if amount <= 0 {
		amount = MinorUnits(quote.Total)
		o.log.Warn("order amount missing, using local total", slog.Int64("amount", amount))
	}
	currency := res.Order.Currency
	if currency == "" {
		currency = o.cfg.Currency
	}

	o.mu.Lock()
	o.state = CheckoutAwaitingPayment
	o.pending = &awaitingOrder{
		orderID:         res.OrderID,
		razorpayOrderID: res.Order.ID,
		amount:          amount,
		currency:        currency,
	}
	o.mu.Unlock()
	metrics.CheckoutOutcomes.WithLabelValues("created").Inc()

	return WidgetOptions{
		Key:         o.cfg.RazorpayKeyID,
		Amount:      amount,
		Currency:    currency,
		Name:        o.cfg.StoreName,
		Description: "Order Payment",
		OrderID:     res.Order.ID,
		Notes:       map[string]string{"orderId": res.OrderID},
		Quote:       quote,
	}, nil
}

// classifyCreateOrderError はユーザー向けの文言を決める。
// プロフィール不足（電話番号・住所）は他の失敗と区別する。
func classifyCreateOrderError(err error) *CheckoutError {
	if errors.Is(err, repo.ErrUnauthorized) {
		return &CheckoutError{Reason: ErrCreateOrderFailed, Message: "unauthorized", Cause: err}
	}
	ae, ok := repo.AsAPIError(err)
	if !ok {
		return &CheckoutError{Reason: ErrCreateOrderFailed, Message: msgCheckoutFailed, Cause: err}
	}

	lower := strings.ToLower(ae.Message)
	switch {
	case strings.Contains(lower, "mobile number"), strings.Contains(lower, "address"):
		return &CheckoutError{Reason: ErrProfileIncomplete, Message: ae.Message, Cause: err}
	case ae.Status == http.StatusNotFound:
		return &CheckoutError{Reason: ErrCreateOrderFailed, Message: msgCheckoutUnavailable, Cause: err}
	case ae.Message != "":
		return &CheckoutError{Reason: ErrCreateOrderFailed, Message: ae.Message, Cause: err}
	default:
		return &CheckoutError{Reason: ErrCreateOrderFailed, Message: msgCheckoutFailed, Cause: err}
	}
}

// PaymentSucceeded はウィジェットの handler から（AwaitingPayment → VerifyingPayment → Idle）。
// レシートは検証前に保存し、検証が通るまで残す。
func (o *CheckoutOrchestrator) PaymentSucceeded(ctx context.Context, receipt model.PaymentReceipt) error {
	o.mu.Lock()
	if o.state != CheckoutAwaitingPayment || o.pending == nil {
		o.mu.Unlock()
		return ErrInvalidTransition
	}
	if receipt.RazorpayOrderID != o.pending.razorpayOrderID {
		o.mu.Unlock()
		return ErrOrderMismatch
	}
	if receipt.RazorpayPaymentID == "" || receipt.RazorpaySignature == "" {
		o.mu.Unlock()
		return ErrInvalidTransition
	}
	o.state = CheckoutVerifyingPayment
	awaiting := *o.pending
	o.mu.Unlock()

	pending := model.PendingReceipt{
		RazorpayOrderID:   receipt.RazorpayOrderID,
		OrderID:           awaiting.orderID,
		RazorpayPaymentID: receipt.RazorpayPaymentID,
		RazorpaySignature: receipt.RazorpaySignature,
		UserID:            o.session.UserID(),
	}
	if err := o.receipts.Save(ctx, pending); err != nil {
		//保存できなくても検証は試す
		o.log.Error("save pending receipt failed",
			slog.String("razorpay_order_id", receipt.RazorpayOrderID),
			slog.String("error", err.Error()))
	}

	err := o.verify(ctx, pending.Verification())
	if err != nil {
		if rerr := o.receipts.RecordAttempt(ctx, pending.RazorpayOrderID, err.Error()); rerr != nil {
			o.log.Error("record verification attempt failed", slog.String("error", rerr.Error()))
		}
		o.finish("verify_failed")

		msg := msgVerificationFailed
		if ae, ok := repo.AsAPIError(err); ok && ae.Message != "" {
			msg = ae.Message
		}
		if !errors.Is(err, repo.ErrUnauthorized) {
			o.notifier.Notify(NoticeError, msg)
		}
		//支払い済みとはみなさない（カートはそのまま）
		o.log.Error("payment verification failed",
			slog.String("order_id", awaiting.orderID),
			slog.String("razorpay_order_id", awaiting.razorpayOrderID),
			slog.String("error", err.Error()))
		return &CheckoutError{Reason: ErrVerificationFailed, Message: msg, Cause: err}
	}

	if err := o.receipts.Delete(ctx, pending.RazorpayOrderID); err != nil {
		o.log.Error("delete verified receipt failed", slog.String("error", err.Error()))
	}
	o.notifier.Notify(NoticeSuccess, msgPaymentSucceeded)
	_ = o.cart.FetchCart(ctx)
	o.finish("paid")
	return nil
}

// PaymentFailed はウィジェットの payment.failed から
func (o *CheckoutOrchestrator) PaymentFailed(ctx context.Context, reason string) error {
	if err := o.leaveAwaiting("payment_failed"); err != nil {
		return err
	}
	if reason == "" {
		reason = "unknown error"
	}
	msg := "Payment failed: " + reason
	o.notifier.Notify(NoticeError, msg)
	return &CheckoutError{Reason: ErrPaymentFailed, Message: msg}
}

// Dismiss はウィジェットを閉じたとき。検証は呼ばない。
func (o *CheckoutOrchestrator) Dismiss(ctx context.Context) error {
	if err := o.leaveAwaiting("dismissed"); err != nil {
		return err
	}
	o.notifier.Notify(NoticeError, msgPaymentCancelled)
	return nil
}

// RetryPending は保存済みのレシートを検証し直す。検証できた件数を返す。
func (o *CheckoutOrchestrator) RetryPending(ctx context.Context) (int, error) {
	userID := o.session.UserID()
	if userID == "" {
		return 0, nil
	}

	receipts, err := o.receipts.ListByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	verified := 0
	for _, r := range receipts {
		err := o.verify(ctx, r.Verification())
		if err != nil {
			if errors.Is(err, repo.ErrUnauthorized) {
				return verified, err
			}
			o.log.Warn("pending receipt still unverified",
				slog.String("razorpay_order_id", r.RazorpayOrderID),
				slog.Int("attempts", r.Attempts+1),
				slog.String("error", err.Error()))
			if rerr := o.receipts.RecordAttempt(ctx, r.RazorpayOrderID, err.Error()); rerr != nil {
				o.log.Error("record verification attempt failed", slog.String("error", rerr.Error()))
			}
			continue
		}
		if err := o.receipts.Delete(ctx, r.RazorpayOrderID); err != nil {
			o.log.Error("delete verified receipt failed", slog.String("error", err.Error()))
		}
		verified++
	}
	metrics.PendingReceipts.Set(float64(len(receipts) - verified))

	if verified > 0 {
		o.notifier.Notify(NoticeSuccess, msgPaymentSucceeded)
		_ = o.cart.FetchCart(ctx)
	}
	return verified, nil
}

// Reset はログアウト時に Idle に戻す
func (o *CheckoutOrchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = CheckoutIdle
	o.processing = false
	o.pending = nil
}

// verify は一時的な失敗だけ指数バックオフで再試行する
func (o *CheckoutOrchestrator) verify(ctx context.Context, v model.PaymentVerification) error {
	backoff := retry.WithMaxRetries(o.cfg.VerifyMaxRetries, retry.NewExponential(o.cfg.VerifyBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := o.gateway.VerifyPayment(ctx, v)
		if err != nil && repo.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// leaveAwaiting は確認と Idle への遷移を同じロックの中で行う
func (o *CheckoutOrchestrator) leaveAwaiting(outcome string) error {
	o.mu.Lock()
	if o.state != CheckoutAwaitingPayment {
		o.mu.Unlock()
		return ErrInvalidTransition
	}
	o.toIdleLocked()
	o.mu.Unlock()
	metrics.CheckoutOutcomes.WithLabelValues(outcome).Inc()
	return nil
}

func (o *CheckoutOrchestrator) finish(outcome string) {
	o.mu.Lock()
	o.toIdleLocked()
	o.mu.Unlock()
	metrics.CheckoutOutcomes.WithLabelValues(outcome).Inc()
}

// o.mu を持った状態で呼ぶ
func (o *CheckoutOrchestrator) toIdleLocked() {
	o.state = CheckoutIdle
	o.processing = false
	o.pending = nil
}
