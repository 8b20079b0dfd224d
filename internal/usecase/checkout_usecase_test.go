package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	orch     *usecase.CheckoutOrchestrator
	cart     *usecase.CartStore
	cartGW   *CartGatewayMock
	gw       *CheckoutGatewayMock
	receipts *ReceiptRepoMock
	sess     *fakeSession
}

func newCheckoutFixture(t *testing.T, initial model.Cart) *checkoutFixture {
	t.Helper()
	cartGW := new(CartGatewayMock)
	sess := newFakeSession()
	cart := usecase.NewCartStore(cartGW, sess, sess, nil)
	cartGW.On("GetCart", mock.Anything).Return(initial, nil).Once()
	require.NoError(t, cart.FetchCart(context.Background()))

	gw := new(CheckoutGatewayMock)
	receipts := new(ReceiptRepoMock)
	orch := usecase.NewCheckoutOrchestrator(usecase.CheckoutConfig{
		RazorpayKeyID:         "rzp_test_key",
		Currency:              "INR",
		StoreName:             "Elegent Furniture",
		FreeShippingThreshold: dec(1000),
		FlatShippingFee:       dec(99),
		VerifyMaxRetries:      2,
		VerifyBackoff:         time.Millisecond,
	}, gw, cart, receipts, sess, sess, nil)

	return &checkoutFixture{orch: orch, cart: cart, cartGW: cartGW, gw: gw, receipts: receipts, sess: sess}
}

func (f *checkoutFixture) begin(t *testing.T) usecase.WidgetOptions {
	t.Helper()
	f.gw.On("CreateOrder", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
		Return(model.CreateOrderResult{
			Order:   model.RemoteOrder{ID: "order_rzp_1", Amount: 120000, Currency: "INR"},
			OrderID: "o1",
		}, nil).Once()
	opts, err := f.orch.Begin(context.Background())
	require.NoError(t, err)
	return opts
}

var okReceipt = model.PaymentReceipt{
	RazorpayOrderID:   "order_rzp_1",
	RazorpayPaymentID: "pay_1",
	RazorpaySignature: "sig_1",
}

func TestComputeQuote_ShippingThreshold(t *testing.T) {
	q := usecase.ComputeQuote(dec(1000), dec(1000), dec(99))
	assert.True(t, q.Shipping.Equal(dec(99)))
	assert.True(t, q.Total.Equal(dec(1099)))

	q = usecase.ComputeQuote(dec(1001), dec(1000), dec(99))
	assert.True(t, q.Shipping.IsZero())
	assert.True(t, q.Total.Equal(dec(1001)))
}

func TestMinorUnits_Rounds(t *testing.T) {
	assert.Equal(t, int64(109900), usecase.MinorUnits(dec(1099)))
	assert.Equal(t, int64(1235), usecase.MinorUnits(model.Product{OriginalPrice: dec(13), Discount: dec(5)}.SellPrice()))
}

func TestCheckout_Begin_EmptyCartNoNetwork(t *testing.T) {
	f := newCheckoutFixture(t, model.EmptyCart())

	_, err := f.orch.Begin(context.Background())
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
	assert.False(t, f.orch.Status().Processing)
	f.gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_Begin_Success(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 600, 2)))

	var sent model.CreateOrderRequest
	f.gw.On("CreateOrder", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(model.CreateOrderRequest) }).
		Return(model.CreateOrderResult{
			Order:   model.RemoteOrder{ID: "order_rzp_1", Amount: 120000, Currency: "INR"},
			OrderID: "o1",
		}, nil).Once()

	opts, err := f.orch.Begin(context.Background())
	require.NoError(t, err)

	assert.True(t, sent.Subtotal.Equal(dec(1200)))
	assert.True(t, sent.Shipping.IsZero())
	assert.True(t, sent.Amount.Equal(dec(1200)))

	assert.Equal(t, "rzp_test_key", opts.Key)
	assert.Equal(t, int64(120000), opts.Amount)
	assert.Equal(t, "INR", opts.Currency)
	assert.Equal(t, "order_rzp_1", opts.OrderID)
	assert.Equal(t, "Elegent Furniture", opts.Name)
	assert.Equal(t, "o1", opts.Notes["orderId"])

	st := f.orch.Status()
	assert.Equal(t, usecase.CheckoutAwaitingPayment, st.State)
	assert.True(t, st.Processing)
	assert.Equal(t, "order_rzp_1", st.RazorpayOrderID)
}

func TestCheckout_Begin_AmountFallsBackToLocalTotal(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(model.CreateOrderResult{Order: model.RemoteOrder{ID: "order_x"}, OrderID: "o1"}, nil).Once()

	opts, err := f.orch.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(19900), opts.Amount)
	assert.Equal(t, "INR", opts.Currency)
}

func TestCheckout_Begin_SecondCallWhileProcessing(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	_, err := f.orch.Begin(context.Background())
	assert.ErrorIs(t, err, usecase.ErrCheckoutInProgress)
	f.gw.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestCheckout_Begin_MissingOrderID(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(model.CreateOrderResult{OrderID: "o1"}, nil).Once()

	_, err := f.orch.Begin(context.Background())
	assert.ErrorIs(t, err, usecase.ErrInvalidOrderResponse)
	assert.Equal(t, "Invalid order response from server", err.Error())
	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
	assert.False(t, f.orch.Status().Processing)
	assert.Contains(t, f.sess.messages(), "Invalid order response from server")
}

func TestCheckout_Begin_ErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		reason  error
		message string
	}{
		{"profile mobile", &repo.APIError{Status: 400, Message: "Please add your mobile number"}, usecase.ErrProfileIncomplete, "Please add your mobile number"},
		{"profile address", &repo.APIError{Status: 400, Message: "Shipping Address missing"}, usecase.ErrProfileIncomplete, "Shipping Address missing"},
		{"not found", &repo.APIError{Status: 404}, usecase.ErrCreateOrderFailed, "Checkout service unavailable. Please try again later."},
		{"backend message", &repo.APIError{Status: 422, Message: "Out of stock"}, usecase.ErrCreateOrderFailed, "Out of stock"},
		{"network", repo.ErrUnavailable, usecase.ErrCreateOrderFailed, "Failed to initiate checkout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
			f.gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
				Return(model.CreateOrderResult{}, tc.err).Once()

			_, err := f.orch.Begin(context.Background())
			assert.ErrorIs(t, err, tc.reason)
			ce, ok := usecase.AsCheckoutError(err)
			require.True(t, ok)
			assert.Equal(t, tc.message, ce.Message)
			assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
			assert.Contains(t, f.sess.messages(), tc.message)
		})
	}
}

func TestCheckout_Dismiss_NoVerification(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	require.NoError(t, f.orch.Dismiss(context.Background()))

	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
	assert.False(t, f.orch.Status().Processing)
	assert.Contains(t, f.sess.messages(), "Payment cancelled")
	f.gw.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestCheckout_Dismiss_FromIdleRejected(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	assert.ErrorIs(t, f.orch.Dismiss(context.Background()), usecase.ErrInvalidTransition)
}

func TestCheckout_PaymentFailed(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	err := f.orch.PaymentFailed(context.Background(), "card declined")
	assert.ErrorIs(t, err, usecase.ErrPaymentFailed)
	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
	assert.Contains(t, f.sess.messages(), "Payment failed: card declined")
	f.gw.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestCheckout_PaymentSucceeded_VerifiesAndRefreshesCart(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 600, 2)))
	f.begin(t)

	want := model.PaymentVerification{PaymentReceipt: okReceipt, OrderID: "o1"}
	f.receipts.On("Save", mock.Anything, mock.MatchedBy(func(r model.PendingReceipt) bool {
		return r.RazorpayOrderID == "order_rzp_1" && r.OrderID == "o1" && r.UserID == "u1"
	})).Return(nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, want).Return(nil).Once()
	f.receipts.On("Delete", mock.Anything, "order_rzp_1").Return(nil).Once()
	f.cartGW.On("GetCart", mock.Anything).Return(model.EmptyCart(), nil).Once()

	require.NoError(t, f.orch.PaymentSucceeded(context.Background(), okReceipt))

	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
	assert.False(t, f.orch.Status().Processing)
	assert.Contains(t, f.sess.messages(), "Payment successful! Order placed.")
	assert.True(t, f.cart.Snapshot().IsEmpty())
	f.receipts.AssertExpectations(t)
	f.gw.AssertExpectations(t)
	f.cartGW.AssertExpectations(t)
}

func TestCheckout_PaymentSucceeded_VerifyFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 600, 2)))
	f.begin(t)

	f.receipts.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(&repo.APIError{Status: 400, Message: "Invalid signature"}).Once()
	f.receipts.On("RecordAttempt", mock.Anything, "order_rzp_1", mock.Anything).Return(nil).Once()

	err := f.orch.PaymentSucceeded(context.Background(), okReceipt)
	assert.ErrorIs(t, err, usecase.ErrVerificationFailed)

	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
	assert.Contains(t, f.sess.messages(), "Invalid signature")
	got := f.cart.Snapshot()
	assert.Len(t, got.Items, 1)
	assert.True(t, got.TotalPrice.Equal(dec(1200)))

	f.receipts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.cartGW.AssertNumberOfCalls(t, "GetCart", 1)
	// 400は再試行しない
	f.gw.AssertNumberOfCalls(t, "VerifyPayment", 1)
}

func TestCheckout_PaymentSucceeded_RetriesTransientVerifyErrors(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	f.receipts.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Return(repo.ErrUnavailable).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Return(&repo.APIError{Status: 502}).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Return(nil).Once()
	f.receipts.On("Delete", mock.Anything, "order_rzp_1").Return(nil).Once()
	f.cartGW.On("GetCart", mock.Anything).Return(model.EmptyCart(), nil).Once()

	require.NoError(t, f.orch.PaymentSucceeded(context.Background(), okReceipt))
	f.gw.AssertNumberOfCalls(t, "VerifyPayment", 3)
}

func TestCheckout_PaymentSucceeded_GivesUpAfterMaxRetries(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	f.receipts.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Return(repo.ErrUnavailable)
	f.receipts.On("RecordAttempt", mock.Anything, "order_rzp_1", mock.Anything).Return(nil).Once()

	err := f.orch.PaymentSucceeded(context.Background(), okReceipt)
	assert.ErrorIs(t, err, usecase.ErrVerificationFailed)
	assert.ErrorIs(t, err, repo.ErrUnavailable)
	assert.Contains(t, f.sess.messages(), "Payment verification failed")
	// 初回 + 再試行2回
	f.gw.AssertNumberOfCalls(t, "VerifyPayment", 3)
}

func TestCheckout_PaymentSucceeded_MismatchedOrder(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	other := okReceipt
	other.RazorpayOrderID = "order_other"
	err := f.orch.PaymentSucceeded(context.Background(), other)
	assert.ErrorIs(t, err, usecase.ErrOrderMismatch)
	assert.Equal(t, usecase.CheckoutAwaitingPayment, f.orch.Status().State)
	f.gw.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestCheckout_PaymentSucceeded_FromIdleRejected(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))

	err := f.orch.PaymentSucceeded(context.Background(), okReceipt)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
}

func TestCheckout_RetryPending(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))

	pending := []model.PendingReceipt{
		{RazorpayOrderID: "r1", OrderID: "o1", RazorpayPaymentID: "pay1", RazorpaySignature: "s1", UserID: "u1"},
		{RazorpayOrderID: "r2", OrderID: "o2", RazorpayPaymentID: "pay2", RazorpaySignature: "s2", UserID: "u1", Attempts: 1},
	}
	f.receipts.On("ListByUserID", mock.Anything, "u1").Return(pending, nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, pending[0].Verification()).Return(nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, pending[1].Verification()).
		Return(&repo.APIError{Status: 400, Message: "Invalid signature"}).Once()
	f.receipts.On("Delete", mock.Anything, "r1").Return(nil).Once()
	f.receipts.On("RecordAttempt", mock.Anything, "r2", mock.Anything).Return(nil).Once()
	f.cartGW.On("GetCart", mock.Anything).Return(model.EmptyCart(), nil).Once()

	n, err := f.orch.RetryPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, f.sess.messages(), "Payment successful! Order placed.")
	f.receipts.AssertExpectations(t)
	f.gw.AssertExpectations(t)
}

func TestCheckout_RetryPending_StopsOnUnauthorized(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))

	pending := []model.PendingReceipt{
		{RazorpayOrderID: "r1", OrderID: "o1", UserID: "u1"},
		{RazorpayOrderID: "r2", OrderID: "o2", UserID: "u1"},
	}
	f.receipts.On("ListByUserID", mock.Anything, "u1").Return(pending, nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Return(repo.ErrUnauthorized).Once()

	n, err := f.orch.RetryPending(context.Background())
	assert.ErrorIs(t, err, repo.ErrUnauthorized)
	assert.Equal(t, 0, n)
	f.gw.AssertNumberOfCalls(t, "VerifyPayment", 1)
}

func TestCheckout_Reset(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	f.orch.Reset()

	st := f.orch.Status()
	assert.Equal(t, usecase.CheckoutIdle, st.State)
	assert.False(t, st.Processing)
	assert.Empty(t, st.RazorpayOrderID)
	assert.True(t, errors.Is(f.orch.Dismiss(context.Background()), usecase.ErrInvalidTransition))
}

func TestCheckout_DismissRacingPaymentSucceeded_KeepsVerifyingBusy(t *testing.T) {
	for i := 0; i < 200; i++ {
		f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
		f.begin(t)

		release := make(chan struct{})
		f.receipts.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
		f.receipts.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()
		f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			<-release
		}).Return(nil).Maybe()
		f.cartGW.On("GetCart", mock.Anything).Return(model.EmptyCart(), nil).Maybe()

		succeeded := make(chan error, 1)
		dismissed := make(chan error, 1)
		go func() { succeeded <- f.orch.PaymentSucceeded(context.Background(), okReceipt) }()
		go func() { dismissed <- f.orch.Dismiss(context.Background()) }()

		if err := <-dismissed; err == nil {
			close(release)
			assert.ErrorIs(t, <-succeeded, usecase.ErrInvalidTransition)
		} else {
			// 検証が先に始まっていれば Dismiss は拒否され、処理中のまま
			assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
			st := f.orch.Status()
			assert.Equal(t, usecase.CheckoutVerifyingPayment, st.State)
			assert.True(t, st.Processing)
			close(release)
			assert.NoError(t, <-succeeded)
		}
		assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
		assert.False(t, f.orch.Status().Processing)
	}
}

func TestCheckout_DismissWhileVerifying_Rejected(t *testing.T) {
	f := newCheckoutFixture(t, cartOf(line("p1", 100, 1)))
	f.begin(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.receipts.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.receipts.On("Delete", mock.Anything, "order_rzp_1").Return(nil).Once()
	f.gw.On("VerifyPayment", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil).Once()
	f.cartGW.On("GetCart", mock.Anything).Return(model.EmptyCart(), nil).Once()

	done := make(chan error, 1)
	go func() { done <- f.orch.PaymentSucceeded(context.Background(), okReceipt) }()
	<-started

	assert.ErrorIs(t, f.orch.Dismiss(context.Background()), usecase.ErrInvalidTransition)
	assert.ErrorIs(t, f.orch.PaymentFailed(context.Background(), "late"), usecase.ErrInvalidTransition)
	st := f.orch.Status()
	assert.Equal(t, usecase.CheckoutVerifyingPayment, st.State)
	assert.True(t, st.Processing)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, usecase.CheckoutIdle, f.orch.Status().State)
}
