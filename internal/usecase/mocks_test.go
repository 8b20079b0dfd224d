package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type CartGatewayMock struct{ mock.Mock }

func (m *CartGatewayMock) GetCart(ctx context.Context) (model.Cart, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartGatewayMock) AddItem(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *CartGatewayMock) RemoveItem(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type CheckoutGatewayMock struct{ mock.Mock }

func (m *CheckoutGatewayMock) CreateOrder(ctx context.Context, req model.CreateOrderRequest, key string) (model.CreateOrderResult, error) {
	args := m.Called(ctx, req, key)
	r, _ := args.Get(0).(model.CreateOrderResult)
	return r, args.Error(1)
}

func (m *CheckoutGatewayMock) VerifyPayment(ctx context.Context, v model.PaymentVerification) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

type ReceiptRepoMock struct{ mock.Mock }

func (m *ReceiptRepoMock) Save(ctx context.Context, r model.PendingReceipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ReceiptRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.PendingReceipt, error) {
	args := m.Called(ctx, userID)
	rs, _ := args.Get(0).([]model.PendingReceipt)
	return rs, args.Error(1)
}

func (m *ReceiptRepoMock) RecordAttempt(ctx context.Context, razorpayOrderID string, lastErr string) error {
	args := m.Called(ctx, razorpayOrderID, lastErr)
	return args.Error(0)
}

func (m *ReceiptRepoMock) Delete(ctx context.Context, razorpayOrderID string) error {
	args := m.Called(ctx, razorpayOrderID)
	return args.Error(0)
}

type CatalogGatewayMock struct{ mock.Mock }

func (m *CatalogGatewayMock) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *CatalogGatewayMock) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CatalogGatewayMock) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	args := m.Called(ctx, query)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

type CatalogCacheMock struct{ mock.Mock }

func (m *CatalogCacheMock) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Bool(1), args.Error(2)
}

func (m *CatalogCacheMock) SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error {
	args := m.Called(ctx, products, ttl)
	return args.Error(0)
}

func (m *CatalogCacheMock) GetProduct(ctx context.Context, productID string) (model.Product, bool, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Bool(1), args.Error(2)
}

func (m *CatalogCacheMock) SetProduct(ctx context.Context, p model.Product, ttl time.Duration) error {
	args := m.Called(ctx, p, ttl)
	return args.Error(0)
}

type AccountGatewayMock struct{ mock.Mock }

func (m *AccountGatewayMock) Login(ctx context.Context, email string, password string) (model.LoginResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(model.LoginResult)
	return r, args.Error(1)
}

func (m *AccountGatewayMock) Register(ctx context.Context, in model.Registration) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *AccountGatewayMock) GetProfile(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *AccountGatewayMock) UpdateProfile(ctx context.Context, in model.ProfileUpdate) (model.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

type AdminGatewayMock struct{ mock.Mock }

func (m *AdminGatewayMock) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *AdminGatewayMock) DeleteOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *AdminGatewayMock) Dashboard(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *AdminGatewayMock) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}

func (m *AdminGatewayMock) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type ValidatorMock struct{ mock.Mock }

func (m *ValidatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *ValidatorMock) ValidateRegister(ctx context.Context, in model.Registration) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *ValidatorMock) ValidateProfile(ctx context.Context, in model.ProfileUpdate) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

// =====================
// Fakes
// =====================

type fakeSession struct {
	mu      sync.Mutex
	userID  string
	cred    bool
	notices []usecase.Notice
}

func newFakeSession() *fakeSession {
	return &fakeSession{userID: "u1", cred: true}
}

func (s *fakeSession) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred
}

func (s *fakeSession) UserID() string {
	return s.userID
}

func (s *fakeSession) Notify(level usecase.NoticeLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, usecase.Notice{Level: level, Message: message, At: time.Now()})
}

func (s *fakeSession) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.notices))
	for _, n := range s.notices {
		out = append(out, n.Message)
	}
	return out
}

// =====================
// Helpers
// =====================

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func snap(id string, price int64) *model.ProductSnapshot {
	return &model.ProductSnapshot{ID: id, Name: "Product " + id, Price: dec(price)}
}

func line(id string, price int64, qty int) model.CartLine {
	return model.CartLine{Product: *snap(id, price), Quantity: qty, Price: dec(price)}
}

func cartOf(lines ...model.CartLine) model.Cart {
	c := model.Cart{Items: lines}
	c.Recalculate()
	return c
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), want), "error %q does not contain %q", err.Error(), want)
	}
}
