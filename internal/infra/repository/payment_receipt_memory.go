package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

// PaymentReceiptMemoryRepository は DATABASE_URL が無いとき用（プロセス内だけ）
type PaymentReceiptMemoryRepository struct {
	mu    sync.Mutex
	items map[string]model.PendingReceipt
	now   func() time.Time
}

func NewPaymentReceiptMemoryRepository() *PaymentReceiptMemoryRepository {
	return &PaymentReceiptMemoryRepository{items: map[string]model.PendingReceipt{}, now: time.Now}
}

func (r *PaymentReceiptMemoryRepository) Save(ctx context.Context, rec model.PendingReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if old, ok := r.items[rec.RazorpayOrderID]; ok {
		rec.CreatedAt = old.CreatedAt
		rec.Attempts = old.Attempts
		rec.LastError = old.LastError
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.items[rec.RazorpayOrderID] = rec
	return nil
}

func (r *PaymentReceiptMemoryRepository) ListByUserID(ctx context.Context, userID string) ([]model.PendingReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.PendingReceipt{}
	for _, rec := range r.items {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentReceiptMemoryRepository) RecordAttempt(ctx context.Context, razorpayOrderID string, lastErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[razorpayOrderID]
	if !ok {
		return repo.ErrNotFound
	}
	rec.Attempts++
	rec.LastError = lastErr
	rec.UpdatedAt = r.now()
	r.items[razorpayOrderID] = rec
	return nil
}

func (r *PaymentReceiptMemoryRepository) Delete(ctx context.Context, razorpayOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, razorpayOrderID)
	return nil
}

var _ repo.PaymentReceiptRepository = (*PaymentReceiptMemoryRepository)(nil)
