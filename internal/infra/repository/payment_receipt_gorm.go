package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PaymentReceiptGormRepository struct {
	db *gorm.DB
}

func NewPaymentReceiptGormRepository(db *gorm.DB) *PaymentReceiptGormRepository {
	return &PaymentReceiptGormRepository{db: db}
}

// Save は新規作成。同じ razorpay_order_id が既にあれば署名などを上書きする。
func (r *PaymentReceiptGormRepository) Save(ctx context.Context, rec model.PendingReceipt) error {
	err := r.db.WithContext(ctx).Create(&rec).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	return r.db.WithContext(ctx).Model(&model.PendingReceipt{}).
		Where("razorpay_order_id = ?", rec.RazorpayOrderID).
		Updates(map[string]any{
			"order_id":            rec.OrderID,
			"razorpay_payment_id": rec.RazorpayPaymentID,
			"razorpay_signature":  rec.RazorpaySignature,
			"user_id":             rec.UserID,
			"updated_at":          time.Now(),
		}).Error
}

func (r *PaymentReceiptGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.PendingReceipt, error) {
	var items []model.PendingReceipt
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return []model.PendingReceipt{}, err
	}
	return items, nil
}

func (r *PaymentReceiptGormRepository) RecordAttempt(ctx context.Context, razorpayOrderID string, lastErr string) error {
	res := r.db.WithContext(ctx).Model(&model.PendingReceipt{}).
		Where("razorpay_order_id = ?", razorpayOrderID).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastErr,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PaymentReceiptGormRepository) Delete(ctx context.Context, razorpayOrderID string) error {
	return r.db.WithContext(ctx).
		Where("razorpay_order_id = ?", razorpayOrderID).
		Delete(&model.PendingReceipt{}).Error
}

// pgx は一意制約違反を *pgconn.PgError (23505) で返す
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var _ repo.PaymentReceiptRepository = (*PaymentReceiptGormRepository)(nil)
