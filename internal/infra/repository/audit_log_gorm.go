package repository

import (
	"context"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"

	"gorm.io/gorm"
)

// 管理操作の監査ログ（gorm）
type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	if err := listAuditLogs(r.db.WithContext(ctx), filter, &logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func listAuditLogs(tx *gorm.DB, filter repo.AuditLogFilter, dest *[]model.AuditLog) *gorm.DB {
	limit, offset := normalizePage(filter)
	return tx.
		Scopes(auditScopes(filter)...).
		Order("created_at DESC").Order("id DESC"). //新しい順
		Limit(limit).Offset(offset).
		Find(dest)
}

// auditScopes は指定された条件だけ WHERE にする
func auditScopes(f repo.AuditLogFilter) []func(*gorm.DB) *gorm.DB {
	eq := func(col string, v any) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB { return db.Where(col+" = ?", v) }
	}

	var scopes []func(*gorm.DB) *gorm.DB
	if f.ActorUserID != nil {
		scopes = append(scopes, eq("actor_user_id", *f.ActorUserID))
	}
	if f.Action != nil {
		scopes = append(scopes, eq("action", string(*f.Action)))
	}
	if f.ResourceType != nil {
		scopes = append(scopes, eq("resource_type", string(*f.ResourceType)))
	}
	if from := f.CreatedFrom; from != nil {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("created_at >= ?", *from) })
	}
	if to := f.CreatedTo; to != nil {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("created_at <= ?", *to) })
	}
	return scopes
}

// limit は 1..200（範囲外は 50）
func normalizePage(f repo.AuditLogFilter) (int, int) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return limit, max(f.Offset, 0)
}
