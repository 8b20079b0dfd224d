package repository

import (
	"context"
	"sync"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

type auditLogMemoryRepository struct {
	mu   sync.Mutex
	logs []model.AuditLog
	next int64
}

func NewAuditLogMemoryRepository() repo.AuditLogRepository {
	return &auditLogMemoryRepository{}
}

func (r *auditLogMemoryRepository) Create(ctx context.Context, log model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	log.ID = r.next
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *auditLogMemoryRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	//新しい順
	matched := []model.AuditLog{}
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if filter.ActorUserID != nil && l.ActorUserID != *filter.ActorUserID {
			continue
		}
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.ResourceType != nil && l.ResourceType != *filter.ResourceType {
			continue
		}
		if filter.CreatedFrom != nil && l.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && l.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, l)
	}

	limit, offset := normalizePage(filter)
	if offset >= len(matched) {
		return []model.AuditLog{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}
