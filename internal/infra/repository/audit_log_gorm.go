package repository

import (
	"context"

	"ordermanagement/internal/domain/model"
	repo "ordermanagement/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// 注文の状態変化の履歴（監査ログ）をpostgresに保存する。
type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	entries := make([]model.AuditLog, 0)
	err := r.db.WithContext(ctx).
		Scopes(auditMatches(filter), auditPage(filter.Limit, filter.Offset)).
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// nilの条件は絞り込まない
func auditMatches(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		cond := map[string]any{}
		if f.Action != nil {
			cond["action"] = *f.Action
		}
		if f.ResourceType != nil {
			cond["resource_type"] = *f.ResourceType
		}
		if f.ResourceID != nil {
			cond["resource_id"] = *f.ResourceID
		}
		if len(cond) == 0 {
			return q
		}
		return q.Where(cond)
	}
}

func auditPage(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxAuditPageSize {
		limit = defaultAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return func(q *gorm.DB) *gorm.DB {
		return q.Limit(limit).Offset(offset)
	}
}
