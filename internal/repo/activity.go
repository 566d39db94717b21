package repo

import (
	"AssetVault/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Append writes one audit entry.
func (r *ActivityRepo) Append(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}
