package repo

import (
	"AssetVault/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// newestFirst breaks created_at ties by id so every read agrees on which row is newest.
const newestFirst = "created_at DESC, id DESC"

// AssetRepo is the ledger of asset metadata rows.
type AssetRepo struct {
	db *gorm.DB
}

func NewAssetRepo(db *gorm.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

// Insert stores a new asset row; the identifier and default permissions are set by the model hook.
func (r *AssetRepo) Insert(ctx context.Context, asset *model.Asset) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(asset).Error
}

// ListByOwner returns the owner's assets, newest first.
func (r *AssetRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(newestFirst).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// ListAll returns every asset, newest first.
func (r *AssetRepo) ListAll(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := r.db.WithContext(ctx).Order(newestFirst).Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// FindByFilenameAndOwner returns the newest asset with that filename owned by ownerID.
func (r *AssetRepo) FindByFilenameAndOwner(ctx context.Context, filename string, ownerID uint64) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.WithContext(ctx).
		Where("filename = ? AND owner_id = ?", filename, ownerID).
		Order(newestFirst).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// LocatorInUse reports whether any row still references the locator.
func (r *AssetRepo) LocatorInUse(ctx context.Context, locator string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Asset{}).Where("locator = ?", locator).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByFilenameAndOwner removes the owner's newest asset with that filename and returns it.
func (r *AssetRepo) DeleteByFilenameAndOwner(ctx context.Context, filename string, ownerID uint64) (*model.Asset, error) {
	return r.deleteNewest(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("filename = ? AND owner_id = ?", filename, ownerID)
	})
}

// DeleteByFilename removes the newest asset with that filename regardless of owner.
func (r *AssetRepo) DeleteByFilename(ctx context.Context, filename string) (*model.Asset, error) {
	return r.deleteNewest(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("filename = ?", filename)
	})
}

// deleteNewest locks the target row and deletes it by id. A concurrent delete that got there
// first leaves RowsAffected at zero, which reports as not found.
func (r *AssetRepo) deleteNewest(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (*model.Asset, error) {
	var deleted model.Asset
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := scope(tx.Clauses(clause.Locking{Strength: "UPDATE"}))
		if err := locked.Order(newestFirst).First(&deleted).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", deleted.ID).Delete(&model.Asset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
