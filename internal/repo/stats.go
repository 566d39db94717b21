package repo

import (
	"AssetVault/model"
	"context"
)

// AssetTotals aggregates a set of assets.
type AssetTotals struct {
	TotalFiles   int64 `json:"total_files"`
	TotalSize    int64 `json:"total_size"`
	PublicFiles  int64 `json:"public_files"`
	PrivateFiles int64 `json:"private_files"`
}

// StorageUsage is the byte total for one user.
type StorageUsage struct {
	UserID    uint64 `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	TotalSize int64  `json:"total_size"`
}

const totalsSelect = "COUNT(*) AS total_files, " +
	"COALESCE(SUM(size), 0) AS total_size, " +
	"COALESCE(SUM(CASE WHEN is_public THEN 1 ELSE 0 END), 0) AS public_files"

func (r *AssetRepo) totals(ctx context.Context, ownerID *uint64) (AssetTotals, error) {
	var out AssetTotals
	q := r.db.WithContext(ctx).Model(&model.Asset{}).Select(totalsSelect)
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	if err := q.Scan(&out).Error; err != nil {
		return AssetTotals{}, err
	}
	out.PrivateFiles = out.TotalFiles - out.PublicFiles
	return out, nil
}

// OwnerTotals aggregates one owner's assets; an owner with none gets zeros.
func (r *AssetRepo) OwnerTotals(ctx context.Context, ownerID uint64) (AssetTotals, error) {
	return r.totals(ctx, &ownerID)
}

// Totals aggregates every asset in the ledger.
func (r *AssetRepo) Totals(ctx context.Context) (AssetTotals, error) {
	return r.totals(ctx, nil)
}

// StorageByOwner returns byte totals for every user, including users without assets.
func (r *AssetRepo) StorageByOwner(ctx context.Context) ([]StorageUsage, error) {
	var out []StorageUsage
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.name AS name, users.email AS email, COALESCE(SUM(assets.size), 0) AS total_size").
		Joins("LEFT JOIN assets ON assets.owner_id = users.id").
		Group("users.id, users.name, users.email").
		Order("total_size DESC").
		Order("users.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
