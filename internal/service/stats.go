package service

import (
	"AssetVault/internal/apperr"
	"AssetVault/internal/repo"
	"context"
	"fmt"
)

// StatsLedger exposes the aggregate reads over the ledger.
type StatsLedger interface {
	OwnerTotals(ctx context.Context, ownerID uint64) (repo.AssetTotals, error)
	Totals(ctx context.Context) (repo.AssetTotals, error)
	StorageByOwner(ctx context.Context) ([]repo.StorageUsage, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsService answers read-only aggregate queries.
type StatsService struct {
	assets StatsLedger
	users  UserCounter
}

func NewStatsService(assets StatsLedger, users UserCounter) *StatsService {
	return &StatsService{assets: assets, users: users}
}

func unavailable(action string, err error) error {
	return apperr.Wrap(apperr.StorageUnavailable, "ledger unavailable", fmt.Errorf("%s: %w", action, err))
}

// OwnerStats aggregates the caller's own assets.
func (s *StatsService) OwnerStats(ctx context.Context, ownerID uint64) (repo.AssetTotals, error) {
	totals, err := s.assets.OwnerTotals(ctx, ownerID)
	if err != nil {
		return repo.AssetTotals{}, unavailable("owner totals", err)
	}
	return totals, nil
}

func (s *StatsService) UserCount(ctx context.Context) (int64, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return 0, unavailable("count users", err)
	}
	return total, nil
}

func (s *StatsService) AssetCount(ctx context.Context) (int64, error) {
	totals, err := s.assets.Totals(ctx)
	if err != nil {
		return 0, unavailable("count assets", err)
	}
	return totals.TotalFiles, nil
}

// StorageByOwner lists byte totals per user; users without assets report 0.
func (s *StatsService) StorageByOwner(ctx context.Context) ([]repo.StorageUsage, error) {
	usage, err := s.assets.StorageByOwner(ctx)
	if err != nil {
		return nil, unavailable("storage by owner", err)
	}
	if usage == nil {
		usage = []repo.StorageUsage{}
	}
	return usage, nil
}

// Visibility splits the ledger into public and private assets.
func (s *StatsService) Visibility(ctx context.Context) (public, private int64, err error) {
	totals, err := s.assets.Totals(ctx)
	if err != nil {
		return 0, 0, unavailable("visibility", err)
	}
	return totals.PublicFiles, totals.PrivateFiles, nil
}
