package service_test

import (
	"AssetVault/internal/apperr"
	"AssetVault/internal/repo"
	"AssetVault/internal/service"
	"context"
	"errors"
	"testing"
)

type brokenStats struct{}

func (brokenStats) OwnerTotals(ctx context.Context, ownerID uint64) (repo.AssetTotals, error) {
	return repo.AssetTotals{}, errors.New("db down")
}

func (brokenStats) Totals(ctx context.Context) (repo.AssetTotals, error) {
	return repo.AssetTotals{}, errors.New("db down")
}

func (brokenStats) StorageByOwner(ctx context.Context) ([]repo.StorageUsage, error) {
	return nil, errors.New("db down")
}

func (brokenStats) Count(ctx context.Context) (int64, error) {
	return 0, errors.New("db down")
}

func TestStatsFollowUploadsAndDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stats := service.NewStatsService(f.ledger, f.users)

	pub := jpeg(f.owner.ID, "pub.jpg", []byte("12345"))
	pub.Permissions = `{"public": true}`
	for _, in := range []service.UploadInput{pub, jpeg(f.owner.ID, "a.jpg", []byte("123")), jpeg(f.other.ID, "b.jpg", []byte("1"))} {
		if _, err := f.svc.Upload(ctx, in); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
	}
	if _, err := f.svc.Delete(ctx, "a.jpg", f.owner.ID, false); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	own, err := stats.OwnerStats(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("owner stats: %v", err)
	}
	if own.TotalFiles != 1 || own.TotalSize != 5 || own.PublicFiles != 1 || own.PrivateFiles != 0 {
		t.Errorf("unexpected owner stats %+v", own)
	}

	public, private, err := stats.Visibility(ctx)
	if err != nil {
		t.Fatalf("visibility: %v", err)
	}
	count, _ := stats.AssetCount(ctx)
	if public+private != count || public != 1 || private != 1 {
		t.Errorf("public=%d private=%d count=%d", public, private, count)
	}

	users, err := stats.UserCount(ctx)
	if err != nil || users != 2 {
		t.Errorf("user count = %d, %v", users, err)
	}

	usage, err := stats.StorageByOwner(ctx)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	byUser := map[uint64]int64{}
	for _, u := range usage {
		byUser[u.UserID] = u.TotalSize
	}
	if byUser[f.owner.ID] != 5 || byUser[f.other.ID] != 1 {
		t.Errorf("unexpected storage %v", byUser)
	}
}

func TestStatsSurfaceStorageUnavailable(t *testing.T) {
	stats := service.NewStatsService(brokenStats{}, brokenStats{})
	ctx := context.Background()
	if _, err := stats.OwnerStats(ctx, 1); apperr.KindOf(err) != apperr.StorageUnavailable {
		t.Errorf("owner stats: %v", err)
	}
	if _, err := stats.UserCount(ctx); apperr.KindOf(err) != apperr.StorageUnavailable {
		t.Errorf("user count: %v", err)
	}
	if _, err := stats.StorageByOwner(ctx); apperr.KindOf(err) != apperr.StorageUnavailable {
		t.Errorf("storage: %v", err)
	}
	if _, _, err := stats.Visibility(ctx); apperr.KindOf(err) != apperr.StorageUnavailable {
		t.Errorf("visibility: %v", err)
	}
}
