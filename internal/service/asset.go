package service

import (
	"AssetVault/config"
	"AssetVault/internal/apperr"
	"AssetVault/internal/storage"
	"AssetVault/model"
	"AssetVault/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PresignExpiry is how long a private asset's download URL stays valid.
const PresignExpiry = 10 * time.Minute

// AssetLedger is the relational record of assets.
type AssetLedger interface {
	Insert(ctx context.Context, asset *model.Asset) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Asset, error)
	ListAll(ctx context.Context) ([]model.Asset, error)
	FindByFilenameAndOwner(ctx context.Context, filename string, ownerID uint64) (*model.Asset, error)
	DeleteByFilenameAndOwner(ctx context.Context, filename string, ownerID uint64) (*model.Asset, error)
	DeleteByFilename(ctx context.Context, filename string) (*model.Asset, error)
}

// UploadInput is a validated-at-the-boundary upload request.
type UploadInput struct {
	OwnerID     uint64
	Filename    string
	ContentType string
	// Size is the size the client declared; the staged byte count is authoritative.
	Size        int64
	Body        io.Reader
	Tags        string
	Permissions string
}

type AssetServiceConfig struct {
	MaxBytes int64
	TempDir  string
}

// AssetService coordinates local staging, the object store and the ledger.
type AssetService struct {
	ledger   AssetLedger
	store    storage.Store
	orphans  OrphanReporter
	activity activityRecorder
	logger   *slog.Logger
	maxBytes int64
	tempDir  string
	now      func() time.Time
}

func NewAssetService(
	ledger AssetLedger,
	store storage.Store,
	orphans OrphanReporter,
	activity ActivityStore,
	logger *slog.Logger,
	cfg AssetServiceConfig,
) *AssetService {
	if logger == nil {
		logger = slog.Default()
	}
	if orphans == nil {
		orphans = NewLogOrphanReporter(logger)
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = config.DefaultUploadMaxBytes
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &AssetService{
		ledger:   ledger,
		store:    store,
		orphans:  orphans,
		activity: activityRecorder{store: activity, logger: logger},
		logger:   logger,
		maxBytes: cfg.MaxBytes,
		tempDir:  cfg.TempDir,
		now:      time.Now,
	}
}

func ledgerError(action string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.NotFound, "asset not found", err)
	}
	return apperr.Wrap(apperr.StorageUnavailable, "ledger unavailable", fmt.Errorf("%s: %w", action, err))
}

func (s *AssetService) tooLarge() error {
	return apperr.New(apperr.Validation, fmt.Sprintf("file too large: limit is %d bytes", s.maxBytes))
}

// BuildObjectKey returns a time-ordered key that never collides between uploads.
func BuildObjectKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixNano(), uuid.NewString()[:8], utils.SanitizeFilename(filename))
}

// stage copies at most maxBytes+1 bytes into a temp file and rewinds it.
// The caller must call the returned cleanup.
func (s *AssetService) stage(body io.Reader) (*os.File, int64, func(), error) {
	f, err := os.CreateTemp(s.tempDir, "upload-*")
	if err != nil {
		return nil, 0, func() {}, err
	}
	cleanup := func() {
		_ = f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove staged upload failed", slog.String("path", f.Name()), slog.String("err", err.Error()))
		}
	}
	n, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		cleanup()
		return nil, 0, func() {}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, func() {}, err
	}
	return f, n, cleanup, nil
}

// Upload validates the input, stages it, stores the object and records the asset.
// The object is written before the row so a row never points at a missing object.
func (s *AssetService) Upload(ctx context.Context, in UploadInput) (*model.Asset, error) {
	if in.Body == nil || in.Filename == "" {
		return nil, apperr.New(apperr.Validation, "file is required")
	}
	if len(in.Filename) > 255 {
		return nil, apperr.New(apperr.Validation, "filename too long")
	}
	if isReservedFilename(in.Filename) {
		return nil, apperr.New(apperr.Validation, fmt.Sprintf("filename %q is reserved", in.Filename))
	}
	mimeType, err := validateContentType(in.ContentType)
	if err != nil {
		return nil, err
	}
	if in.Size > s.maxBytes {
		return nil, s.tooLarge()
	}
	tags, err := ParseTags(in.Tags)
	if err != nil {
		return nil, err
	}
	perms := ParsePermissions(in.Permissions)

	// a client that goes away must not interrupt the store/ledger sequence
	ctx = context.WithoutCancel(ctx)

	staged, size, cleanup, err := s.stage(in.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.ObjectStoreError, "stage upload failed", err)
	}
	defer cleanup()
	if size > s.maxBytes {
		return nil, s.tooLarge()
	}

	key := BuildObjectKey(s.now(), in.Filename)
	locator, err := s.store.PutObject(ctx, key, staged, size, storage.PutOptions{
		ContentType: mimeType,
		Public:      perms.Public,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ObjectStoreError, "upload to object store failed", err)
	}
	cleanup()

	asset := &model.Asset{
		Filename:    in.Filename,
		Locator:     locator,
		OwnerID:     in.OwnerID,
		Size:        size,
		MimeType:    mimeType,
		Tags:        datatypes.JSONSlice[string](tags),
		Permissions: datatypes.NewJSONType(perms),
	}
	if err := s.ledger.Insert(ctx, asset); err != nil {
		// the stored name differs from key for public objects
		if stored, keyErr := s.store.KeyFromLocator(locator); keyErr == nil {
			key = stored
		}
		s.orphans.Report(ctx, Orphan{
			Reason:  OrphanLedgerInsertFailed,
			Bucket:  s.store.Bucket(),
			Key:     key,
			Locator: locator,
			OwnerID: in.OwnerID,
			Error:   err.Error(),
			At:      s.now(),
		})
		return nil, apperr.Wrap(apperr.OrphanResource, "file stored but could not be recorded", err)
	}

	s.activity.record(ctx, model.EventUpload, in.OwnerID, &asset.ID, "uploaded "+asset.Filename)
	return asset, nil
}

// Delete removes the ledger row first, then the backing object. A missing row is the
// authoritative signal that the asset is gone, so a failed object removal leaves at
// worst an invisible orphan.
func (s *AssetService) Delete(ctx context.Context, filename string, requesterID uint64, isAdmin bool) (*model.Asset, error) {
	ctx = context.WithoutCancel(ctx)

	var (
		asset *model.Asset
		err   error
	)
	if isAdmin {
		asset, err = s.ledger.DeleteByFilename(ctx, filename)
	} else {
		asset, err = s.ledger.DeleteByFilenameAndOwner(ctx, filename, requesterID)
	}
	if err != nil {
		return nil, ledgerError("delete asset", err)
	}

	orphan := Orphan{
		Bucket:  s.store.Bucket(),
		Locator: asset.Locator,
		AssetID: asset.ID.String(),
		OwnerID: asset.OwnerID,
	}
	key, err := s.store.KeyFromLocator(asset.Locator)
	if err != nil {
		orphan.Reason = OrphanLocatorUnparsable
		orphan.Error = err.Error()
		orphan.At = s.now()
		s.orphans.Report(ctx, orphan)
		return nil, apperr.Wrap(apperr.OrphanResource, "asset record removed but its object could not be located", err)
	}
	if err := s.store.RemoveObject(ctx, key); err != nil {
		orphan.Reason = OrphanObjectRemoveFailed
		orphan.Key = key
		orphan.Error = err.Error()
		orphan.At = s.now()
		s.orphans.Report(ctx, orphan)
		return nil, apperr.Wrap(apperr.OrphanResource, "asset record removed but object deletion failed", err)
	}

	event := model.EventDelete
	if isAdmin {
		event = model.EventAdminDelete
	}
	s.activity.record(ctx, event, requesterID, &asset.ID, "deleted "+asset.Filename)
	return asset, nil
}

// List returns the owner's assets, newest first.
func (s *AssetService) List(ctx context.Context, ownerID uint64) ([]model.Asset, error) {
	assets, err := s.ledger.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, ledgerError("list assets", err)
	}
	return assets, nil
}

// ListAll returns every asset for administrators.
func (s *AssetService) ListAll(ctx context.Context) ([]model.Asset, error) {
	assets, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, ledgerError("list all assets", err)
	}
	return assets, nil
}

// Get returns the owner's asset and a URL to fetch it: the locator itself for public
// assets, a short-lived presigned URL for private ones.
func (s *AssetService) Get(ctx context.Context, filename string, ownerID uint64) (*model.Asset, string, error) {
	asset, err := s.ledger.FindByFilenameAndOwner(ctx, filename, ownerID)
	if err != nil {
		return nil, "", ledgerError("find asset", err)
	}
	if asset.Permissions.Data().Public {
		return asset, asset.Locator, nil
	}
	key, err := s.store.KeyFromLocator(asset.Locator)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ObjectStoreError, "asset locator is not readable", err)
	}
	url, err := s.store.PresignedGetObject(ctx, key, PresignExpiry)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ObjectStoreError, "presign download url failed", err)
	}
	return asset, url, nil
}
