package service

import (
	"AssetVault/model"
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ActivityStore appends audit entries.
type ActivityStore interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
}

// activityRecorder writes audit entries best-effort; failures are logged only.
type activityRecorder struct {
	store  ActivityStore
	logger *slog.Logger
}

func (r activityRecorder) record(ctx context.Context, event string, userID uint64, assetID *uuid.UUID, message string) {
	if r.store == nil {
		return
	}
	entry := &model.ActivityLog{
		EventType: event,
		AssetID:   assetID,
		Message:   message,
	}
	if userID != 0 {
		entry.UserID = &userID
	}
	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.WarnContext(ctx, "append activity log failed",
			slog.String("event_type", event),
			slog.String("err", err.Error()),
		)
	}
}
