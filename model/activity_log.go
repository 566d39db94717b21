package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventRegister    = "register"
	EventLogin       = "login"
	EventUpload      = "upload"
	EventDelete      = "delete"
	EventAdminDelete = "admin_delete"
)

// ActivityLog is an append-only audit record. AssetID is kept without a foreign key
// so entries still name the asset after its row is gone.
type ActivityLog struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	EventType string `gorm:"column:event_type;type:varchar(32);not null;index" json:"event_type"`

	UserID *uint64 `gorm:"column:user_id;index" json:"user_id,omitempty"`
	User   *User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:SET NULL" json:"-"`

	AssetID *uuid.UUID `gorm:"column:asset_id;type:char(36);index" json:"asset_id,omitempty"`

	Message string `gorm:"column:message;type:text" json:"message"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
