package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PermissionsVersion is bumped whenever Permissions gains a field with new semantics.
const PermissionsVersion = 1

// Permissions is the visibility descriptor persisted with each asset.
type Permissions struct {
	Version int  `json:"version"`
	Public  bool `json:"public"`
}

// PrivatePermissions is the default descriptor for assets uploaded without one.
func PrivatePermissions() Permissions {
	return Permissions{Version: PermissionsVersion, Public: false}
}

type Asset struct {
	ID uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`

	Filename string `gorm:"column:filename;type:varchar(255);not null;index:idx_owner_filename,priority:2" json:"filename"`

	// Locator is the durable URL of the backing object.
	Locator string `gorm:"column:locator;type:varchar(1024);not null" json:"locator"`

	OwnerID uint64 `gorm:"column:owner_id;not null;index:idx_owner_filename,priority:1" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Size     int64  `gorm:"column:size;not null" json:"size"`
	MimeType string `gorm:"column:mimetype;type:varchar(100);not null" json:"mimetype"`

	Tags        datatypes.JSONSlice[string]     `gorm:"column:tags" json:"tags"`
	Permissions datatypes.JSONType[Permissions] `gorm:"column:permissions" json:"permissions"`

	// IsPublic mirrors Permissions.Public so visibility can be aggregated without JSON functions.
	IsPublic bool `gorm:"column:is_public;not null;default:false;index" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the database table name.
func (Asset) TableName() string {
	return "assets"
}

// BeforeCreate assigns a fresh identifier and keeps IsPublic in sync with Permissions.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Tags == nil {
		a.Tags = datatypes.JSONSlice[string]{}
	}
	perms := a.Permissions.Data()
	if perms.Version == 0 {
		perms.Version = PermissionsVersion
		a.Permissions = datatypes.NewJSONType(perms)
	}
	a.IsPublic = perms.Public
	return nil
}
