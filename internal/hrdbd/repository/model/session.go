package model

import (
	"time"

	"gorm.io/gorm"
)

// LoadSession records one load request against the HRD loader and,
// optionally, the BIOS "d" table parser.
type LoadSession struct {
	ID           string         `gorm:"primaryKey;type:text;column:id" json:"id"` // sess-{uint64}
	HRDRoot      string         `gorm:"type:text;not null;column:hrd_root" json:"hrd_root"`
	BIOSImage    string         `gorm:"type:text;column:bios_image" json:"bios_image,omitempty"`
	BIOSImageID  string         `gorm:"type:text;column:bios_image_id" json:"bios_image_id,omitempty"` // img-{uint64}
	Estatus      bool           `gorm:"type:integer;not null;column:estatus" json:"estatus"`
	EnumCount    int            `gorm:"type:integer;not null;column:enum_count" json:"enum_count"`
	BitsetCount  int            `gorm:"type:integer;not null;column:bitset_count" json:"bitset_count"`
	DomainCount  int            `gorm:"type:integer;not null;column:domain_count" json:"domain_count"`
	BIOSValid    bool           `gorm:"type:integer;not null;column:bios_valid" json:"bios_valid"`
	BIOSWarnings string         `gorm:"type:text;column:bios_warnings" json:"bios_warnings,omitempty"`
	CreatedAt    time.Time      `gorm:"type:datetime;not null;index:idx_sessions_created_at;column:created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"type:datetime;index:idx_sessions_deleted_at;column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName pins the table name so renaming the Go type never migrates
// the schema.
func (LoadSession) TableName() string {
	return "load_sessions"
}
