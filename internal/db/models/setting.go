// Package models contains database model definitions.
package models

import "time"

// AppSetting is a key to JSON string mapping used for feature flags and site configuration.
// Values for different keys share the same untyped column; typed access lives in the
// setting controller.
type AppSetting struct {
	ID        uint64 `gorm:"primaryKey"`
	Key       string `gorm:"column:setting_key;uniqueIndex;size:100;not null"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the table name stable across engines.
func (AppSetting) TableName() string {
	return "app_settings"
}
