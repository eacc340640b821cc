// Package setting provides CRUD operations for application settings stored as JSON blobs by key.
package setting

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

const (
	keyColumn       = "setting_key"
	keyQueryPattern = keyColumn + " = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when attempting to read or write a setting with an empty key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its key.
func Get(db *gorm.DB, key string) (*models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var s models.AppSetting
	if err := db.Where(keyQueryPattern, key).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, err
	}

	return &s, nil
}

// GetAll retrieves all settings ordered by key.
func GetAll(db *gorm.DB) ([]models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	settings := make([]models.AppSetting, 0)
	if err := db.Order(keyColumn + " ASC").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// Create inserts a new setting. It fails with ErrSettingAlreadyExists if the key is taken.
func Create(db *gorm.DB, key, value string) (*models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var count int64
	if err := db.Model(&models.AppSetting{}).Where(keyQueryPattern, key).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrSettingAlreadyExists
	}

	s := &models.AppSetting{Key: key, Value: value}
	if err := db.Create(s).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// Set writes value under key, inserting or overwriting in one statement.
// Concurrent writers are not coordinated; the last write wins.
func Set(db *gorm.DB, key, value string) (*models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	now := time.Now()
	s := &models.AppSetting{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: keyColumn}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, err
	}

	return Get(db, key)
}

// UpdateByKey overwrites an existing setting. It fails with ErrSettingNotFound if the key is absent.
func UpdateByKey(db *gorm.DB, key, value string) (*models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	result := db.Model(&models.AppSetting{}).Where(keyQueryPattern, key).
		Updates(map[string]any{"value": value, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrSettingNotFound
	}

	return Get(db, key)
}

// DeleteByKey removes a setting by key.
func DeleteByKey(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}

	if key == "" {
		return ErrSettingKeyEmpty
	}

	result := db.Where(keyQueryPattern, key).Delete(&models.AppSetting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
