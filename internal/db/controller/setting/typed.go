package setting

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Well-known setting keys.
const (
	KeyAdConfig              = "AD_CONFIG"
	KeyFeaturedPromo         = "featured_promo"
	KeyMicroPostAllowedGroup = "microPostAllowedGroupIds"
)

// AdConfig controls sponsored placements and ad pricing.
type AdConfig struct {
	Enabled      bool     `json:"enabled"`
	Provider     string   `json:"provider"`
	SlotIDs      []string `json:"slotIds"`
	FrequencyCap int      `json:"frequencyCap"`
	PricePerDay  int64    `json:"pricePerDay"` // minor currency units
	Currency     string   `json:"currency"`
}

// DefaultAdConfig is returned when AD_CONFIG is missing or unreadable.
func DefaultAdConfig() AdConfig {
	return AdConfig{
		Enabled:      false,
		Provider:     "internal",
		SlotIDs:      []string{},
		FrequencyCap: 3,
		PricePerDay:  500,
		Currency:     "USD",
	}
}

// FeaturedPromo is the banner shown on the home page.
type FeaturedPromo struct {
	Enabled  bool   `json:"enabled"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl"`
}

// DefaultFeaturedPromo is returned when featured_promo is missing or unreadable.
func DefaultFeaturedPromo() FeaturedPromo {
	return FeaturedPromo{}
}

// LoadAdConfig reads AD_CONFIG.
func LoadAdConfig(db *gorm.DB) (AdConfig, error) {
	return load(db, KeyAdConfig, DefaultAdConfig())
}

// SaveAdConfig writes AD_CONFIG.
func SaveAdConfig(db *gorm.DB, cfg AdConfig) error {
	if cfg.SlotIDs == nil {
		cfg.SlotIDs = []string{}
	}

	return save(db, KeyAdConfig, cfg)
}

// LoadFeaturedPromo reads featured_promo.
func LoadFeaturedPromo(db *gorm.DB) (FeaturedPromo, error) {
	return load(db, KeyFeaturedPromo, DefaultFeaturedPromo())
}

// SaveFeaturedPromo writes featured_promo.
func SaveFeaturedPromo(db *gorm.DB, promo FeaturedPromo) error {
	return save(db, KeyFeaturedPromo, promo)
}

// LoadMicroPostAllowedGroups reads the list of group IDs that accept micro-posts.
func LoadMicroPostAllowedGroups(db *gorm.DB) ([]uint64, error) {
	return load(db, KeyMicroPostAllowedGroup, []uint64{})
}

// SaveMicroPostAllowedGroups writes the micro-post group allowlist.
func SaveMicroPostAllowedGroups(db *gorm.DB, ids []uint64) error {
	if ids == nil {
		ids = []uint64{}
	}

	return save(db, KeyMicroPostAllowedGroup, ids)
}

// load returns def when the key is missing or holds malformed JSON.
// Only database failures are returned as errors.
func load[T any](db *gorm.DB, key string, def T) (T, error) {
	s, err := Get(db, key)
	if errors.Is(err, ErrSettingNotFound) {
		return def, nil
	}

	if err != nil {
		return def, fmt.Errorf("failed to read setting %s: %w", key, err)
	}

	var out T
	if err = json.Unmarshal([]byte(s.Value), &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("malformed setting value, using default")

		return def, nil
	}

	return out, nil
}

func save[T any](db *gorm.DB, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	if _, err = Set(db, key, string(raw)); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}

	return nil
}
