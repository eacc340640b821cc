// Package subscription manages paid plans, access keys and user subscriptions.
package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/accesskey"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// MaxKeys caps a single GenerateAccessKeys call.
const MaxKeys = 1000

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrInvalidPlan is returned when plan input fails validation.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrPlanExists is returned when a plan name is already taken.
	ErrPlanExists = errors.New("plan already exists")
	// ErrPlanNotFound is returned when a plan does not exist or is inactive.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrKeyNotFound is returned when no access key matches the code.
	ErrKeyNotFound = errors.New("access key not found")
	// ErrKeyUsed is returned when an access key was already redeemed.
	ErrKeyUsed = errors.New("access key already used")
	// ErrNoActiveSubscription is returned when the user has no running subscription.
	ErrNoActiveSubscription = errors.New("no active subscription")

	validate = validator.New()
)

// PlanInput describes a plan.
type PlanInput struct {
	Name         string `json:"name"         form:"name"         validate:"required,max=100"`
	Price        int64  `json:"price"        form:"price"        validate:"gte=0"`
	Currency     string `json:"currency"     form:"currency"     validate:"len=3,alpha"`
	DurationDays int    `json:"durationDays" form:"durationDays" validate:"gt=0,lte=3650"`
}

// DefaultPlans are installed by SeedPlans.
var DefaultPlans = []PlanInput{
	{Name: "Monthly", Price: 499, Currency: "USD", DurationDays: 30},
	{Name: "Quarterly", Price: 1299, Currency: "USD", DurationDays: 90},
	{Name: "Yearly", Price: 4499, Currency: "USD", DurationDays: 365},
}

// CreatePlan stores a new active plan.
func CreatePlan(db *gorm.DB, in PlanInput) (*models.SubscriptionPlan, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	var count int64
	if err := db.Model(&models.SubscriptionPlan{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrPlanExists
	}

	p := &models.SubscriptionPlan{
		Name:         in.Name,
		Price:        in.Price,
		Currency:     strings.ToUpper(in.Currency),
		DurationDays: in.DurationDays,
		Active:       true,
	}

	if err := db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	return p, nil
}

// SeedPlans installs DefaultPlans that do not exist yet and returns how many were created.
func SeedPlans(db *gorm.DB) (int, error) {
	created := 0

	for _, in := range DefaultPlans {
		_, err := CreatePlan(db, in)

		switch {
		case errors.Is(err, ErrPlanExists):
			continue
		case err != nil:
			return created, err
		}

		created++
	}

	log.Info().Int("created", created).Msg("subscription plans seeded")

	return created, nil
}

// Plans returns plans ordered by duration.
func Plans(db *gorm.DB, activeOnly bool) ([]models.SubscriptionPlan, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Order("duration_days ASC")
	if activeOnly {
		tx = tx.Where("active = ?", true)
	}

	plans := make([]models.SubscriptionPlan, 0)
	if err := tx.Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

// GenerateAccessKeys creates n unused keys for a plan.
func GenerateAccessKeys(db *gorm.DB, planID uint64, n int) ([]models.AccessKey, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if n < 1 || n > MaxKeys {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidPlan, MaxKeys)
	}

	var plan models.SubscriptionPlan
	if err := db.Where("active = ?", true).First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}

		return nil, err
	}

	keys := make([]models.AccessKey, n)
	for i := range keys {
		keys[i] = models.AccessKey{Code: accesskey.New(accesskey.PrefixSubscription), PlanID: plan.ID}
	}

	if err := db.Omit("Plan").CreateInBatches(&keys, 100).Error; err != nil {
		return nil, fmt.Errorf("failed to create access keys: %w", err)
	}

	return keys, nil
}

// Keys returns the newest access keys, at most limit when limit is positive.
func Keys(db *gorm.DB, limit int) ([]models.AccessKey, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Order("id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	keys := make([]models.AccessKey, 0)
	if err := tx.Find(&keys).Error; err != nil {
		return nil, err
	}

	return keys, nil
}

// Redeem consumes an access key for userID. A running subscription to the same plan is extended
// by the plan's duration; otherwise a new one starts now.
func Redeem(db *gorm.DB, userID uint64, code string, now time.Time) (*models.Subscription, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	code, err := accesskey.Normalize(code)
	if err != nil {
		return nil, ErrKeyNotFound
	}

	var sub models.Subscription

	err = db.Transaction(func(tx *gorm.DB) error {
		var key models.AccessKey
		if err := tx.Preload("Plan").Where("code = ?", code).First(&key).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKeyNotFound
			}

			return err
		}

		if key.Used {
			return ErrKeyUsed
		}

		claimed := tx.Model(&models.AccessKey{}).Where("id = ? AND used = ?", key.ID, false).
			Updates(map[string]any{"used": true, "used_by_id": userID, "used_at": now})
		if claimed.Error != nil {
			return claimed.Error
		}

		if claimed.RowsAffected == 0 {
			return ErrKeyUsed
		}

		days := key.Plan.DurationDays

		err := tx.Where("user_id = ? AND plan_id = ? AND active = ? AND expires_at > ?", userID, key.PlanID, true, now).
			Order("expires_at DESC").First(&sub).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				UserID:    userID,
				PlanID:    key.PlanID,
				Active:    true,
				StartsAt:  now,
				ExpiresAt: now.AddDate(0, 0, days),
			}

			return tx.Omit("User", "Plan").Create(&sub).Error
		case err != nil:
			return err
		default:
			sub.ExpiresAt = sub.ExpiresAt.AddDate(0, 0, days)

			return tx.Model(&sub).Update("expires_at", sub.ExpiresAt).Error
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("user_id", userID).Uint64("plan_id", sub.PlanID).Time("expires_at", sub.ExpiresAt).
		Msg("access key redeemed")

	return &sub, nil
}

// Extend pushes the expiry of a subscription by days and reactivates it if needed.
func Extend(db *gorm.DB, subscriptionID uint64, days int, now time.Time) (*models.Subscription, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidPlan)
	}

	var sub models.Subscription
	if err := db.First(&sub, subscriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}

		return nil, err
	}

	from := sub.ExpiresAt
	if from.Before(now) {
		from = now
	}

	sub.ExpiresAt = from.AddDate(0, 0, days)
	sub.Active = true

	if err := db.Model(&sub).Updates(map[string]any{"expires_at": sub.ExpiresAt, "active": true}).Error; err != nil {
		return nil, err
	}

	return &sub, nil
}

// Active returns the user's running subscription that expires last.
func Active(db *gorm.DB, userID uint64, now time.Time) (*models.Subscription, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var sub models.Subscription
	if err := db.Preload("Plan").
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, now).
		Order("expires_at DESC").First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}

		return nil, err
	}

	return &sub, nil
}

// ExpireSubscriptions deactivates subscriptions whose expiry is not after now.
func ExpireSubscriptions(db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Model(&models.Subscription{}).
		Where("active = ? AND expires_at <= ?", true, now).
		Update("active", false)

	return result.RowsAffected, result.Error
}
