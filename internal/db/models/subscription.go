package models

import "time"

// SubscriptionPlan is a paid plan that grants access for a number of days.
type SubscriptionPlan struct {
	ID           uint64    `gorm:"primaryKey"                   json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Price        int64     `gorm:"not null"                     json:"price"` // minor currency units
	Currency     string    `gorm:"size:3;not null"              json:"currency"`
	DurationDays int       `gorm:"not null"                     json:"durationDays"`
	Active       bool      `gorm:"not null;default:true"        json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Subscription is a user's entitlement to a plan until ExpiresAt.
type Subscription struct {
	ID        uint64           `gorm:"primaryKey"            json:"id"`
	UserID    uint64           `gorm:"index;not null"        json:"userId"`
	User      User             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PlanID    uint64           `gorm:"index;not null"        json:"planId"`
	Plan      SubscriptionPlan `json:"plan"`
	Active    bool             `gorm:"not null;default:true;index" json:"active"`
	StartsAt  time.Time        `gorm:"not null"              json:"startsAt"`
	ExpiresAt time.Time        `gorm:"not null;index"        json:"expiresAt"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// AccessKey is a single-use token that unlocks a subscription plan.
type AccessKey struct {
	ID        uint64           `gorm:"primaryKey"                   json:"id"`
	Code      string           `gorm:"uniqueIndex;size:64;not null" json:"code"`
	PlanID    uint64           `gorm:"index;not null"               json:"planId"`
	Plan      SubscriptionPlan `json:"-"`
	Used      bool             `gorm:"not null;default:false"       json:"used"`
	UsedByID  *uint64          `json:"usedById,omitempty"`
	UsedAt    *time.Time       `json:"usedAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// All returns every model the application migrates.
func All() []any {
	return []any{
		&User{},
		&AppSetting{},
		&AdPayment{},
		&Post{},
		&Exam{},
		&Question{},
		&Option{},
		&ExamSubmission{},
		&Answer{},
		&Group{},
		&GroupMember{},
		&SubscriptionPlan{},
		&Subscription{},
		&AccessKey{},
	}
}
