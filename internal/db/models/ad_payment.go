package models

import "time"

// AdPayment is a paid advertising credit identified by a redeemable code.
// Once Used is set the payment belongs to exactly one post.
type AdPayment struct {
	ID           uint64     `gorm:"primaryKey"                    json:"id"`
	Code         string     `gorm:"uniqueIndex;size:64;not null"  json:"code"`
	Amount       int64      `gorm:"not null"                      json:"amount"` // minor currency units
	Currency     string     `gorm:"size:3;not null"               json:"currency"`
	DurationDays int        `gorm:"not null"                      json:"durationDays"`
	Used         bool       `gorm:"not null;default:false;index"  json:"used"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
	PostID       *uint64    `gorm:"index"                         json:"postId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
