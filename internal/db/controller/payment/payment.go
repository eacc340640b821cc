// Package payment links ad payments to posts and manages redeemable ad codes.
package payment

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

// MaxGenerate caps a single GenerateAdCodes call.
const MaxGenerate = 1000

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrPostNotFound is returned when the target post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrPaymentNotFound is returned when no payment carries the given code.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentUsed is returned when a payment has already been linked to a post.
	ErrPaymentUsed = errors.New("payment already used")
	// ErrInvalidPayment is returned when the terms of a new payment are invalid.
	ErrInvalidPayment = errors.New("invalid payment")
	// ErrNotPostOwner is returned when a user redeems a code for someone else's post.
	ErrNotPostOwner = errors.New("post belongs to another user")

	// errLinkRaced rolls back a link that lost against a concurrent one.
	errLinkRaced = errors.New("post was linked concurrently")

	validate = validator.New()
)

// Terms describe a payment created on the fly when no code is supplied.
type Terms struct {
	Amount       int64  `validate:"gt=0"`
	Currency     string `validate:"len=3,alpha"`
	DurationDays int    `validate:"gt=0,lte=3650"`
}

// LinkRequest selects the payment to link: an existing unused Code, or new Terms when Code is empty.
type LinkRequest struct {
	Code  string
	Terms Terms
}

// Result reports the outcome of a link attempt.
type Result struct {
	Payment models.AdPayment
	Post    models.Post
	// Linked is false when the post already had a payment and nothing changed.
	Linked bool
}

// LinkPaymentToPost sponsors a post with a payment.
//
// A post that already has a payment is left untouched and its current payment is returned with
// Linked=false. A used payment is never moved to another post. Marking the payment used and setting
// the post's foreign key happen in one transaction.
func LinkPaymentToPost(db *gorm.DB, postID uint64, req LinkRequest) (*Result, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if req.Code == "" {
		if err := validate.Struct(req.Terms); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
		}
	}

	var res Result

	err := db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}

			return err
		}

		if post.AdPaymentID != nil {
			res.Post = post

			return tx.First(&res.Payment, *post.AdPaymentID).Error
		}

		p, err := pickPayment(tx, req)
		if err != nil {
			return err
		}

		now := time.Now()
		until := now.AddDate(0, 0, p.DurationDays)

		claimed := tx.Model(&models.AdPayment{}).
			Where("id = ? AND used = ?", p.ID, false).
			Updates(map[string]any{"used": true, "used_at": now, "post_id": post.ID})
		if claimed.Error != nil {
			return claimed.Error
		}

		if claimed.RowsAffected == 0 {
			return ErrPaymentUsed
		}

		linked := tx.Model(&models.Post{}).
			Where("id = ? AND ad_payment_id IS NULL", post.ID).
			Updates(map[string]any{"ad_payment_id": p.ID, "sponsored": true, "sponsored_until": until})
		if linked.Error != nil {
			return linked.Error
		}

		if linked.RowsAffected == 0 {
			return errLinkRaced
		}

		if err = tx.First(&res.Post, post.ID).Error; err != nil {
			return err
		}

		res.Linked = true

		return tx.First(&res.Payment, p.ID).Error
	})

	if errors.Is(err, errLinkRaced) {
		// the concurrent winner's payment stays, ours was rolled back
		return current(db, postID)
	}

	if err != nil {
		return nil, err
	}

	if res.Linked {
		log.Info().Uint64("post_id", res.Post.ID).Str("code", res.Payment.Code).
			Time("sponsored_until", *res.Post.SponsoredUntil).Msg("payment linked to post")
	}

	return &res, nil
}

// current returns the payment a post is already linked to.
func current(db *gorm.DB, postID uint64) (*Result, error) {
	var res Result
	if err := db.First(&res.Post, postID).Error; err != nil {
		return nil, err
	}

	if res.Post.AdPaymentID == nil {
		return nil, ErrPaymentNotFound
	}

	if err := db.First(&res.Payment, *res.Post.AdPaymentID).Error; err != nil {
		return nil, err
	}

	return &res, nil
}

// pickPayment loads the unused payment for req.Code, or creates one from req.Terms.
func pickPayment(tx *gorm.DB, req LinkRequest) (*models.AdPayment, error) {
	if req.Code == "" {
		p := &models.AdPayment{
			Code:         accesskey.New(accesskey.PrefixAd),
			Amount:       req.Terms.Amount,
			Currency:     strings.ToUpper(req.Terms.Currency),
			DurationDays: req.Terms.DurationDays,
		}

		if err := tx.Create(p).Error; err != nil {
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}

		return p, nil
	}

	code, err := accesskey.Normalize(req.Code)
	if err != nil {
		return nil, ErrPaymentNotFound
	}

	var p models.AdPayment
	if err = tx.Where("code = ?", code).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}

		return nil, err
	}

	if p.Used {
		return nil, ErrPaymentUsed
	}

	return &p, nil
}

// RedeemAdCode lets the author of a post sponsor it with an ad code.
func RedeemAdCode(db *gorm.DB, userID, postID uint64, code string) (*Result, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if strings.TrimSpace(code) == "" {
		return nil, ErrPaymentNotFound
	}

	var post models.Post
	if err := db.Select("id", "author_id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}

		return nil, err
	}

	if post.AuthorID != userID {
		return nil, ErrNotPostOwner
	}

	return LinkPaymentToPost(db, postID, LinkRequest{Code: code})
}

// GenerateAdCodes creates n unused payments with fresh codes.
func GenerateAdCodes(db *gorm.DB, n int, terms Terms) ([]models.AdPayment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if n < 1 || n > MaxGenerate {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidPayment, MaxGenerate)
	}

	if err := validate.Struct(terms); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}

	payments := make([]models.AdPayment, n)
	for i := range payments {
		payments[i] = models.AdPayment{
			Code:         accesskey.New(accesskey.PrefixAd),
			Amount:       terms.Amount,
			Currency:     strings.ToUpper(terms.Currency),
			DurationDays: terms.DurationDays,
		}
	}

	if err := db.CreateInBatches(&payments, 100).Error; err != nil {
		return nil, fmt.Errorf("failed to create payments: %w", err)
	}

	log.Info().Int("count", n).Int64("amount", terms.Amount).Str("currency", terms.Currency).
		Msg("ad codes generated")

	return payments, nil
}

// List returns payments newest first. used filters by state when non-nil.
func List(db *gorm.DB, used *bool, limit int) ([]models.AdPayment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Model(&models.AdPayment{}).Order("id DESC")
	if used != nil {
		tx = tx.Where("used = ?", *used)
	}

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	payments := make([]models.AdPayment, 0)
	if err := tx.Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}

// ExpireSponsorships clears the sponsored flag of posts whose sponsorship ended before now.
// The payment link itself is kept so the payment is never reused.
func ExpireSponsorships(db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Model(&models.Post{}).
		Where("sponsored = ? AND sponsored_until < ?", true, now).
		Update("sponsored", false)

	return result.RowsAffected, result.Error
}
