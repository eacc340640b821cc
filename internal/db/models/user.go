package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Role is the access tier of a user account.
type Role string

const (
	// RoleSuperAdmin may manage everything, including other users' roles and application settings.
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleUserAdmin moderates content and manages ad payments.
	RoleUserAdmin Role = "USER_ADMIN"
	// RoleUser is the default role of a registered account.
	RoleUser Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleUserAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// AuthSource represents how a user account signs in.
type AuthSource string

const (
	// AuthSourceLocal indicates the user signs in with email and password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceOIDC indicates the user signs in through an OpenID Connect provider.
	AuthSourceOIDC AuthSource = "oidc"
)

// User represents a user account.
type User struct {
	ID         uint64     `gorm:"primaryKey"                              json:"id"`
	Name       string     `gorm:"size:100;not null"                       json:"name"`
	Email      string     `gorm:"uniqueIndex;size:255;not null"           json:"email"`
	Password   string     `gorm:"size:255"                                json:"-"`
	Role       Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Active     bool       `gorm:"not null;default:true"                   json:"active"`
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'" json:"authSource"`
	ExternalID string     `gorm:"size:255"                                json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an email address; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a plaintext password using Argon2id with default parameters.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// IsLegacyHash reports whether the stored hash is a bcrypt hash imported from the previous platform.
func (u *User) IsLegacyHash() bool {
	return strings.HasPrefix(u.Password, "$2a$") ||
		strings.HasPrefix(u.Password, "$2b$") ||
		strings.HasPrefix(u.Password, "$2y$")
}

// VerifyPassword verifies a plaintext password against the stored Argon2id or legacy bcrypt hash.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	if u.IsLegacyHash() {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
