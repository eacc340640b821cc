package auth

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// Service provides registration, sign-in and session token functionality.
type Service struct {
	db        *gorm.DB
	cfg       *config.Config
	validator *validator.Validate
	now       func() time.Time
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		validator: validator.New(),
		now:       time.Now,
	}
}

// SessionExpiry is the lifetime of a session token and its server-side record.
func (s *Service) SessionExpiry() time.Duration {
	return s.cfg.Webserver.Session.ExpiryTime
}

// roleForEmail bootstraps the configured super admin; everyone else starts as USER.
func (s *Service) roleForEmail(email string) models.Role {
	if admin := models.NormalizeEmail(s.cfg.Auth.SuperAdminEmail); admin != "" && admin == email {
		return models.RoleSuperAdmin
	}

	return models.RoleUser
}
