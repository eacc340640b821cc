package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/subscription"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// seed installs the default subscription plans and warns when nobody can administer the site.
func seed(cfg *config.Config, db *gorm.DB) error {
	if _, err := subscription.SeedPlans(db); err != nil {
		return err
	}

	var admins int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&admins).Error; err != nil {
		return err
	}

	if admins == 0 && cfg.Auth.SuperAdminEmail == "" {
		log.Warn().Msg("no super admin exists and SUPER_ADMIN_EMAIL is not set")
	}

	return nil
}
