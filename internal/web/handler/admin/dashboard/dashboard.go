// Package dashboard provides the admin dashboard with platform counters.
package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.AdminPath

	// TemplateName is the name of the dashboard template.
	TemplateName = "admin/dashboard"
)

// Stats are the counters shown on the dashboard.
type Stats struct {
	Users               int64
	Posts               int64
	SponsoredPosts      int64
	UnusedAdCodes       int64
	ActiveSubscriptions int64
	Exams               int64
	Groups              int64
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Get(Path, auth.RequireRole(models.RoleSuperAdmin, models.RoleUserAdmin), s.Get)
}

// Collect counts the dashboard figures.
func Collect(db *gorm.DB, now time.Time) (Stats, error) {
	var st Stats

	counts := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&st.Users, &models.User{}, nil},
		{&st.Posts, &models.Post{}, nil},
		{&st.SponsoredPosts, &models.Post{}, []any{"sponsored = ?", true}},
		{&st.UnusedAdCodes, &models.AdPayment{}, []any{"used = ?", false}},
		{&st.ActiveSubscriptions, &models.Subscription{}, []any{"active = ? AND expires_at > ?", true, now}},
		{&st.Exams, &models.Exam{}, nil},
		{&st.Groups, &models.Group{}, nil},
	}

	for _, c := range counts {
		tx := db.Model(c.model)
		if c.where != nil {
			tx = tx.Where(c.where[0], c.where[1:]...)
		}

		if err := tx.Count(c.dst).Error; err != nil {
			return Stats{}, err
		}
	}

	return st, nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	nav := navigation.Admin("Dashboard", "dashboard", claims.Role)

	stats, err := Collect(s.db, time.Now())
	if err != nil {
		return err
	}

	log.Debug().Interface("stats", stats).Msg("dashboard stats collected")

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"Stats":       stats,
		"CurrentUser": claims,
	}, handler.BaseLayout)
}
