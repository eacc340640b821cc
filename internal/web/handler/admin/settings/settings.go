// Package settings provides the admin page for the typed application settings.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the settings page.
	Path = handler.AdminPath + "/settings"

	// TemplateName is the settings template.
	TemplateName = "admin/settings"
)

// ErrInvalidSettings is shown when a settings form does not validate.
var ErrInvalidSettings = errors.New("invalid settings")

// AdForm is the ad configuration form.
type AdForm struct {
	Enabled      bool   `form:"enabled"`
	Provider     string `form:"provider"     validate:"required,max=50"`
	SlotIDs      string `form:"slotIds"`
	FrequencyCap int    `form:"frequencyCap" validate:"gte=0,lte=100"`
	PricePerDay  int64  `form:"pricePerDay"  validate:"gte=0"`
	Currency     string `form:"currency"     validate:"len=3,alpha"`
}

// PromoForm is the featured promo form.
type PromoForm struct {
	Enabled  bool   `form:"enabled"`
	Title    string `form:"title"    validate:"max=200"`
	Text     string `form:"text"     validate:"max=2000"`
	ImageURL string `form:"imageUrl" validate:"omitempty,url"`
	LinkURL  string `form:"linkUrl"  validate:"omitempty,url"`
}

// Service is the settings page handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the settings page handler.
var Handler = Service{}

// Init registers the routes. Only super admins may open them.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireRole(models.RoleSuperAdmin))
		router.Get("/", s.Get)
		router.Post("/ads", s.SaveAds)
		router.Post("/promo", s.SavePromo)
		router.Post("/groups", s.SaveGroups)
	})
}

func (s *Service) render(c *fiber.Ctx, status int, msg map[string]string) error {
	claims, _ := auth.FromContext(c)

	nav := navigation.Admin("Settings", "settings", claims.Role).
		AddBreadcrumb("Settings", Path, true)

	ads, err := setting.LoadAdConfig(s.db)
	if err != nil {
		return err
	}

	promo, err := setting.LoadFeaturedPromo(s.db)
	if err != nil {
		return err
	}

	groups, err := setting.LoadMicroPostAllowedGroups(s.db)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Navigation":    nav,
		"CurrentUser":   claims,
		"Ads":           ads,
		"SlotIDs":       strings.Join(ads.SlotIDs, ", "),
		"Promo":         promo,
		"AllowedGroups": joinIDs(groups),
	}

	for k, v := range msg {
		data[k] = v
	}

	return c.Status(status).Render(TemplateName, data, handler.BaseLayout)
}

func (s *Service) fail(c *fiber.Ctx, err error) error {
	log.Warn().Err(err).Str("path", c.Path()).Msg("settings form rejected")
	return s.render(c, fiber.StatusBadRequest, map[string]string{"Error": err.Error()})
}

func (s *Service) saved(c *fiber.Ctx, key string) error {
	claims, _ := auth.FromContext(c)
	log.Info().Uint64("user_id", claims.UserID()).Str("key", key).Msg("setting updated")

	return s.render(c, fiber.StatusOK, map[string]string{"Success": "Settings saved"})
}

// Get renders the settings page.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, nil)
}

// SaveAds stores the ad configuration.
func (s *Service) SaveAds(c *fiber.Ctx) error {
	var form AdForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	if err := s.validator.Struct(form); err != nil {
		return s.fail(c, fmt.Errorf("%w: %w", ErrInvalidSettings, err))
	}

	cfg := setting.AdConfig{
		Enabled:      form.Enabled,
		Provider:     strings.TrimSpace(form.Provider),
		SlotIDs:      splitList(form.SlotIDs),
		FrequencyCap: form.FrequencyCap,
		PricePerDay:  form.PricePerDay,
		Currency:     strings.ToUpper(form.Currency),
	}

	if err := setting.SaveAdConfig(s.db, cfg); err != nil {
		return err
	}

	return s.saved(c, setting.KeyAdConfig)
}

// SavePromo stores the featured promo.
func (s *Service) SavePromo(c *fiber.Ctx) error {
	var form PromoForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	if err := s.validator.Struct(form); err != nil {
		return s.fail(c, fmt.Errorf("%w: %w", ErrInvalidSettings, err))
	}

	if err := setting.SaveFeaturedPromo(s.db, setting.FeaturedPromo(form)); err != nil {
		return err
	}

	return s.saved(c, setting.KeyFeaturedPromo)
}

// SaveGroups stores the micro-post group allowlist from a comma separated list of ids.
func (s *Service) SaveGroups(c *fiber.Ctx) error {
	ids, err := ParseIDs(c.FormValue("groupIds"))
	if err != nil {
		return s.fail(c, err)
	}

	if err = setting.SaveMicroPostAllowedGroups(s.db, ids); err != nil {
		return err
	}

	return s.saved(c, setting.KeyMicroPostAllowedGroup)
}

// ParseIDs parses "1, 2,3" into ids, dropping duplicates.
func ParseIDs(raw string) ([]uint64, error) {
	ids := make([]uint64, 0)
	seen := make(map[uint64]struct{})

	for _, part := range splitList(raw) {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: %q is not a group id", ErrInvalidSettings, part)
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}

func splitList(raw string) []string {
	out := make([]string, 0)

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}

	return strings.Join(parts, ", ")
}
