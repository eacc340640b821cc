package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	accesslog "github.com/cineverse-captions/cineverse/internal/logger/adapter/fiber"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	admindashboard "github.com/cineverse-captions/cineverse/internal/web/handler/admin/dashboard"
	admingroup "github.com/cineverse-captions/cineverse/internal/web/handler/admin/group"
	"github.com/cineverse-captions/cineverse/internal/web/handler/admin/payments"
	"github.com/cineverse-captions/cineverse/internal/web/handler/admin/settings"
	adminsubscriptions "github.com/cineverse-captions/cineverse/internal/web/handler/admin/subscriptions"
	"github.com/cineverse-captions/cineverse/internal/web/handler/admin/user"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/ads"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/authroutes"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/exams"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/groups"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/posts"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/register"
	"github.com/cineverse-captions/cineverse/internal/web/handler/api/subscriptions"
	"github.com/cineverse-captions/cineverse/internal/web/handler/home"
	"github.com/cineverse-captions/cineverse/internal/web/handler/login"
	"github.com/cineverse-captions/cineverse/internal/web/handler/logout"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"
	// ErrorTemplate renders failed page requests.
	ErrorTemplate = "error"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and stops the http server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether /checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, authService *auth.Service) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if authService == nil {
		authService = auth.NewService(db, cfg)
	}

	return newService(cfg, db, authService, newTemplateEngine(cfg))
}

func newService(cfg *config.Config, db *gorm.DB, authService *auth.Service, views fiber.Views) *Service {
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          views,
			ErrorHandler:   errorHandler,
		},
	)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	// session first, so the access log sees the user
	app.Use(authService.Middleware())

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		SubjectLocal:  auth.SubjectLocal,
	}))

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	// JSON API
	register.Handler.Init(app, cfg, db, authService)
	authroutes.Handler.Init(app, cfg, db, authService)
	posts.Handler.Init(app, cfg, db, authService)
	ads.Handler.Init(app, cfg, db, authService)
	exams.Handler.Init(app, cfg, db, authService)
	groups.Handler.Init(app, cfg, db, authService)
	subscriptions.Handler.Init(app, cfg, db, authService)

	// pages
	login.Handler.Init(app, cfg, db, authService)
	logout.Handler.Init(app, cfg, db, authService)
	home.Handler.Init(app, cfg, db, authService)
	admindashboard.Handler.Init(app, cfg, db, authService)
	settings.Handler.Init(app, cfg, db, authService)
	user.Handler.Init(app, cfg, db, authService)
	admingroup.Handler.Init(app, cfg, db, authService)
	payments.Handler.Init(app, cfg, db, authService)
	adminsubscriptions.Handler.Init(app, cfg, db, authService)

	return service
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})
	templateEngine.AddFunc("money", formatMoney)
	templateEngine.AddFunc("date", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})

	return templateEngine
}

// formatMoney renders an amount in minor units, e.g. 1500 USD as "15.00 USD".
func formatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

// errorHandler is the outermost handler. API clients get {"error": "..."}, browsers the error page.
// Details of unexpected failures only reach the log.
func errorHandler(c *fiber.Ctx, err error) error {
	status := handler.StatusFor(err)
	msg := handler.MessageFor(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}

	if auth.IsAPI(c) {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	claims, _ := auth.FromContext(c)

	renderErr := c.Status(status).Render(ErrorTemplate, fiber.Map{
		"Status":      status,
		"Message":     msg,
		"CurrentUser": claims,
	}, handler.BaseLayout)
	if renderErr != nil {
		log.Error().Err(renderErr).Msg("failed to render error page")

		return c.Status(status).SendString(msg)
	}

	return nil
}
