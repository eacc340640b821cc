// Package daemon wires the database, session storage, scheduler and web service together.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db"
	"github.com/cineverse-captions/cineverse/internal/db/dsn"
	"github.com/cineverse-captions/cineverse/internal/scheduler"
	"github.com/cineverse-captions/cineverse/internal/web"
	"github.com/cineverse-captions/cineverse/internal/web/session"
)

// SessionTable holds server-side session records on mysql and postgres.
const SessionTable = "sessions"

// ErrConfigNil is returned when the daemon is created without configuration.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	scheduler  *scheduler.ExpiryScheduler
}

// Start runs the expiry scheduler and the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if d.cfg.Scheduler.Enabled {
		if err := d.scheduler.Start(ctx); err != nil {
			return err
		}
	}

	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New opens the database, prepares session storage and seed data, and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(SessionStorage(cfg))

	if err = seed(cfg, conn); err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		db:         conn,
		webService: web.New(cfg, conn, auth.NewService(conn, cfg)),
		scheduler:  scheduler.New(conn, cfg.Scheduler),
	}, nil
}

// SessionStorage returns the fiber storage backend for the configured engine.
// SQLite keeps sessions in memory, so a restart signs everybody out.
func SessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         SessionTable,
		})
	case config.EngineSQLite:
		log.Warn().Msg("sqlite engine: session records are kept in memory")
		return nil
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         SessionTable,
		})
	}
}
