package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

func TestDialectorUnknownEngine(t *testing.T) {
	_, err := Dialector(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestDialectorNames(t *testing.T) {
	for engine, want := range map[string]string{
		config.EngineMySQL:    "mysql",
		config.EnginePostgres: "postgres",
		config.EngineSQLite:   "sqlite",
	} {
		d, err := Dialector(&config.Config{DB: config.DB{GormEngine: engine, Name: "x"}})
		require.NoError(t, err)
		assert.Equal(t, want, d.Name())
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	cfg := &config.Config{DB: config.DB{GormEngine: config.EngineSQLite, Name: "file::memory:?cache=shared"}}

	conn, err := Open(cfg)
	require.NoError(t, err)

	for _, m := range models.All() {
		assert.True(t, conn.Migrator().HasTable(m), "%T", m)
	}
}

func TestOpenNilConfig(t *testing.T) {
	_, err := Open(nil)
	require.ErrorIs(t, err, ErrConfigNil)
}
