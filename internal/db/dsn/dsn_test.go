package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cineverse-captions/cineverse/internal/config"
)

func TestCreate(t *testing.T) {
	base := config.DB{
		Host:     "db.local",
		Port:     3306,
		User:     "cine",
		Password: "pw",
		Name:     "cineverse",
		Extras:   "parseTime=true",
	}

	tests := []struct {
		name   string
		mutate func(db *config.DB)
		want   string
	}{
		{
			name:   "mysql default",
			mutate: func(*config.DB) {},
			want:   "cine:pw@tcp(db.local:3306)/cineverse?parseTime=true",
		},
		{
			name: "postgres",
			mutate: func(db *config.DB) {
				db.GormEngine = config.EnginePostgres
				db.Port = 5432
				db.Extras = "sslmode=disable"
			},
			want: "host=db.local port=5432 user=cine password=pw dbname=cineverse sslmode=disable",
		},
		{
			name: "sqlite",
			mutate: func(db *config.DB) {
				db.GormEngine = config.EngineSQLite
				db.Name = "cineverse.db"
				db.Extras = ""
			},
			want: "cineverse.db",
		},
		{
			name: "url wins",
			mutate: func(db *config.DB) {
				db.GormEngine = config.EnginePostgres
				db.URL = "postgres://u:p@h:5432/d"
			},
			want: "postgres://u:p@h:5432/d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := base
			tt.mutate(&db)

			assert.Equal(t, tt.want, Create(&config.Config{DB: db}))
		})
	}
}
