package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Environment variables that carry secrets and toggles.
const (
	EnvDatabaseURL      = "DATABASE_URL"
	EnvAuthSecret       = "AUTH_SECRET"
	EnvSuperAdminEmail  = "SUPER_ADMIN_EMAIL"
	EnvCaptchaSiteKey   = "CAPTCHA_SITE_KEY"
	EnvCaptchaSecretKey = "CAPTCHA_SECRET_KEY"
	EnvOIDCClientID     = "OIDC_CLIENT_ID"
	EnvOIDCClientSecret = "OIDC_CLIENT_SECRET"
	EnvDevMode          = "DEV_MODE"
)

// DotEnvFile is loaded into the process environment before env values are applied.
var DotEnvFile = ".env" //nolint:gochecknoglobals

// applyEnv overrides config values with non-empty environment variables.
// Variables already present in the process environment are not replaced by .env.
func applyEnv(c *Config) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", DotEnvFile).Msg("failed to load env file")
	}

	v := viper.New()
	v.AutomaticEnv()

	setString(v, EnvDatabaseURL, &c.DB.URL)
	setString(v, EnvAuthSecret, &c.Auth.Secret)
	setString(v, EnvSuperAdminEmail, &c.Auth.SuperAdminEmail)
	setString(v, EnvCaptchaSiteKey, &c.Captcha.SiteKey)
	setString(v, EnvCaptchaSecretKey, &c.Captcha.SecretKey)
	setString(v, EnvOIDCClientID, &c.Auth.OIDC.ClientID)
	setString(v, EnvOIDCClientSecret, &c.Auth.OIDC.ClientSecret)

	if v.IsSet(EnvDevMode) {
		c.DevMode = v.GetBool(EnvDevMode)
	}
}

func setString(v *viper.Viper, key string, target *string) {
	if s := v.GetString(key); s != "" {
		*target = s
	}
}
