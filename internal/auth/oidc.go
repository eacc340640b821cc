package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
var ErrOIDCDisabled = errors.New("oidc authentication is disabled")

// Identity is the part of a verified ID token used to find or create an account.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// OIDCProvider handles OIDC authentication.
type OIDCProvider struct {
	name     string
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
	service  *Service
}

// NewOIDCProvider discovers the provider and prepares the OAuth2 client.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCAuth, service *Service) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, cfg.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		name:     cfg.Name,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		service: service,
	}, nil
}

// Name is the provider id shown to clients.
func (p *OIDCProvider) Name() string {
	return p.name
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// GetAuthURL returns the OIDC authorization URL with state token.
func (p *OIDCProvider) GetAuthURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// HandleCallback exchanges the code, verifies the ID token and returns the matching account.
func (p *OIDCProvider) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var id Identity
	if err = idToken.Claims(&id); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	return p.service.UserForIdentity(id)
}

// UserForIdentity finds the account of a verified OIDC identity, by subject first and then by
// email, creating a USER account when neither matches.
func (s *Service) UserForIdentity(id Identity) (*models.User, error) {
	if !id.EmailVerified || id.Email == "" {
		return nil, ErrEmailNotVerified
	}

	email := models.NormalizeEmail(id.Email)

	var user models.User

	err := s.db.Where("external_id = ? AND auth_source = ?", id.Subject, models.AuthSourceOIDC).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("email = ?", email).First(&user).Error
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name := id.Name
		if name == "" {
			name = email
		}

		user = models.User{
			Name:       name,
			Email:      email,
			Role:       s.roleForEmail(email),
			Active:     true,
			AuthSource: models.AuthSourceOIDC,
			ExternalID: id.Subject,
		}

		if err = s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Info().Uint64("user_id", user.ID).Msg("user created via OIDC")
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	case user.ExternalID == "":
		user.ExternalID = id.Subject
		if err = s.db.Model(&user).Update("external_id", id.Subject).Error; err != nil {
			return nil, fmt.Errorf("failed to link user: %w", err)
		}
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}
