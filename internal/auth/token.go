package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/session"
)

// Claims is the payload of a session token.
type Claims struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	Permissions []string    `json:"permissions"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() uint64 {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}

	return id
}

// Can reports whether the session's role grants permission.
func (c *Claims) Can(permission string) bool {
	return HasPermission(c.Role, permission)
}

// IssueToken signs an HS256 session token for user and stores the matching session record.
func (s *Service) IssueToken(user *models.User) (string, *Claims, error) {
	jti, err := session.GenerateSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.now()

	claims := &Claims{
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: PermissionsFor(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.SessionExpiry())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	record := &session.Data{UserID: user.ID, Role: user.Role, CreatedAt: now}
	if err = record.Write(jti, s.SessionExpiry()); err != nil {
		return "", nil, fmt.Errorf("failed to write session: %w", err)
	}

	return signed, claims, nil
}

// ParseToken verifies a session token and checks that its session is still live.
func (s *Service) ParseToken(token string) (*Claims, error) {
	claims := new(Claims)

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Auth.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !claims.Role.Valid() || claims.UserID() == 0 {
		return nil, ErrInvalidToken
	}

	record := new(session.Data)
	if err = record.Read(claims.ID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionRevoked
		}

		return nil, err
	}

	if record.UserID != claims.UserID() {
		return nil, ErrInvalidToken
	}

	revokedBefore, err := session.RevokedBefore(record.UserID)
	if err != nil {
		return nil, err
	}

	if record.CreatedAt.Before(revokedBefore) {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}

// RevokeToken deletes the session record behind a token. Invalid tokens are ignored.
func (s *Service) RevokeToken(token string) error {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil //nolint:nilerr
	}

	return session.Delete(claims.ID)
}
