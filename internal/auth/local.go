package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/session"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name"     form:"name"     validate:"required,max=100"`
	Email    string `json:"email"    form:"email"    validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
}

// Register creates a local account. The email is unique case-insensitively; a duplicate
// returns ErrEmailExists and inserts nothing.
func (s *Service) Register(in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)

	if err := s.validator.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	taken, err := s.emailTaken(in.Email)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrEmailExists
	}

	user := models.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   models.HashPassword(in.Password),
		Role:       s.roleForEmail(in.Email),
		Active:     true,
		AuthSource: models.AuthSourceLocal,
	}

	if err = s.db.Create(&user).Error; err != nil {
		// lost a race against a concurrent registration
		if taken, errTaken := s.emailTaken(in.Email); errTaken == nil && taken {
			return nil, ErrEmailExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	return &user, nil
}

func (s *Service) emailTaken(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}

	return count > 0, nil
}

// Authenticate checks email and password. Legacy bcrypt hashes are upgraded to Argon2id on success.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if user.IsLegacyHash() {
		user.Password = models.HashPassword(password)
		if err = s.db.Model(&user).Update("password", user.Password).Error; err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to upgrade legacy password hash")
		} else {
			log.Info().Uint64("user_id", user.ID).Msg("legacy password hash upgraded")
		}
	}

	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(userID uint64) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}

// ListUsers lists users newest first, optionally filtered by a name or email substring.
func (s *Service) ListUsers(search string, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := s.db.Model(&models.User{})

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR email LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SetRole changes the role of targetID. Only a super admin may change roles, and a super admin
// may not demote themselves. Live sessions of the target are revoked.
func (s *Service) SetRole(actorID, targetID uint64, role string) (*models.User, error) {
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	if err = s.requireSuperAdmin(actorID); err != nil {
		return nil, err
	}

	if actorID == targetID && r != models.RoleSuperAdmin {
		return nil, ErrSelfDemotion
	}

	target, err := s.GetUser(targetID)
	if err != nil || target.Role == r {
		return target, err
	}

	return s.updateUser(targetID, map[string]any{"role": r})
}

// SetActive enables or disables an account. Only a super admin may do so, never for themselves.
func (s *Service) SetActive(actorID, targetID uint64, active bool) (*models.User, error) {
	if err := s.requireSuperAdmin(actorID); err != nil {
		return nil, err
	}

	if actorID == targetID && !active {
		return nil, ErrSelfDemotion
	}

	target, err := s.GetUser(targetID)
	if err != nil || target.Active == active {
		return target, err
	}

	return s.updateUser(targetID, map[string]any{"active": active})
}

func (s *Service) requireSuperAdmin(actorID uint64) error {
	actor, err := s.GetUser(actorID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrForbidden
		}

		return err
	}

	if !actor.Active || actor.Role != models.RoleSuperAdmin {
		return ErrForbidden
	}

	return nil
}

func (s *Service) updateUser(userID uint64, updates map[string]any) (*models.User, error) {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := session.RevokeUser(userID, s.now(), s.SessionExpiry()); err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to revoke sessions")
	}

	log.Info().Uint64("user_id", userID).Interface("changes", updates).Msg("user updated")

	return s.GetUser(userID)
}
