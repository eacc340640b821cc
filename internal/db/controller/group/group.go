// Package group manages community groups and their memberships.
package group

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrGroupNotFound is returned when a group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrInvalidGroup is returned when group input fails validation.
	ErrInvalidGroup = errors.New("invalid group")
	// ErrGroupNameTaken is returned when another group already uses the name.
	ErrGroupNameTaken = errors.New("group name already taken")
	// ErrAlreadyMember is returned when joining a group twice.
	ErrAlreadyMember = errors.New("already a member")
	// ErrNotMember is returned when leaving a group the user is not part of.
	ErrNotMember = errors.New("not a member")
	// ErrOwnerCannotLeave is returned when the owner tries to leave their own group.
	ErrOwnerCannotLeave = errors.New("the owner cannot leave the group")

	validate = validator.New()
)

// Input describes a new group.
type Input struct {
	Name        string `json:"name"        form:"name"        validate:"required,min=3,max=100"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

// Create stores a group and makes ownerID its owner member.
func Create(db *gorm.DB, ownerID uint64, in Input) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	in.Name = strings.TrimSpace(in.Name)

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGroup, err)
	}

	g := &models.Group{Name: in.Name, Description: in.Description, OwnerID: ownerID}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Group{}).Where("LOWER(name) = ?", strings.ToLower(in.Name)).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrGroupNameTaken
		}

		if err := tx.Create(g).Error; err != nil {
			return err
		}

		return tx.Create(&models.GroupMember{
			GroupID:  g.ID,
			UserID:   ownerID,
			Role:     models.GroupRoleOwner,
			JoinedAt: time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Get returns a group by ID.
func Get(db *gorm.DB, id uint64) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.Group
	if err := db.First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}

		return nil, err
	}

	return &g, nil
}

// List returns all groups by name.
func List(db *gorm.DB) ([]models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	groups := make([]models.Group, 0)
	if err := db.Order("name ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// Join adds userID to a group as a member.
func Join(db *gorm.DB, groupID, userID uint64) error {
	if _, err := Get(db, groupID); err != nil {
		return err
	}

	if ok, err := IsMember(db, groupID, userID); err != nil {
		return err
	} else if ok {
		return ErrAlreadyMember
	}

	return db.Create(&models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.GroupRoleMember,
		JoinedAt: time.Now(),
	}).Error
}

// Leave removes userID from a group. Owners cannot leave.
func Leave(db *gorm.DB, groupID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	var m models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}

		return err
	}

	if m.Role == models.GroupRoleOwner {
		return ErrOwnerCannotLeave
	}

	return db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{}).Error
}

// IsMember reports whether userID belongs to the group.
func IsMember(db *gorm.DB, groupID, userID uint64) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	if err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Members returns the members of a group with their users, owner first.
func Members(db *gorm.DB, groupID uint64) ([]models.GroupMember, error) {
	if _, err := Get(db, groupID); err != nil {
		return nil, err
	}

	members := make([]models.GroupMember, 0)
	if err := db.Preload("User").Where("group_id = ?", groupID).
		Order("CASE WHEN role = 'owner' THEN 0 ELSE 1 END, joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

func matching(db *gorm.DB, search string) *gorm.DB {
	tx := db.Model(&models.Group{})

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	return tx
}

// Count returns the number of groups whose name or description contains search.
func Count(db *gorm.DB, search string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := matching(db, search).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// Search returns one page of groups whose name or description contains search, newest first.
func Search(db *gorm.DB, search string, offset, limit int) ([]models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	groups := make([]models.Group, 0)
	if err := matching(db, search).Order("id DESC").Offset(offset).Limit(limit).Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// MemberCounts returns the number of members per group id.
func MemberCounts(db *gorm.DB, groupIDs []uint64) (map[uint64]int64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	counts := make(map[uint64]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		GroupID uint64
		Members int64
	}

	if err := db.Model(&models.GroupMember{}).
		Select("group_id, COUNT(*) AS members").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.GroupID] = r.Members
	}

	return counts, nil
}

// Delete removes a group and its memberships. Posts keep their group id.
func Delete(db *gorm.DB, id uint64) error {
	if _, err := Get(db, id); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Group{}, id).Error
	})
}
