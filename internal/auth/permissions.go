package auth

import (
	"slices"
	"strings"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// Permission constants. Permissions are derived from a user's role and never stored.
const (
	// PermPostCreate allows publishing movies, subtitles, articles and micro-posts.
	PermPostCreate = "post.create"
	// PermPostManage allows editing or deleting other users' posts.
	PermPostManage = "post.manage"
	// PermExamTake allows submitting exams.
	PermExamTake = "exam.take"
	// PermExamManage allows creating and publishing exams.
	PermExamManage = "exam.manage"
	// PermGroupManage allows moderating groups.
	PermGroupManage = "group.manage"
	// PermAdRedeem allows redeeming an ad code for an own post.
	PermAdRedeem = "ad.redeem"
	// PermAdManage allows generating ad codes.
	PermAdManage = "ad.manage"
	// PermUserManage allows changing roles and disabling accounts.
	PermUserManage = "user.manage"
	// PermSettingsManage allows editing application settings.
	PermSettingsManage = "settings.manage"
	// PermPaymentManage allows linking payments to posts.
	PermPaymentManage = "payment.manage"
)

var (
	userPermissions = []string{PermPostCreate, PermExamTake, PermAdRedeem}

	userAdminPermissions = append(slices.Clone(userPermissions),
		PermPostManage, PermExamManage, PermGroupManage, PermAdManage, PermPaymentManage)

	superAdminPermissions = append(slices.Clone(userAdminPermissions),
		PermUserManage, PermSettingsManage)
)

// ParseRole accepts the canonical role names, case-insensitively. Anything else is ErrInvalidRole.
func ParseRole(s string) (models.Role, error) {
	r := models.Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}

	return r, nil
}

// PermissionsFor returns the permissions of a role. Unknown roles have none.
func PermissionsFor(role models.Role) []string {
	switch role {
	case models.RoleSuperAdmin:
		return slices.Clone(superAdminPermissions)
	case models.RoleUserAdmin:
		return slices.Clone(userAdminPermissions)
	case models.RoleUser:
		return slices.Clone(userPermissions)
	default:
		return nil
	}
}

// HasPermission reports whether role grants permission.
func HasPermission(role models.Role, permission string) bool {
	return slices.Contains(PermissionsFor(role), permission)
}
