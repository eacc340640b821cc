package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Home", SectionHome, "home")

	assert.Equal(t, "Home", ctx.PageTitle)
	assert.Equal(t, SectionHome, ctx.ActiveSection)
	assert.Equal(t, "home", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Menu)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Users", SectionAdmin, "users").
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Admin", "/admin", false).
		AddBreadcrumb("Users", "/admin/users", true)

	require.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/admin", ctx.Breadcrumbs[1].URL)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Settings", SectionAdmin, "settings")

	assert.True(t, ctx.IsActive(SectionAdmin, "settings"))
	assert.False(t, ctx.IsActive(SectionHome, "settings"))
	assert.False(t, ctx.IsActive(SectionAdmin, "users"))
	assert.True(t, ctx.IsSectionActive(SectionAdmin))
	assert.False(t, ctx.IsSectionActive(SectionHome))
}

func titles(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}

	return out
}

func TestMenuIsFilteredByRole(t *testing.T) {
	tests := []struct {
		role models.Role
		want []string
	}{
		{role: models.RoleSuperAdmin, want: []string{"Dashboard", "Payments", "Subscriptions", "Groups", "Users", "Settings"}},
		{role: models.RoleUserAdmin, want: []string{"Dashboard", "Payments"}},
		{role: models.RoleUser, want: []string{}},
		{role: models.Role("ROOT"), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Menu(tt.role)))
		})
	}
}

func TestAdmin(t *testing.T) {
	ctx := Admin("Payments", "payments", models.RoleUserAdmin).
		AddBreadcrumb("Payments", "/admin/payments", true)

	assert.True(t, ctx.IsActive(SectionAdmin, "payments"))
	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, []string{"Dashboard", "Payments"}, titles(ctx.Menu))
}
