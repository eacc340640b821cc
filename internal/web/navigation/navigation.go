// Package navigation builds the breadcrumbs and the role-filtered admin menu of a page.
package navigation

import (
	"slices"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// Sections of the site.
const (
	SectionHome  = "home"
	SectionAdmin = "admin"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is an entry of the admin menu.
type MenuItem struct {
	Title string
	URL   string
	Page  string
	roles []models.Role
}

var (
	staff = []models.Role{models.RoleSuperAdmin, models.RoleUserAdmin}
	super = []models.Role{models.RoleSuperAdmin}

	adminMenu = []MenuItem{
		{Title: "Dashboard", URL: "/admin", Page: "dashboard", roles: staff},
		{Title: "Payments", URL: "/admin/payments", Page: "payments", roles: staff},
		{Title: "Subscriptions", URL: "/admin/subscriptions", Page: "subscriptions", roles: super},
		{Title: "Groups", URL: "/admin/groups", Page: "groups", roles: super},
		{Title: "Users", URL: "/admin/users", Page: "users", roles: super},
		{Title: "Settings", URL: "/admin/settings", Page: "settings", roles: super},
	}
)

// Menu returns the admin menu entries role may open. Unknown roles get none.
func Menu(role models.Role) []MenuItem {
	items := make([]MenuItem, 0, len(adminMenu))

	for _, item := range adminMenu {
		if slices.Contains(item.roles, role) {
			items = append(items, item)
		}
	}

	return items
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Menu          []MenuItem
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
		Menu:          make([]MenuItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithMenu attaches the admin menu visible to role.
func (c *Context) WithMenu(role models.Role) *Context {
	c.Menu = Menu(role)
	return c
}

// Admin starts an admin page context with the Home and Admin breadcrumbs and the menu for role.
func Admin(pageTitle, page string, role models.Role) *Context {
	return NewContext(pageTitle, SectionAdmin, page).
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Admin", "/admin", false).
		WithMenu(role)
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
