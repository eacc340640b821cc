package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath prefixes every JSON endpoint.
	APIPath = RootPath + "api"

	// AdminPath prefixes every admin page.
	AdminPath = RootPath + "admin"

	// LoginPath is the login page.
	LoginPath = RootPath + "login"

	// LogoutPath ends the browser session.
	LogoutPath = RootPath + "logout"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// DefaultPageSize is used by paginated admin lists.
	DefaultPageSize = 25
)
