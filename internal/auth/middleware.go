package auth

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "session"
	// LoginPath is where browsers without a session are sent.
	LoginPath = "/login"

	// SubjectLocal holds the signed-in user id as a string for the access log.
	SubjectLocal = "userID"

	localsKey = "session"
	apiPrefix = "/api"
)

// Middleware parses the session cookie, or a bearer token, and makes the claims available through
// FromContext. It never rejects a request; route guards do that.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}

		if token == "" {
			return c.Next()
		}

		claims, err := s.ParseToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid session")
			return c.Next()
		}

		c.Locals(localsKey, claims)
		c.Locals("CurrentUser", claims)
		c.Locals(SubjectLocal, strconv.FormatUint(claims.UserID(), 10))

		return c.Next()
	}
}

// FromContext returns the claims of the signed-in user.
func FromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(localsKey).(*Claims)
	return claims, ok && claims != nil
}

// Authenticated requires any valid session.
func Authenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := FromContext(c); !ok {
			return unauthenticated(c)
		}

		return c.Next()
	}
}

// RequireRole admits sessions whose role is one of roles. Without a session browsers are redirected
// to the login page and API clients get 401. A wrong role yields 404 for pages, so admin pages are
// indistinguishable from missing ones, and 403 for the API.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := FromContext(c)
		if !ok {
			return unauthenticated(c)
		}

		if !slices.Contains(roles, claims.Role) {
			log.Warn().Uint64("user_id", claims.UserID()).Str("role", string(claims.Role)).
				Str("path", c.Path()).Msg("role not allowed")

			return forbidden(c)
		}

		return c.Next()
	}
}

// RequirePermission admits sessions whose role grants permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := FromContext(c)
		if !ok {
			return unauthenticated(c)
		}

		if !claims.Can(permission) {
			log.Warn().Uint64("user_id", claims.UserID()).Str("permission", permission).
				Msg("user lacks required permission")

			return forbidden(c)
		}

		return c.Next()
	}
}

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), apiPrefix)
}

func unauthenticated(c *fiber.Ctx) error {
	if IsAPI(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	return c.Redirect(LoginPath)
}

func forbidden(c *fiber.Ctx) error {
	if IsAPI(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	return fiber.ErrNotFound
}
