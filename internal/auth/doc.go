// Package auth provides registration, sign-in, session tokens and role-based route guards.
//
// Accounts sign in with email and password (Argon2id, with legacy bcrypt hashes upgraded on
// sign-in) or through an optional OpenID Connect provider such as Google.
//
// # Roles and permissions
//
// Every user has exactly one role: SUPER_ADMIN, USER_ADMIN or USER. Permissions are derived from
// the role with PermissionsFor and are never stored. ParseRole rejects unknown role names.
//
// # Sessions
//
// A successful sign-in yields an HS256 token carrying the user id, name, email, role and
// permissions. The token id is also kept as a record in the session storage, so deleting that
// record (sign-out) or marking the user revoked (role change, account disabled) invalidates the
// token before it expires.
//
// # Middleware
//
//	app.Use(authService.Middleware())
//	app.Get("/admin", auth.RequireRole(models.RoleSuperAdmin, models.RoleUserAdmin), handler)
//	app.Post("/api/ads/redeem", auth.RequirePermission(auth.PermAdRedeem), handler)
package auth
