// Package authroutes implements the sign-in endpoints under /api/auth.
//
// The routes follow the layout browser auth clients expect:
//
//	GET  /api/auth/providers            - configured sign-in methods
//	GET  /api/auth/csrf                 - CSRF token for the POST routes
//	GET  /api/auth/session              - current session, {} when signed out
//	POST /api/auth/callback/credentials - email and password sign-in
//	POST /api/auth/signout              - end the session
//	GET  /api/auth/signin/oidc          - start the OIDC flow
//	GET  /api/auth/callback/oidc        - OIDC redirect target
//
// POST routes need the token from /api/auth/csrf in the X-CSRF-Token header or the csrfToken
// form field.
package authroutes
