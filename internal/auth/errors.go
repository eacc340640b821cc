package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrInvalidInput is returned when registration or sign-in input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmailExists is returned when attempting to register an email that is already taken.
	ErrEmailExists = errors.New("email already registered")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRole is returned for role names outside SUPER_ADMIN, USER_ADMIN and USER.
	ErrInvalidRole = errors.New("invalid role")

	// ErrForbidden is returned when the acting user may not perform an administrative change.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfDemotion is returned when a super admin tries to lower their own role or disable themselves.
	ErrSelfDemotion = errors.New("cannot demote or disable yourself")

	// ErrInvalidToken is returned when a session token is malformed, expired or badly signed.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSessionRevoked is returned when a well-formed token has no live session record.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrEmailNotVerified is returned when an OIDC identity carries an unverified email.
	ErrEmailNotVerified = errors.New("email address not verified by identity provider")
)
