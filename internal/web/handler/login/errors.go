// Package login serves the browser login page.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted login form cannot be parsed.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials is shown for unknown emails, wrong passwords and disabled accounts alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrCaptchaFailed is shown when the CAPTCHA challenge was not solved.
	ErrCaptchaFailed = errors.New("please confirm you are not a robot")

	// ErrInternalServerError is returned for unexpected failures during the login process.
	ErrInternalServerError = errors.New("internal server error")
)
