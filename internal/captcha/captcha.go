// Package captcha verifies CAPTCHA responses against a reCAPTCHA-compatible site-verify endpoint.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cineverse-captions/cineverse/internal/config"
)

var (
	// ErrMissingToken is returned when verification is enabled and the client sent no token.
	ErrMissingToken = errors.New("captcha token missing")
	// ErrFailed is returned when the provider rejects the token.
	ErrFailed = errors.New("captcha verification failed")
)

// Response is the site-verify reply.
type Response struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// Verifier checks CAPTCHA tokens. The zero secret disables verification.
type Verifier struct {
	secret  string
	siteKey string
	url     string
	timeout time.Duration
}

// New creates a Verifier from the captcha configuration.
func New(cfg config.Captcha) *Verifier {
	return &Verifier{
		secret:  cfg.SecretKey,
		siteKey: cfg.SiteKey,
		url:     cfg.VerifyURL,
		timeout: cfg.Timeout,
	}
}

// Enabled reports whether tokens are checked.
func (v *Verifier) Enabled() bool {
	return v != nil && v.secret != ""
}

// SiteKey is the public key rendered into forms.
func (v *Verifier) SiteKey() string {
	if v == nil {
		return ""
	}

	return v.siteKey
}

// Verify posts the token to the site-verify endpoint. It always succeeds when disabled.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := v.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout == 0 || left < timeout {
			timeout = left
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)

	args.Set("secret", v.secret)
	args.Set("response", token)

	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	agent := fiber.Post(v.url).Form(args)
	if timeout > 0 {
		agent = agent.Timeout(timeout)
	}

	var resp Response

	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return fmt.Errorf("captcha request failed: %w", errors.Join(errs...))
	}

	if code != fiber.StatusOK {
		return fmt.Errorf("captcha request failed: status %d", code)
	}

	if !resp.Success {
		log.Info().Strs("error_codes", resp.ErrorCodes).Str("remote_ip", remoteIP).Msg("captcha rejected")
		return ErrFailed
	}

	return nil
}
