package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/config"
)

func newVerifyServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.PostForm.Get("secret") != "s3cr3t":
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-secret"]}`))
		case r.PostForm.Get("response") == "good" && r.PostForm.Get("remoteip") == "10.0.0.1":
			_, _ = w.Write([]byte(`{"success":true,"hostname":"localhost"}`))
		case r.PostForm.Get("response") == "boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		}
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestVerifyDisabled(t *testing.T) {
	v := New(config.Captcha{})

	assert.False(t, v.Enabled())
	require.NoError(t, v.Verify(context.Background(), "", ""))

	var nilVerifier *Verifier
	require.NoError(t, nilVerifier.Verify(context.Background(), "", ""))
}

func TestVerify(t *testing.T) {
	srv := newVerifyServer(t)

	v := New(config.Captcha{SecretKey: "s3cr3t", SiteKey: "site", VerifyURL: srv.URL, Timeout: 5 * time.Second})
	assert.True(t, v.Enabled())
	assert.Equal(t, "site", v.SiteKey())

	tests := []struct {
		name    string
		token   string
		want    error
		wantAny bool
	}{
		{name: "valid", token: "good"},
		{name: "missing", token: "  ", want: ErrMissingToken},
		{name: "rejected", token: "bad", want: ErrFailed},
		{name: "server error", token: "boom", wantAny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), tt.token, "10.0.0.1")

			switch {
			case tt.want != nil:
				require.ErrorIs(t, err, tt.want)
			case tt.wantAny:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	srv := newVerifyServer(t)

	v := New(config.Captcha{SecretKey: "wrong", VerifyURL: srv.URL})
	require.ErrorIs(t, v.Verify(context.Background(), "good", "10.0.0.1"), ErrFailed)
}

func TestVerifyCanceledContext(t *testing.T) {
	v := New(config.Captcha{SecretKey: "s3cr3t", VerifyURL: "http://127.0.0.1:1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, v.Verify(ctx, "good", ""), context.Canceled)
}
