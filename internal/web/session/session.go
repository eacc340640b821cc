// Package session keeps server-side session records so that signed session tokens can be revoked.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

const (
	recordPrefix  = "sess:"
	revokedPrefix = "revoked:"
	statePrefix   = "state:"
)

// ErrNotFound is returned when a session record is missing, expired or revoked.
var ErrNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store

// Data is the server-side record of a signed-in session, keyed by the token id.
type Data struct {
	UserID    uint64      `json:"userId"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(recordPrefix+sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if sessionID == "" {
		return ErrNotFound
	}

	byteData, err := Store.Storage.Get(recordPrefix + sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes a session record.
func Delete(sessionID string) error {
	return Store.Storage.Delete(recordPrefix + sessionID)
}

// RevokeUser invalidates every session of a user created before now. The marker lives as long
// as the longest possible session.
func RevokeUser(userID uint64, now time.Time, exp time.Duration) error {
	return Store.Storage.Set(revokedKey(userID), []byte(strconv.FormatInt(now.UnixNano(), 10)), exp)
}

// RevokedBefore returns the time before which sessions of userID are invalid, or the zero time.
func RevokedBefore(userID uint64) (time.Time, error) {
	raw, err := Store.Storage.Get(revokedKey(userID))
	if err != nil || len(raw) == 0 {
		return time.Time{}, err
	}

	nanos, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(0, nanos), nil
}

// SaveState remembers a sign-in state token until ttl passes.
func SaveState(state string, ttl time.Duration) error {
	return Store.Storage.Set(statePrefix+state, []byte{1}, ttl)
}

// ConsumeState reports whether state was saved and not yet used, and forgets it.
func ConsumeState(state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	raw, err := Store.Storage.Get(statePrefix + state)
	if err != nil || len(raw) == 0 {
		return false, err
	}

	return true, Store.Storage.Delete(statePrefix + state)
}

func revokedKey(userID uint64) string {
	return revokedPrefix + strconv.FormatUint(userID, 10)
}

// Init initializes the session store with the provided storage backend.
// A nil storage selects fiber's in-memory storage.
func Init(storage fiber.Storage) {
	if storage == nil {
		Store = session.New()
		return
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
