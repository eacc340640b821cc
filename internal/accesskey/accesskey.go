// Package accesskey generates and normalizes redeemable codes for ad payments and subscription keys.
//
// Codes are grouped blocks of an unambiguous upper-case alphabet, e.g. "AD-7KQ4-M9XW-2HRT".
package accesskey

import (
	"crypto/rand"
	"errors"
	"strings"
)

const (
	// GroupLen is the number of characters per block.
	GroupLen = 4
	// Groups is the number of blocks after the prefix.
	Groups = 3

	// PrefixAd marks codes that redeem advertising credit.
	PrefixAd = "AD"
	// PrefixSubscription marks codes that unlock a subscription plan.
	PrefixSubscription = "SUB"

	separator = "-"
)

// Alphabet excludes 0/O and 1/I/L so codes survive being read aloud or retyped.
const Alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// ErrInvalidCode is returned by Normalize for input that cannot be a generated code.
var ErrInvalidCode = errors.New("invalid access key")

// New returns a fresh code with the given prefix.
func New(prefix string) string {
	body := random(GroupLen * Groups)

	parts := make([]string, 0, Groups+1)
	if prefix != "" {
		parts = append(parts, strings.ToUpper(prefix))
	}

	for i := 0; i < Groups; i++ {
		parts = append(parts, string(body[i*GroupLen:(i+1)*GroupLen]))
	}

	return strings.Join(parts, separator)
}

// Normalize trims and upper-cases user input and checks it only uses the code alphabet.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrInvalidCode
	}

	for _, block := range strings.Split(code, separator) {
		if block == "" {
			return "", ErrInvalidCode
		}

		for _, r := range block {
			if !strings.ContainsRune(Alphabet, r) && (r < 'A' || r > 'Z') {
				return "", ErrInvalidCode
			}
		}
	}

	return code, nil
}

// random draws n characters from Alphabet without modulo bias.
func random(n int) []byte {
	const maxUnbiased = 256 - (256 % len(Alphabet))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("accesskey: reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}

			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return out
}
