// Package shortcode generates random short codes and validates custom
// aliases. Generation makes no uniqueness guarantee; the allocation service
// verifies against the store.
package shortcode

import (
	"math/rand"
	"regexp"
)

// alphabet is URL-safe base57: alphanumerics minus the lookalikes 0, O, I, l
// and 1.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// DefaultLength is the length of generated short codes.
const DefaultLength = 7

var aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$`)

// Generate returns a random code of the given length drawn from the URL-safe
// alphabet. The package-level rand source is safe for concurrent creates.
func Generate(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// ValidateAlias reports whether alias is a valid custom alias: 3-20
// characters of alphanumerics, hyphens and underscores, with the first and
// last character alphanumeric.
func ValidateAlias(alias string) bool {
	if len(alias) < 3 || len(alias) > 20 {
		return false
	}
	return aliasRegex.MatchString(alias)
}
