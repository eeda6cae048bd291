package core

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// RandomString returns a random string of length n drawn from [a-z2-7].
func RandomString(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	return strings.ToLower(s[:n])
}
