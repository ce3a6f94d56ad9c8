// Package names canonicalizes identifiers used as registry keys and seed
// material.
//
// Names typed by hand in model files may arrive in either composed or
// decomposed Unicode form. Every registry and every random-stream seed goes
// through Canonical so that both spellings refer to the same entry and
// produce the same stream.
package names

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonical trims surrounding whitespace and applies NFC normalization.
func Canonical(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Equal reports whether two names are the same after canonicalization.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}
