package models

import (
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "0123456789abcdef"
	idLength   = 24
)

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID returns a random 24 character hex identifier for forms and submissions.
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// CanonicalID lower-cases id. Stored ids are lowercase hex, lookups accept
// either case.
func CanonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// IsValidID reports whether id has the shape produced by NewID.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}
