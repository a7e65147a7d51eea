// Package normalize provides the canonical cleanup applied to user input
// before it is validated or stored.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lowercases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims and lowercases a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone trims a phone number. Formatting is kept as entered.
func Phone(s string) string {
	return strings.TrimSpace(s)
}

// SortKey returns the case- and accent-folded form of s used for
// name-ordered listings.
func SortKey(s string) string {
	return text.Fold(Name(s))
}
