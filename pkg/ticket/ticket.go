// Package ticket mints the human-facing identifiers shown to complainants.
package ticket

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	Prefix = "TICKET"
	// tokenBytes of randomness render as 2*tokenBytes hex characters.
	tokenBytes = 4
)

var pattern = regexp.MustCompile(`^TICKET-[0-9A-F]{8}$`)

// Generator produces ticket ids from a random source. The zero value reads
// from crypto/rand.
type Generator struct {
	Rand io.Reader
}

// Generate returns a new id such as "TICKET-9F3A00C1". Ids are not unique
// by construction; callers must insert them under a uniqueness constraint.
func (g Generator) Generate() (string, error) {
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("read ticket entropy: %w", err)
	}
	return Prefix + "-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Valid reports whether id has the ticket format.
func Valid(id string) bool {
	return pattern.MatchString(id)
}
