// Package roomcode handles the 5-digit codes that identify rooms.
package roomcode

import (
	"fmt"
	"math/rand"
	"strings"
)

const Length = 5

// Normalize strips every non-digit character and truncates to Length.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == Length {
			break
		}
	}
	return b.String()
}

// Valid reports whether s normalizes to a full-length code.
func Valid(s string) bool {
	return len(Normalize(s)) == Length
}

// Generate returns a fresh zero-padded code in [00000, 99999]. Codes are not
// checked against live rooms; a collision silently lands on the existing
// room, which is accepted given the keyspace and room lifetime.
func Generate() string {
	return fmt.Sprintf("%05d", rand.Intn(100000))
}
