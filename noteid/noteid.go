// Package noteid generates note identifiers: fixed-length strings drawn
// uniformly from a 36-symbol alphabet using crypto/rand.
//
// With the default length of 16 an identifier carries about 82 bits of
// entropy, so enumerating live notes is infeasible and a random collision
// is negligible. The store still rejects a colliding identifier and asks for
// another one, see notestore.
package noteid

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

const (
	// Alphabet is the set of symbols an identifier is drawn from.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	DefaultLength = 16
	MinLength     = 10
	MaxLength     = 64

	// Bytes at or above this value are rejected so that every symbol is equally
	// likely (252 = 36*7).
	rejectThreshold = 256 - 256%len(Alphabet)
)

// Generator implements interfaces.IDGenerator.
type Generator struct {
	length int
	rand   io.Reader
}

var _ interfaces.IDGenerator = (*Generator)(nil)

// NewGenerator returns a generator of identifiers with the given length.
func NewGenerator(length int) (*Generator, error) {
	if length < MinLength || length > MaxLength {
		return nil, fmt.Errorf("identifier length must be between %d and %d, got %d", MinLength, MaxLength, length)
	}
	return &Generator{length: length, rand: rand.Reader}, nil
}

// DefaultGenerator returns a generator with DefaultLength.
func DefaultGenerator() *Generator {
	return &Generator{length: DefaultLength, rand: rand.Reader}
}

func (g *Generator) Length() int {
	return g.length
}

// Next returns a fresh identifier.
func (g *Generator) Next() (interfaces.NoteID, error) {
	result := make([]byte, 0, g.length)
	buf := make([]byte, g.length+g.length/4)
	for len(result) < g.length {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectThreshold {
				continue
			}
			result = append(result, Alphabet[int(b)%len(Alphabet)])
			if len(result) == g.length {
				break
			}
		}
	}
	return interfaces.NoteID(result), nil
}

// Valid reports whether id could have been produced by a generator of any
// supported length, so notes stored before a length change stay readable.
func (g *Generator) Valid(id interfaces.NoteID) bool {
	return len(id) >= MinLength && len(id) <= MaxLength && validSymbols(id)
}

// Valid reports whether id has the given length and only alphabet symbols.
func Valid(id interfaces.NoteID, length int) bool {
	return len(id) == length && validSymbols(id)
}

func validSymbols(id interfaces.NoteID) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
