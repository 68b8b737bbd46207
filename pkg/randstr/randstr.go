package randstr

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const Base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type Generator struct {
	alphabet string
}

func New(alphabet string) *Generator {
	if alphabet == "" {
		alphabet = Base36Upper
	}

	return &Generator{alphabet: alphabet}
}

// GenerateRandomString returns a crypto random string of length characters
// drawn from the generator's alphabet.
func (g *Generator) GenerateRandomString(length int) (string, error) {
	if length == 0 {
		return "", nil
	}

	generate, err := nanoid.CustomASCII(g.alphabet, length)
	if err != nil {
		return "", fmt.Errorf("failed to create id generator: %w", err)
	}

	return generate(), nil
}
