package randstr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		length   int
	}{
		{name: "room code", alphabet: Base36Upper, length: 6},
		{name: "default alphabet", alphabet: "", length: 12},
		{name: "digits", alphabet: "0123456789", length: 32},
		{name: "empty", alphabet: Base36Upper, length: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.alphabet)
			s, err := g.GenerateRandomString(tt.length)
			require.NoError(t, err)
			assert.Len(t, s, tt.length)

			alphabet := tt.alphabet
			if alphabet == "" {
				alphabet = Base36Upper
			}
			for _, c := range s {
				assert.True(t, strings.ContainsRune(alphabet, c), "unexpected char %q", c)
			}
		})
	}
}

func TestGenerateRandomStringUniqueness(t *testing.T) {
	g := New(Base36Upper)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := g.GenerateRandomString(6)
		require.NoError(t, err)
		seen[s] = true
	}

	assert.Greater(t, len(seen), 990)
}
