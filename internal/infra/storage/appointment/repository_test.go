package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "Анна", "Анна"},
		{"percent escaped", "50%", `50\%`},
		{"underscore escaped", "a_b", `a\_b`},
		{"backslash escaped first", `a\%b`, `a\\\%b`},
		{"all metacharacters", `%_\`, `\%\_\\`},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLikePattern(tt.input))
		})
	}
}
