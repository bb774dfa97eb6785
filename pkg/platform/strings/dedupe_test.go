package strings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeFold(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		fold     func(string) string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims and drops blanks",
			input:    []string{"  a ", "", "   ", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "keeps case without fold",
			input:    []string{"Pol1", "POL1"},
			expected: []string{"Pol1", "POL1"},
		},
		{
			name:     "folds before comparing",
			input:    []string{"Pol1", "POL1", "pol2"},
			fold:     strings.ToLower,
			expected: []string{"pol1", "pol2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeFold(tt.input, tt.fold))
		})
	}
}

func TestDedupeUpper(t *testing.T) {
	got := DedupeUpper([]string{" pol001", "POL001", "pol002 ", "Pol001"})
	assert.Equal(t, []string{"POL001", "POL002"}, got)
}
