package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		size    int
		want    [][]string
	}{
		{
			name:    "even split",
			symbols: []string{"A", "B", "C", "D"},
			size:    2,
			want:    [][]string{{"A", "B"}, {"C", "D"}},
		},
		{
			name:    "remainder batch",
			symbols: []string{"A", "B", "C"},
			size:    2,
			want:    [][]string{{"A", "B"}, {"C"}},
		},
		{
			name:    "size larger than input",
			symbols: []string{"A", "B"},
			size:    200,
			want:    [][]string{{"A", "B"}},
		},
		{
			name:    "empty input",
			symbols: nil,
			size:    2,
			want:    nil,
		},
		{
			name:    "zero size",
			symbols: []string{"A"},
			size:    0,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batch(tt.symbols, tt.size))
		})
	}
}
