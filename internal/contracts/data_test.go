package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_DollarVolume(t *testing.T) {
	price := 50.0
	volume := int64(200_000)

	tests := []struct {
		name  string
		quote Quote
		want  float64
	}{
		{
			name:  "both present",
			quote: Quote{Price: &price, Volume: &volume},
			want:  10_000_000,
		},
		{
			name:  "missing price",
			quote: Quote{Volume: &volume},
			want:  0,
		},
		{
			name:  "missing volume",
			quote: Quote{Price: &price},
			want:  0,
		},
		{
			name:  "empty quote",
			quote: Quote{},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quote.DollarVolume())
		})
	}
}

func TestRecessionPerformance_Insufficient(t *testing.T) {
	sentinel := RecessionPerformance{
		Symbol:         "XYZ",
		TotalReturn:    InsufficientDataReturn,
		DividendStatus: StatusNoData,
	}
	assert.True(t, sentinel.Insufficient())

	real := RecessionPerformance{
		Symbol:         "KO",
		TotalReturn:    -20.0,
		DividendStatus: StatusMaintained,
	}
	assert.False(t, real.Insufficient())
}
