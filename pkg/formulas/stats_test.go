package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestPopStdDev(t *testing.T) {
	// Population formula: divisor N, not N-1.
	assert.InDelta(t, 2.0, PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.Equal(t, 0.0, PopStdDev([]float64{3, 3, 3}))
	assert.Equal(t, 0.0, PopStdDev(nil))
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"odd count", []float64{9, 1, 5}, 5},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
		{"single value", []float64{7}, 7},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.data))
		})
	}
}

func TestMedianDoesNotModifyInput(t *testing.T) {
	data := []float64{3, 1, 2}
	Median(data)
	assert.Equal(t, []float64{3, 1, 2}, data)
}

func TestZScores(t *testing.T) {
	got := ZScores([]float64{1, 2, 3})

	assert.InDelta(t, -1.2247448714, got[0], 1e-9)
	assert.InDelta(t, 0, got[1], 1e-9)
	assert.InDelta(t, 1.2247448714, got[2], 1e-9)
}

func TestZScoresZeroVariance(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, ZScores([]float64{5, 5, 5}))
}

func TestZScoresEmpty(t *testing.T) {
	assert.Empty(t, ZScores(nil))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(33.3333))
	assert.Equal(t, 0.34, Round2(0.336))
	assert.Equal(t, -1.5, Round2(-1.499))
}
