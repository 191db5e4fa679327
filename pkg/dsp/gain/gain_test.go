package gain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDbConversion(t *testing.T) {
	tests := []struct {
		name   string
		linear float64
		db     float64
	}{
		{"Unity gain", 1.0, 0.0},
		{"Half amplitude", 0.5, -6.02},
		{"Double amplitude", 2.0, 6.02},
		{"Zero amplitude", 0.0, MinDB},
		{"Negative amplitude", -1.0, MinDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.db, LinearToDb(tt.linear), 0.01)
			if tt.db != MinDB {
				assert.InDelta(t, math.Abs(tt.linear), DbToLinear(tt.db), 0.01)
			}
		})
	}
}

func TestDbToLinearSilence(t *testing.T) {
	assert.Zero(t, DbToLinear(MinDB))
	assert.Zero(t, DbToLinear(MinDB-10))
}

func TestApplyBuffer(t *testing.T) {
	buf := []float32{1, -1, 0.5}
	ApplyBuffer(buf, 2)
	assert.Equal(t, []float32{2, -2, 1}, buf)
}

func TestAddScaled(t *testing.T) {
	dst := []float32{1, 1, 1}
	AddScaled(dst, []float32{1, 2}, 0.5)
	assert.Equal(t, []float32{1.5, 2, 1}, dst)
}
