package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5, 0, 10))
	assert.Equal(t, 10, Clamp(15, 0, 10))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestFloorInt(t *testing.T) {
	assert.Equal(t, 617, FloorInt(617.9))
	assert.Equal(t, -1, FloorInt(-0.5))
	assert.Equal(t, 0, FloorInt(math.NaN()))
	assert.Equal(t, math.MaxInt, FloorInt(math.Inf(1)))
	assert.Equal(t, math.MaxInt, FloorInt(1e20))
	assert.Equal(t, math.MinInt, FloorInt(-1e20))
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive(1, 2.5))
	assert.False(t, IsPositive(1, 0))
	assert.False(t, IsPositive(math.NaN()))
	assert.Equal(t, 3.5, Abs(-3.5))
}
