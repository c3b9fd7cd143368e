package sapling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"", End},
		{"end", End},
		{" END ", End},
		{"start", Start},
		{"3", At(3)},
		{"-1", At(-1)},
	}
	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParsePosition("middle")
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "start", Start.String())
	assert.Equal(t, "end", End.String())
	assert.Equal(t, "7", At(7).String())
	assert.Equal(t, "invalid", Position{}.String())
	assert.False(t, Position{}.Valid())
	assert.True(t, At(0).Valid())
}

func TestPositionSlot(t *testing.T) {
	assert.Equal(t, 0, Start.slot(4))
	assert.Equal(t, 4, End.slot(4))
	assert.Equal(t, 2, At(2).slot(4))
	assert.Equal(t, 4, At(10).slot(4))
	assert.Equal(t, 0, At(-2).slot(4))
}
