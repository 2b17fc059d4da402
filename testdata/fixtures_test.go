package testdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/fingercount/internal/fingers"
)

func TestHandNames(t *testing.T) {
	names, err := HandNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"three_fingers", "thumb_out_left", "truncated"}, names)
}

func TestLoadHand_Missing(t *testing.T) {
	_, err := LoadHand("nope")
	assert.Error(t, err)
}

func TestFixtures_Classify(t *testing.T) {
	tests := []struct {
		name       string
		states     string
		count      int
		handedness string
	}{
		{"three_fingers", "01110", 3, "Right"},
		{"thumb_out_left", "10000", 1, "Left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand, err := LoadHand(tt.name)
			require.NoError(t, err)
			require.True(t, hand.Valid())
			assert.Equal(t, tt.handedness, hand.Handedness)

			states, count, err := fingers.Classify(hand.Points)
			require.NoError(t, err)
			assert.Equal(t, tt.states, states.String())
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestFixtures_Truncated(t *testing.T) {
	hand, err := LoadHand("truncated")
	require.NoError(t, err)
	assert.False(t, hand.Valid())

	_, _, err = fingers.Classify(hand.Points)
	assert.ErrorIs(t, err, fingers.ErrInvalidHandShape)
}
