package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsFromFloat_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want Cents
	}{
		{0, 0},
		{80.00, 8000},
		{5.00, 500},
		{0.004, 0},
		{0.005, 1},
		{0.015, 2},
		{12.345, 1235},
		{12.344, 1234},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CentsFromFloat(tt.in), "CentsFromFloat(%v)", tt.in)
	}
}

func TestCents_MulRate(t *testing.T) {
	// 10.05 at 10% is 1.005, rounded half-up to 1.01.
	assert.Equal(t, Cents(101), Cents(1005).MulRate(0.10))
	assert.Equal(t, Cents(1600), Cents(16000).MulRate(0.10))
	assert.Equal(t, Cents(0), Cents(1234).MulRate(0))
}

func TestCents_JSON(t *testing.T) {
	raw, err := json.Marshal(Cents(17600))
	require.NoError(t, err)
	assert.Equal(t, "176", string(raw))

	var c Cents
	require.NoError(t, json.Unmarshal([]byte("80.00"), &c))
	assert.Equal(t, Cents(8000), c)
}

func TestCents_String(t *testing.T) {
	assert.Equal(t, "176.00", Cents(17600).String())
	assert.Equal(t, "0.05", Cents(5).String())
}
