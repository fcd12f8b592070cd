package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInflationType(t *testing.T) {
	assert.Equal(t, "single", decodeInflationType(0x44))
	assert.Equal(t, "double-race", decodeInflationType(0xB4))
	assert.Equal(t, "double", decodeInflationType(0xBB))
	assert.Equal(t, "clear", decodeInflationType(0xFF))
	assert.Equal(t, "unknown", decodeInflationType(0x00))
}

func TestDecodeAirbagFireAIRBAGForbidden(t *testing.T) {
	_, err := DecodeAirbag(tagFireAIRBAG, nil)
	assert.ErrorIs(t, err, ErrForbiddenCommand)
}

func TestDecodeCalibSquibResMaxWordStaysInRange(t *testing.T) {
	// 0xFFFF / 1000 = 65.535, the largest value U13_3 can produce, which is
	// still inside +/-100 ohms and so surfaces as a value, as does a small
	// in-range reading.
	resp, err := DecodeAirbag(tagGetCalibSquibRes, []byte{0xFF, 0xFF, 0x00, 0x32})
	require.NoError(t, err)
	squib := resp.(GetCalibSquibRes)
	assert.True(t, squib.HasRes1)
	assert.InDelta(t, 65.535, squib.Res1, 1e-3)
	assert.True(t, squib.HasRes2)
	assert.InDelta(t, 0.05, squib.Res2, 1e-4)
}

func TestSetInflationTypeRequestPayload(t *testing.T) {
	assert.Equal(t, []byte{0xBB}, SetInflationType{Type: 0xBB}.RequestPayload())
}
