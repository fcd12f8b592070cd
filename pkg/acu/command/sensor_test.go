package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRevReadsDistinctSoftwareAndHardwareWords(t *testing.T) {
	// software word = 0x03E8 (1000 -> 10.0 after the *10 scale), hardware
	// word = 0x07D0 (2000 -> 20.0 after the *10 scale). A regression where
	// both fields read the same two bytes would report 10.0/10.0 instead.
	rev := decodeRev([]byte{0x03, 0xE8, 0x07, 0xD0})
	assert.InDelta(t, 10.0, rev.Software, 1e-4)
	assert.InDelta(t, 20.0, rev.Hardware, 1e-4)
}

func TestDecodeAccelGyroScaling(t *testing.T) {
	resp, err := DecodeSensor(tagGetBodyAccel, []byte{0xAA, 0xBB, 0xAA, 0xBB, 0xAA, 0xBB})
	require.NoError(t, err)
	accel := resp.(GetBodyAccel).Accel
	assert.InDelta(t, 21.307161, accel.X, 1e-2)
	assert.InDelta(t, 21.307161, accel.Y, 1e-2)
	assert.InDelta(t, 21.307161, accel.Z, 1e-2)
}

func TestDecodeSensorEnablesMask(t *testing.T) {
	resp, err := DecodeSensor(tagGetSensorReadingEnables, []byte{0x35})
	require.NoError(t, err)
	assert.Equal(t, byte(0x35), resp.(GetSensorReadingEnables).Mask)
}

func TestEnableSensorReadingOptionalMask(t *testing.T) {
	assert.Nil(t, EnableSensorReading{}.RequestPayload())
	assert.Equal(t, []byte{0x35}, EnableSensorReading{Mask: 0x35, HasMask: true}.RequestPayload())
}
