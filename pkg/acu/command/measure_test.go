package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChargingState(t *testing.T) {
	assert.Equal(t, "USB Power OK, Charge suspend", decodeChargingState(0x02))
	assert.Equal(t, "Over or undervoltage present, Fast charge", decodeChargingState(0x05))
	assert.Equal(t, "Charge done", decodeChargingState(0x08))
	assert.Equal(t, "Pre charge", decodeChargingState(0x0C))
	assert.Equal(t, "Error in charge information", decodeChargingState(0xFC))
}

func TestDecodeMeasureVoltage(t *testing.T) {
	resp, err := DecodeMeasure(tagGetBatteryVoltage, []byte{0xAA, 0xBB})
	require.NoError(t, err)
	assert.InDelta(t, 43.707, resp.(GetBatteryVoltage).Volts, 1e-3)
}

func TestDecodeMeasureSetEXTDisplayRequest(t *testing.T) {
	cmd := SetEXTDisplay{Flag: 0xFF}
	assert.Equal(t, []byte{0xFF}, cmd.RequestPayload())
}

func TestDecodeMeasureZIPSwitchState(t *testing.T) {
	resp, err := DecodeMeasure(tagGetZIPSwitchState, []byte{0x01})
	require.NoError(t, err)
	assert.True(t, resp.(GetZIPSwitchState).Engaged)
}
