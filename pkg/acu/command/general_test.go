package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOpAddonsNeverDecodesAnyAddon(t *testing.T) {
	// flags & k == 1 never holds for k in {4,8,16}: the masked value is
	// either 0 or k itself, never 1. This is the preserved upstream bug.
	assert.Empty(t, decodeOpAddons(0xFF))
	assert.Empty(t, decodeOpAddons(4))
	assert.Empty(t, decodeOpAddons(8))
	assert.Empty(t, decodeOpAddons(16))
}

func TestDecodeOpMode(t *testing.T) {
	mode, ok := decodeOpMode(byte(OpModeRace))
	assert.True(t, ok)
	assert.Equal(t, OpModeRace, mode)

	_, ok = decodeOpMode(0x11)
	assert.False(t, ok)
}

func TestFormatServiceDate(t *testing.T) {
	assert.Equal(t, "05/03/2026", formatServiceDate(5, 3, 26))
	assert.Equal(t, "31/12/2099", formatServiceDate(31, 12, 99))
}

func TestDecodeGeneralCustomerInfoTrimsLengthByteAndPadding(t *testing.T) {
	payload := append([]byte{0x05}, append([]byte("hello"), 0x00, 0x00)...)
	resp, err := DecodeGeneral(tagGetCustomerInfo, payload)
	require.NoError(t, err)
	assert.Equal(t, GetCustomerInfo{Info: "hello", HasInfo: true}, resp)
}

func TestDecodeGeneralSoftwareVersion(t *testing.T) {
	resp, err := DecodeGeneral(tagGetSoftwareVersion, []byte{0xAA, 0xBB})
	require.NoError(t, err)
	assert.InDelta(t, 437.07, resp.(GetSoftwareVersion).Version, 1e-2)
}

func TestDecodeGeneralUnknownSubcommand(t *testing.T) {
	_, err := DecodeGeneral(0xFF, nil)
	assert.ErrorIs(t, err, ErrUnknownSubcommand)
}
