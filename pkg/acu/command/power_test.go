package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePowerSupplyState(t *testing.T) {
	resp, err := DecodePower(tagGetSupplyState, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, GetSupplyState{Enabled: true, HasEnabled: true}, resp)
}

func TestDecodePowerENDISSupply(t *testing.T) {
	resp, err := DecodePower(tagENDISSupply, nil)
	require.NoError(t, err)
	assert.Equal(t, ENDISSupply{}, resp)
}

func TestDecodePowerUnknownSubcommand(t *testing.T) {
	_, err := DecodePower(0xFF, nil)
	assert.ErrorIs(t, err, ErrUnknownSubcommand)
}
