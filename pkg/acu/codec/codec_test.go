package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpinestars-acu/acuctl/pkg/acu/command"
	"github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"
)

func TestEncodeFrameGoldenVectors(t *testing.T) {
	cases := []struct {
		name string
		cmd  command.Command
		want []byte
	}{
		{"GetSoftwareVersion", command.GetSoftwareVersion{}, []byte{0x00, 0x02, 0x80, 0x71}},
		{"GetServiceDate", command.GetServiceDate{}, []byte{0x00, 0x0A, 0x81, 0xB7}},
		{"Logging.GetOPHours", command.GetOPHours{}, []byte{0x01, 0x00, 0x00, 0x20}},
		{"Logging.GetBatCount", command.GetBatCount{}, []byte{0x01, 0x0E, 0x81, 0xE4}},
		{"Measure.SetEXTDisplay", command.SetEXTDisplay{Flag: 0xFF}, []byte{0x03, 0x0A, 0xFF, 0xC7, 0x20}},
		{"Sensor.EnableSensorReading", command.EnableSensorReading{Mask: 0x35, HasMask: true}, []byte{0x04, 0x00, 0x35, 0xF0, 0x16}},
		{"Airbag.SetInflationType", command.SetInflationType{Type: 0xFF}, []byte{0x06, 0x0B, 0xFF, 0xD6, 0xB1}},
		{"SWUpdate.StartBootLoader", command.StartBootLoader{}, []byte{0x20, 0x00, 0x18, 0x70}},
		{"SWUpdate.CRCCheck", command.CRCCheck{CRC: 0xAABB}, []byte{0x20, 0x05, 0xAA, 0xBB, 0x25, 0x36}},
		{
			"SWUpdate.WriteFWData",
			command.WriteFWData{PageCount: 0xCC, Data: []byte{0x00, 0x01, 0x02}, HasData: true},
			[]byte{0x20, 0x03, 0x00, 0xCC, 0x00, 0x03, 0x00, 0x01, 0x02, 0x42, 0xFD},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeFrame(tc.cmd)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// frame appends a correct trailing CRC (LSB then MSB) to body, the way a
// real device response is assembled on the wire.
func frame(body []byte) []byte {
	crc := fixedpoint.CRC16(body)
	return append(append([]byte{}, body...), byte(crc), byte(crc>>8))
}

func TestDecodeFrameCrcMismatch(t *testing.T) {
	_, err := DecodeFrame([]byte{0x00, 0x02, 0x80, 0x72})
	assert.ErrorIs(t, err, ErrCrcMismatch)
}

func TestDecodeFrameInflationRoundTrip(t *testing.T) {
	decoded, err := DecodeFrame(frame([]byte{0x06, 0x0A, 0xBB}))
	require.NoError(t, err)
	assert.Equal(t, command.GetInflationType{Type: "double"}, decoded)
}

func TestDecodeFrameTooShort(t *testing.T) {
	_, err := DecodeFrame([]byte{0x00, 0x02})
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestDecodeFrameUnknownCategory(t *testing.T) {
	_, err := DecodeFrame(frame([]byte{0x7F, 0x00}))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestFireAIRBAGGuard(t *testing.T) {
	_, err := DecodeFrame(frame([]byte{0x06, 0x05}))
	assert.ErrorIs(t, err, command.ErrForbiddenCommand)
}
