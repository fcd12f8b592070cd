// Package codec implements the frame layer sitting on top of the command
// tree: encoding a typed leaf into a CRC-framed byte sequence, and decoding
// a byte sequence back into a typed leaf after verifying the CRC.
//
// Frame layout (both directions): CATEGORY(1) | SUBCMD(1) | PAYLOAD(0..N) |
// CRC16_LSB(1) | CRC16_MSB(1). The CRC covers everything before it. Payload
// integers are big-endian; the trailing CRC is little-endian — this
// asymmetry is part of the wire format and is preserved, not "fixed".
package codec

import (
	"errors"

	"github.com/alpinestars-acu/acuctl/pkg/acu/command"
	"github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"
)

// Errors returned by the codec layer itself (as opposed to errors bubbled
// up unchanged from a category decoder).
var (
	ErrInvalidFrame    = errors.New("codec: frame too short to contain a category, subcommand, and CRC")
	ErrCrcMismatch     = errors.New("codec: trailing CRC does not match computed CRC")
	ErrUnknownCategory = errors.New("codec: unrecognized category byte")
)

// EncodeFrame serialises cmd into a complete wire frame: category byte,
// subcommand byte, the leaf's request payload, then CRC16 appended
// LSB-first.
func EncodeFrame(cmd command.Command) ([]byte, error) {
	buf := make([]byte, 0, 4+8)
	buf = append(buf, byte(cmd.Category()), cmd.Subcommand())
	buf = append(buf, cmd.RequestPayload()...)

	crc := fixedpoint.CRC16(buf)
	buf = append(buf, byte(crc), byte(crc>>8))
	return buf, nil
}

// DecodeFrame validates the trailing CRC, strips it, and dispatches on the
// category/subcommand bytes to produce a typed Command.
func DecodeFrame(frame []byte) (command.Command, error) {
	if len(frame) < 4 {
		return nil, ErrInvalidFrame
	}

	body := frame[:len(frame)-2]
	lsb, msb := frame[len(frame)-2], frame[len(frame)-1]
	received := uint16(msb)<<8 | uint16(lsb)
	computed := fixedpoint.CRC16(body)
	if received != computed {
		return nil, ErrCrcMismatch
	}

	category := command.Category(body[0])
	subcmd := body[1]
	payload := body[2:]

	decoder, ok := command.Decoders[category]
	if !ok {
		return nil, ErrUnknownCategory
	}
	return decoder(subcmd, payload)
}
