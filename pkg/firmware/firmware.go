// Package firmware implements the ACU firmware-package pipeline: AES-128-
// CBC/PKCS7 decryption of the packaged blob, header validation, Intel-hex
// record parsing into a flat ROM image, and the CRC-16 used to verify a
// flashed image against the device.
package firmware

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"
)

// decryptKey/decryptIV are the fixed AES-128-CBC key and IV the device's
// firmware packager uses. They are not secret in any meaningful sense —
// every ACU and every packaged image uses the same bytes.
var (
	decryptKey = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 16, 17, 18, 19, 20, 21, 22}
	decryptIV  = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 16, 17, 18, 19, 20, 21, 22}
)

// Errors returned by this package.
var (
	ErrNoHeader             = errors.New("firmware: no header delimiters found in decrypted image")
	ErrUnknownImage         = errors.New("firmware: unrecognized image name in header")
	ErrMalformedHeader      = errors.New("firmware: header does not split into exactly 3 fields")
	ErrHexChecksum          = errors.New("firmware: intel-hex record checksum mismatch")
	ErrMalformedHexLine     = errors.New("firmware: intel-hex record is malformed (odd digit count, non-hex digit, or shorter than its byte count)")
	ErrCiphertextPadding    = errors.New("firmware: ciphertext is not a multiple of the AES block size or has invalid PKCS7 padding")
	ErrHexAddressOutOfRange = errors.New("firmware: intel-hex DATA record address falls outside the ROM window")
)

// recognisedImageNames are the only image identifiers the device accepts.
var recognisedImageNames = map[string]bool{
	"ACU Firmware":  true,
	"*ACU Firmware": true,
	"+ACU Firmware": true,
}

// Header describes the firmware package's self-identification fields.
type Header struct {
	Image   string
	Version float32
	Flags   string
}

// Package is a decrypted, header-validated firmware blob, still carrying
// its Intel-hex payload as text.
type Package struct {
	Header  Header
	HexData []byte
}

// Decrypt reverses the packager's AES-128-CBC/PKCS7 encryption.
func Decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(decryptKey)
	if err != nil {
		return nil, fmt.Errorf("firmware: building AES cipher: %w", err)
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrCiphertextPadding
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, decryptIV).CryptBlocks(plaintext, ciphertext)
	return unpadPKCS7(plaintext)
}

func unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return nil, ErrCiphertextPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrCiphertextPadding
		}
	}
	return data[:len(data)-padLen], nil
}

// ParsePackage splits a decrypted blob into its header and Intel-hex
// payload. The first '#' opens the header, the next '#' closes it; what
// follows (minus that closing '#') is the hex text.
func ParsePackage(plaintext []byte) (*Package, error) {
	start := bytes.IndexByte(plaintext, '#')
	if start == -1 {
		return nil, ErrNoHeader
	}
	end := bytes.IndexByte(plaintext[start+1:], '#')
	if end == -1 {
		return nil, ErrNoHeader
	}
	end += start + 1

	headerText := string(plaintext[start+1 : end])
	fields := strings.Split(headerText, ";")
	if len(fields) != 3 {
		return nil, ErrMalformedHeader
	}

	header, err := decodeHeader(fields)
	if err != nil {
		return nil, err
	}

	return &Package{
		Header:  header,
		HexData: plaintext[end+1:],
	}, nil
}

func decodeHeader(fields []string) (Header, error) {
	image := fields[0]
	if !recognisedImageNames[image] {
		return Header{}, ErrUnknownImage
	}
	version, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return Header{}, fmt.Errorf("firmware: parsing header version: %w", err)
	}
	flags, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Header{}, fmt.Errorf("firmware: parsing header flags: %w", err)
	}
	return Header{
		Image:   image,
		Version: float32(version),
		Flags:   decodeFlags(uint32(flags)),
	}, nil
}

// decodeFlags mirrors the device's first-match bitmask interpretation:
// Street beats ABP 5-Sensor beats Race beats Race-vest-Street. A mask that
// matches none of the four bits decodes to "unknown".
func decodeFlags(flags uint32) string {
	switch {
	case flags&1 != 0:
		return "Street-Mode"
	case flags&2 != 0:
		return "ABP 5Sensor-Mode"
	case flags&32 != 0:
		return "Race-Mode"
	case flags&64 != 0:
		return "Race vest Street-Mode"
	default:
		return "unknown"
	}
}

// ROMWindow returns the inclusive [start, end] address range the ACU's
// bootloader will accept flash writes into, which depends on the
// bootloader's own reported version.
func ROMWindow(bootloaderVersion byte) (start, end uint32) {
	if bootloaderVersion > 3 {
		return 0x1D006000, 0x1D07FFFF
	}
	return 0x1D006000, 0x1D03FFFF
}

// RomImage is a flat, 0xFF-initialised byte buffer addressed relative to a
// ROM window's start.
type RomImage []byte

// NewRomImage allocates a RomImage sized to [start, end] and fills it with
// 0xFF, the bootloader's erased-flash value.
func NewRomImage(start, end uint32) RomImage {
	img := make(RomImage, end-start+1)
	for i := range img {
		img[i] = 0xFF
	}
	return img
}

// CRC16 computes the MODBUS CRC-16 over the materialised image.
func (img RomImage) CRC16() uint16 {
	return fixedpoint.CRC16(img)
}

// ParseIntelHex decodes hexText into rom, starting from a window
// [start, end]. Extended Segment Address (0x02) and Extended Linear
// Address (0x04) records accumulate into the address offset used by
// subsequent DATA (0x00) records; any other record type resets both
// accumulators to zero. A DATA record whose effective address falls
// outside the window is not fatal: it is skipped and counted as a
// bad segment, returned to the caller as badSegments, rather than
// aborting the whole image.
func ParseIntelHex(hexText []byte, rom RomImage, start, end uint32) (badSegments int, err error) {
	var extSegment, extLinear uint32

	clean := make([]byte, 0, len(hexText))
	for _, b := range hexText {
		if b != '\r' && b != '\n' {
			clean = append(clean, b)
		}
	}

	for _, seg := range bytes.Split(clean, []byte{':'}) {
		if len(seg) == 0 || len(seg) <= 10 {
			continue
		}
		record, err := decodeHexLine(seg)
		if err != nil {
			return badSegments, err
		}

		byteCount := int(record[0])
		if len(record) < byteCount+5 {
			return badSegments, ErrMalformedHexLine
		}
		var sum uint32
		for _, b := range record[:byteCount+5] {
			sum += uint32(b)
		}
		if sum&0xff != 0 {
			return badSegments, ErrHexChecksum
		}

		data := record[4 : 4+byteCount]
		recordType := record[3]

		switch recordType {
		case 0x00: // DATA
			effective := uint32(record[1])<<8 | uint32(record[2])
			effective += extSegment + extLinear
			if effective >= start && effective <= end {
				relative := effective - start
				if relative+uint32(byteCount) <= end-start+1 {
					copy(rom[relative:relative+uint32(byteCount)], data)
				} else {
					badSegments++
				}
			} else {
				badSegments++
			}
		case 0x02: // Extended Segment Address
			extSegment = uint32(data[0])<<16 | uint32(data[1])<<8
			extLinear = 0
		case 0x04: // Extended Linear Address
			extLinear = uint32(data[0])<<24 | uint32(data[1])<<16
			extSegment = 0
		default:
			extSegment, extLinear = 0, 0
		}
	}
	return badSegments, nil
}

func decodeHexLine(seg []byte) ([]byte, error) {
	if len(seg)%2 != 0 {
		return nil, ErrMalformedHexLine
	}
	out := make([]byte, len(seg)/2)
	for i := range out {
		hi, err := decodeAsciiHex(seg[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := decodeAsciiHex(seg[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func decodeAsciiHex(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, ErrMalformedHexLine
	}
}
