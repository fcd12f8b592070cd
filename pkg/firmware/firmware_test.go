package firmware

import (
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROMWindow(t *testing.T) {
	start, end := ROMWindow(4)
	assert.Equal(t, uint32(0x1D006000), start)
	assert.Equal(t, uint32(0x1D07FFFF), end)

	start, end = ROMWindow(2)
	assert.Equal(t, uint32(0x1D006000), start)
	assert.Equal(t, uint32(0x1D03FFFF), end)
}

func TestDecodeFlagsFirstMatchWins(t *testing.T) {
	assert.Equal(t, "Street-Mode", decodeFlags(1|32))
	assert.Equal(t, "ABP 5Sensor-Mode", decodeFlags(2|64))
	assert.Equal(t, "Race-Mode", decodeFlags(32|64))
	assert.Equal(t, "Race vest Street-Mode", decodeFlags(64))
	assert.Equal(t, "unknown", decodeFlags(0))
}

func TestParsePackageHeader(t *testing.T) {
	plaintext := []byte("junk before#ACU Firmware;3.05;1#:00000001FF\n")
	pkg, err := ParsePackage(plaintext)
	require.NoError(t, err)
	assert.Equal(t, "ACU Firmware", pkg.Header.Image)
	assert.InDelta(t, 3.05, pkg.Header.Version, 1e-6)
	assert.Equal(t, "Street-Mode", pkg.Header.Flags)
	assert.Equal(t, []byte(":00000001FF\n"), pkg.HexData)
}

func TestParsePackageUnrecognisedImage(t *testing.T) {
	_, err := ParsePackage([]byte("#Other Firmware;1.0;0#:00"))
	assert.ErrorIs(t, err, ErrUnknownImage)
}

func TestParsePackageNoHeader(t *testing.T) {
	_, err := ParsePackage([]byte("no hash marks here"))
	assert.ErrorIs(t, err, ErrNoHeader)
}

// TestFirmwareCRCHappyPath is the golden end-to-end vector: a single
// Intel-hex DATA record at the ROM window's own start address, preceded by
// an Extended Linear Address record supplying its high 16 bits, must land
// at the front of the assembled image with every other byte left 0xFF.
func TestFirmwareCRCHappyPath(t *testing.T) {
	start, end := ROMWindow(4)
	rom := NewRomImage(start, end)

	hexText := []byte(":020000041D00DD\n:04600000DEADBEEF64\n")
	bad, err := ParseIntelHex(hexText, rom, start, end)
	require.NoError(t, err)
	assert.Equal(t, 0, bad)

	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, []byte(rom[0:4]))
	for i := 4; i < len(rom); i++ {
		if rom[i] != 0xFF {
			t.Fatalf("rom[%d] = %#x, want 0xFF", i, rom[i])
		}
	}
	assert.Equal(t, uint16(0xE2E2), rom.CRC16())
}

func TestParseIntelHexChecksumMismatch(t *testing.T) {
	start, end := ROMWindow(4)
	rom := NewRomImage(start, end)
	// Last byte corrupted relative to a valid checksum.
	_, err := ParseIntelHex([]byte(":04600000DEADBEEF00"), rom, start, end)
	assert.ErrorIs(t, err, ErrHexChecksum)
}

// TestParseIntelHexOutOfWindowIsNonFatal exercises a DATA record that sits
// entirely below the ROM window's start: it must be skipped and counted,
// not treated as a parse failure, and parsing must continue through the
// in-window record that follows.
func TestParseIntelHexOutOfWindowIsNonFatal(t *testing.T) {
	start, end := ROMWindow(4)
	rom := NewRomImage(start, end)

	// First record lands at 0x1D000000 (below the window); second lands
	// at the window start 0x1D006000 via the same Extended Linear Address.
	hexText := []byte(":020000041D00DD\n:04000000DEADBEEFC4\n:04600000CAFEBABE5C\n")
	bad, err := ParseIntelHex(hexText, rom, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, bad)
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, []byte(rom[0:4]))
}

func TestDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("ACU Firmware payload padded to a block size")
	padded := padPKCS7(plaintext, aes.BlockSize)

	block, err := aes.NewCipher(decryptKey)
	require.NoError(t, err)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, decryptIV).CryptBlocks(ciphertext, padded)

	got, err := Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptRejectsBadLength(t *testing.T) {
	_, err := Decrypt([]byte{0x01, 0x02, 0x03})
	assert.ErrorIs(t, err, ErrCiphertextPadding)
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := make([]byte, padLen)
	for i := range padding {
		padding[i] = byte(padLen)
	}
	return append(append([]byte{}, data...), padding...)
}
