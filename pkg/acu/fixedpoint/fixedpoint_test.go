package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16(t *testing.T) {
	assert.Equal(t, uint16(32817), CRC16([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}))
}

func TestU13_3(t *testing.T) {
	assert.InDelta(t, 43.707, U13_3(0xAABB), 1e-4)
}

func TestAccel(t *testing.T) {
	assert.InDelta(t, 21.307161, Accel(0xAABB), 1e-3)
}

func TestGyro(t *testing.T) {
	assert.InDelta(t, 3040.4868, Gyro(0xAABB), 1e-2)
}

// S16's sign-bit test (`0x8000 & word == 1`) is always false, so even a
// word with the high bit set decodes through the "positive" branch. Accel
// and Gyro above already exercise this with 0xAABB; this pins the
// unsigned-Q15 decode down directly.
func TestS16DeadNegativeBranch(t *testing.T) {
	assert.InDelta(t, float32(0xAABB)/32768.0, S16(0xAABB), 1e-6)
}

func TestNumPages(t *testing.T) {
	assert.Equal(t, uint16(0x10), NumPages(0x1080))
	assert.Equal(t, uint16(1), NumPages(512))
	assert.Equal(t, uint16(2), NumPages(514))
	assert.Equal(t, uint16(0), NumPages(256))
}
