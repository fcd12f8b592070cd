// Package bootloader drives the ACU's firmware-update state machine over
// an open transport session: entering bootloader mode, paging firmware
// chunks across with page-count verification, and finalising with a CRC
// round-trip check.
package bootloader

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/alpinestars-acu/acuctl/pkg/acu/command"
	"github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"
	"github.com/alpinestars-acu/acuctl/pkg/transport"
)

const (
	maxChunkLen      = 256
	crcCheckTimeout  = 3 * time.Second
)

// Errors specific to the bootloader driver.
var (
	ErrBootloaderPageMismatch = errors.New("bootloader: device echoed an unexpected page count")
	ErrBootloaderCrcFail      = errors.New("bootloader: device reported a non-zero CRC check status")
	ErrBootloaderStateTimeout = errors.New("bootloader: gave up waiting for WaitVerifyFlashedCRC")
)

// sessionIO is the slice of *transport.Session the driver actually uses.
// Narrowing it to an interface lets the page-count handshake and
// finalisation state machine be exercised against a fake session.
type sessionIO interface {
	Write(cmd command.Command) error
	Read() (command.Command, error)
	SetTimeout(d time.Duration) error
}

var _ sessionIO = (*transport.Session)(nil)

// Driver owns a transport session for the duration of a firmware update.
// Close always issues QuitBootLoader, mirroring the scoped release the
// reference CLI performs on every exit path including error paths.
type Driver struct {
	session sessionIO
}

// Enter puts the device into bootloader mode and returns a Driver scoped
// to it. Callers must Close the Driver on every exit path.
func Enter(session *transport.Session) (*Driver, error) {
	d := &Driver{session: session}
	if err := session.Write(command.StartBootLoader{}); err != nil {
		return nil, fmt.Errorf("bootloader: entering: %w", err)
	}
	if _, err := session.Read(); err != nil {
		return nil, fmt.Errorf("bootloader: entering: %w", err)
	}
	return d, nil
}

// Close issues QuitBootLoader unconditionally. Errors are logged, not
// returned, since callers invoke this from defer on every exit path
// (including already-failing ones) and a failed quit must never mask the
// original error.
func (d *Driver) Close() {
	if err := d.session.Write(command.QuitBootLoader{}); err != nil {
		log.Printf("bootloader: quit write failed: %v", err)
		return
	}
	if _, err := d.session.Read(); err != nil {
		log.Printf("bootloader: quit ack failed: %v", err)
	}
}

// Version reads the bootloader's reported version byte.
func (d *Driver) Version() (byte, error) {
	if err := d.session.Write(command.GetBootLoaderVersion{}); err != nil {
		return 0, fmt.Errorf("bootloader: reading version: %w", err)
	}
	resp, err := d.session.Read()
	if err != nil {
		return 0, fmt.Errorf("bootloader: reading version: %w", err)
	}
	ver, ok := resp.(command.GetBootLoaderVersion)
	if !ok || !ver.HasVersion {
		return 0, fmt.Errorf("bootloader: reading version: unexpected response %T", resp)
	}
	return ver.Version, nil
}

// State reads the bootloader's current state.
func (d *Driver) State() (command.BootLoaderState, error) {
	if err := d.session.Write(command.GetBootLoaderState{}); err != nil {
		return 0, fmt.Errorf("bootloader: reading state: %w", err)
	}
	resp, err := d.session.Read()
	if err != nil {
		return 0, fmt.Errorf("bootloader: reading state: %w", err)
	}
	state, ok := resp.(command.GetBootLoaderState)
	if !ok || !state.HasState {
		return 0, fmt.Errorf("bootloader: reading state: unexpected response %T", resp)
	}
	return state.State, nil
}

// Transfer appends the payload's own CRC-16 (MSB then LSB), splits the
// result into 256-byte chunks, and pages each chunk across with a
// page-count handshake: the host sends the page count it expects to have
// remaining BEFORE decrementing, decrements (or saturates to zero on a
// short final chunk), and requires the device to echo exactly that
// decremented value back.
func (d *Driver) Transfer(payload []byte) error {
	crc := fixedpoint.CRC16(payload)
	augmented := append(append([]byte{}, payload...), byte(crc>>8), byte(crc))

	pageCount := fixedpoint.NumPages(len(augmented))

	for offset := 0; offset < len(augmented); offset += maxChunkLen {
		end := offset + maxChunkLen
		if end > len(augmented) {
			end = len(augmented)
		}
		chunk := augmented[offset:end]

		sent := command.WriteFWData{PageCount: pageCount, Data: chunk, HasData: true}
		if len(chunk) == maxChunkLen {
			pageCount--
		} else {
			pageCount = 0
		}

		if err := d.session.Write(sent); err != nil {
			return fmt.Errorf("bootloader: writing chunk at offset %d: %w", offset, err)
		}
		resp, err := d.session.Read()
		if err != nil {
			return fmt.Errorf("bootloader: reading chunk ack at offset %d: %w", offset, err)
		}
		ack, ok := resp.(command.WriteFWData)
		if !ok {
			return fmt.Errorf("bootloader: reading chunk ack at offset %d: unexpected response %T", offset, resp)
		}
		if ack.PageCount != pageCount {
			return fmt.Errorf("%w: device echoed %d, expected %d", ErrBootloaderPageMismatch, ack.PageCount, pageCount)
		}
	}
	return nil
}

// Finalise polls the bootloader state until it reports
// WaitVerifyFlashedCRC (bounded by maxPolls), then issues a CRC check
// against romCRC with the read timeout raised to crcCheckTimeout.
func (d *Driver) Finalise(romCRC uint16) error {
	const maxPolls = 200
	for i := 0; i < maxPolls; i++ {
		state, err := d.State()
		if err != nil {
			return fmt.Errorf("bootloader: finalising: %w", err)
		}
		if state == command.StateWaitVerifyFlashedCRC {
			break
		}
		if i == maxPolls-1 {
			return ErrBootloaderStateTimeout
		}
	}

	if err := d.session.SetTimeout(crcCheckTimeout); err != nil {
		return fmt.Errorf("bootloader: raising timeout for CRC check: %w", err)
	}

	if err := d.session.Write(command.CRCCheck{CRC: romCRC}); err != nil {
		return fmt.Errorf("bootloader: issuing CRC check: %w", err)
	}
	resp, err := d.session.Read()
	if err != nil {
		return fmt.Errorf("bootloader: reading CRC check result: %w", err)
	}
	result, ok := resp.(command.CRCCheck)
	if !ok {
		return fmt.Errorf("bootloader: reading CRC check result: unexpected response %T", resp)
	}
	if result.Status != 0 {
		return fmt.Errorf("%w: status=%d", ErrBootloaderCrcFail, result.Status)
	}
	return nil
}
