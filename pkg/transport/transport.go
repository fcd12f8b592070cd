// Package transport implements the blocking, framed serial session used to
// talk to an Alpinestars Airbag Control Unit: USB device discovery, fixed
// line settings, and buffer-hygienic framed read/write.
//
// The session is single-threaded and exposes exactly two suspension
// points: Write and Read. There is no background read loop — unlike the
// nRF52 UART transport this package is descended from, the ACU protocol is
// strict request/response, so the state machine that used to run inside a
// goroutine here runs synchronously inside Read.
package transport

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tarm/serial"
	"go.bug.st/serial/enumerator"

	"github.com/alpinestars-acu/acuctl/pkg/acu/codec"
	"github.com/alpinestars-acu/acuctl/pkg/acu/command"
)

const (
	baudRate       = 115200
	defaultTimeout = 100 * time.Millisecond

	acuManufacturer = "ALPINESTARS"
	acuProduct      = "Airbag_Control_Unit"
)

// acuIdentities maps known USB VID/PID pairs to the (manufacturer, product)
// descriptor strings the original driver matched on. go.bug.st/serial's
// enumerator reports VID/PID, not free-text USB descriptor strings, so
// discovery here is keyed on device identity instead; the table is the
// bridge between the two.
var acuIdentities = map[[2]string]struct{ manufacturer, product string }{
	{"2E8A", "0E9A"}: {acuManufacturer, acuProduct},
}

// Errors returned by the transport layer.
var (
	ErrNotFound = errors.New("transport: no Alpinestars ACU device found")
	ErrEmpty    = errors.New("transport: read returned zero bytes before timeout")
)

// PortIoError wraps a platform I/O failure encountered while talking to the
// serial port.
type PortIoError struct {
	Op  string
	Err error
}

func (e *PortIoError) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *PortIoError) Unwrap() error { return e.Err }

// Session owns an open serial port exclusively for its scope. It is not
// safe for concurrent use; callers serialise their own access.
type Session struct {
	port *serial.Port
	name string

	lastWriteFrame []byte
	lastReadFrame  []byte
}

// Discover returns the device path of the first attached port matching a
// known ACU USB identity, or ErrNotFound.
func Discover() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", &PortIoError{Op: "enumerate", Err: err}
	}
	name, err := selectACUPort(ports)
	if err != nil {
		return "", err
	}
	log.Printf("transport: found Alpinestars ACU at %s", name)
	return name, nil
}

// selectACUPort picks the first port in the list matching a known ACU
// identity. Split out from Discover so the matching logic can be exercised
// against a constructed port list without a real USB enumerator.
func selectACUPort(ports []*enumerator.PortDetails) (string, error) {
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		if _, ok := acuIdentities[[2]string{p.VID, p.PID}]; ok {
			return p.Name, nil
		}
	}
	return "", ErrNotFound
}

// Open opens devicePath with the ACU's fixed line settings (115200 8N1,
// 100ms read timeout) and clears any stale buffered bytes.
func Open(devicePath string) (*Session, error) {
	cfg := &serial.Config{
		Name:        devicePath,
		Baud:        baudRate,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: defaultTimeout,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, &PortIoError{Op: "open", Err: err}
	}
	s := &Session{port: port, name: devicePath}
	if err := s.clearInput(); err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// SetTimeout changes the port's read timeout, which doubles as the frame
// terminator for Read. The bootloader driver raises this to 3s for
// CRCCheck.
func (s *Session) SetTimeout(d time.Duration) error {
	cfg := &serial.Config{
		Name:        s.name,
		Baud:        baudRate,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: d,
	}
	if err := s.port.Close(); err != nil {
		return &PortIoError{Op: "close-for-retimeout", Err: err}
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return &PortIoError{Op: "reopen-for-retimeout", Err: err}
	}
	s.port = port
	return nil
}

func (s *Session) clearInput() error {
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if err != nil || n == 0 {
			return nil
		}
	}
}

// Write serialises cmd, clears the input buffer to discard any stale
// partial frame from a prior aborted transaction, then emits the whole
// frame in one atomic write.
func (s *Session) Write(cmd command.Command) error {
	frame, err := codec.EncodeFrame(cmd)
	if err != nil {
		return err
	}
	if err := s.clearInput(); err != nil {
		return err
	}
	if _, err := s.port.Write(frame); err != nil {
		return &PortIoError{Op: "write", Err: err}
	}
	s.lastWriteFrame = frame
	return nil
}

// LastWriteFrame returns the raw bytes of the most recently written frame,
// for callers mirroring the wire traffic elsewhere (e.g. diagnostics
// logging). Returns nil before the first Write.
func (s *Session) LastWriteFrame() []byte { return s.lastWriteFrame }

// LastReadFrame returns the raw bytes of the most recently read frame, for
// the same purpose as LastWriteFrame. Returns nil before the first Read.
func (s *Session) LastReadFrame() []byte { return s.lastReadFrame }

// Read blocks until the port's read timeout elapses, accumulating whatever
// bytes arrive, then decodes the accumulated buffer as a single frame. A
// read that returns zero bytes fails with ErrEmpty.
func (s *Session) Read() (command.Command, error) {
	var buf []byte
	chunk := make([]byte, 256)
	for {
		n, err := s.port.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil || n == 0 {
			break
		}
	}
	if len(buf) == 0 {
		return nil, ErrEmpty
	}
	s.lastReadFrame = buf
	return codec.DecodeFrame(buf)
}

// Close releases the underlying port.
func (s *Session) Close() error {
	if err := s.port.Close(); err != nil {
		return &PortIoError{Op: "close", Err: err}
	}
	return nil
}
