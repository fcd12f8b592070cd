package command

import (
	"fmt"
	"strings"

	"github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"
)

// General subcommand tags.
const (
	tagGetCtrlMode         byte = 0x00
	tagSetCtrlMode         byte = 0x01
	tagGetSoftwareVersion  byte = 0x02
	tagGetOperatingModus   byte = 0x03
	tagGetSerialNr         byte = 0x04
	tagSetSerialNr         byte = 0x05
	tagGetHardwareVersion  byte = 0x06
	tagSetHardwareVersion  byte = 0x07
	tagGetCustomerInfo     byte = 0x08
	tagSetCustomerInfo     byte = 0x09
	tagGetServiceDate      byte = 0x0A
	tagSetServiceDate      byte = 0x0B
)

// OpMode is the device's runtime behavioural mode.
type OpMode byte

const (
	OpModeStreet         OpMode = 0xAA
	OpModeRace3S         OpMode = 0xBB
	OpModeRace           OpMode = 0xDD
	OpModeRaceVestStreet OpMode = 0xCC
)

// OpAddon is an optional add-on reported alongside the operating mode.
type OpAddon string

const (
	OpAddonOpenLoop OpAddon = "open-loop"
	OpAddonSDCard   OpAddon = "sd-card"
	OpAddonGPS      OpAddon = "gps"
)

// OpModus is the decoded operating-modus response: mode plus add-ons.
type OpModus struct {
	Mode   OpMode
	Addons []OpAddon
}

// decodeOpMode maps the raw mode byte; unrecognized values decode to 0 and
// ok=false, mirroring the original's Option<OpMode>::None.
func decodeOpMode(b byte) (OpMode, bool) {
	switch OpMode(b) {
	case OpModeStreet, OpModeRace3S, OpModeRace, OpModeRaceVestStreet:
		return OpMode(b), true
	default:
		return 0, false
	}
}

// decodeOpAddons reproduces the reference firmware's addon decode exactly:
// it tests `flags & k == 1`, which never holds for k in {4,8,16} since the
// masked value is either 0 or k itself. The addon list is therefore always
// empty. This is intentional — see the Open Questions in SPEC_FULL.md; the
// likely-intended check is `(flags & k) != 0`, left unfixed to preserve
// observable behaviour.
func decodeOpAddons(flags byte) []OpAddon {
	var addons []OpAddon
	if flags&4 == 1 {
		addons = append(addons, OpAddonSDCard)
	}
	if flags&8 == 1 {
		addons = append(addons, OpAddonGPS)
	}
	if flags&16 == 1 {
		addons = append(addons, OpAddonOpenLoop)
	}
	return addons
}

// GetCtrlMode requests/reports the control mode byte.
type GetCtrlMode struct {
	Mode   byte
	HasMode bool
}

func (GetCtrlMode) Category() Category    { return CategoryGeneral }
func (GetCtrlMode) Subcommand() byte      { return tagGetCtrlMode }
func (GetCtrlMode) RequestPayload() []byte { return nil }

// SetCtrlMode is an acknowledgement-only leaf.
type SetCtrlMode struct{}

func (SetCtrlMode) Category() Category    { return CategoryGeneral }
func (SetCtrlMode) Subcommand() byte      { return tagSetCtrlMode }
func (SetCtrlMode) RequestPayload() []byte { return nil }

// GetSoftwareVersion reports the firmware version as a decimal.
type GetSoftwareVersion struct {
	Version    float32
	HasVersion bool
}

func (GetSoftwareVersion) Category() Category    { return CategoryGeneral }
func (GetSoftwareVersion) Subcommand() byte      { return tagGetSoftwareVersion }
func (GetSoftwareVersion) RequestPayload() []byte { return nil }

// GetOperatingModus reports the device's mode + addons.
type GetOperatingModus struct {
	Modus    OpModus
	HasModus bool
}

func (GetOperatingModus) Category() Category    { return CategoryGeneral }
func (GetOperatingModus) Subcommand() byte      { return tagGetOperatingModus }
func (GetOperatingModus) RequestPayload() []byte { return nil }

// GetSerialNr reports the device's serial number as a UTF-8 string.
type GetSerialNr struct {
	SerialNr    string
	HasSerialNr bool
}

func (GetSerialNr) Category() Category    { return CategoryGeneral }
func (GetSerialNr) Subcommand() byte      { return tagGetSerialNr }
func (GetSerialNr) RequestPayload() []byte { return nil }

// SetSerialNr is an acknowledgement-only leaf.
type SetSerialNr struct{}

func (SetSerialNr) Category() Category    { return CategoryGeneral }
func (SetSerialNr) Subcommand() byte      { return tagSetSerialNr }
func (SetSerialNr) RequestPayload() []byte { return nil }

// GetHardwareVersion reports the hardware revision as a decimal.
type GetHardwareVersion struct {
	Version    float32
	HasVersion bool
}

func (GetHardwareVersion) Category() Category    { return CategoryGeneral }
func (GetHardwareVersion) Subcommand() byte      { return tagGetHardwareVersion }
func (GetHardwareVersion) RequestPayload() []byte { return nil }

// SetHardwareVersion is an acknowledgement-only leaf.
type SetHardwareVersion struct{}

func (SetHardwareVersion) Category() Category    { return CategoryGeneral }
func (SetHardwareVersion) Subcommand() byte      { return tagSetHardwareVersion }
func (SetHardwareVersion) RequestPayload() []byte { return nil }

// GetCustomerInfo reports a free-text customer info string. The wire
// payload is length-prefixed with a single byte that callers never need,
// so it is discarded during decode.
type GetCustomerInfo struct {
	Info    string
	HasInfo bool
}

func (GetCustomerInfo) Category() Category    { return CategoryGeneral }
func (GetCustomerInfo) Subcommand() byte      { return tagGetCustomerInfo }
func (GetCustomerInfo) RequestPayload() []byte { return nil }

// SetCustomerInfo is an acknowledgement-only leaf.
type SetCustomerInfo struct{}

func (SetCustomerInfo) Category() Category    { return CategoryGeneral }
func (SetCustomerInfo) Subcommand() byte      { return tagSetCustomerInfo }
func (SetCustomerInfo) RequestPayload() []byte { return nil }

// GetServiceDate reports the last-service date as "DD/MM/20YY".
type GetServiceDate struct {
	Date    string
	HasDate bool
}

func (GetServiceDate) Category() Category    { return CategoryGeneral }
func (GetServiceDate) Subcommand() byte      { return tagGetServiceDate }
func (GetServiceDate) RequestPayload() []byte { return nil }

// SetServiceDate is an acknowledgement-only leaf.
type SetServiceDate struct{}

func (SetServiceDate) Category() Category    { return CategoryGeneral }
func (SetServiceDate) Subcommand() byte      { return tagSetServiceDate }
func (SetServiceDate) RequestPayload() []byte { return nil }

// DecodeGeneral decodes a General-category response.
func DecodeGeneral(subcmd byte, payload []byte) (Command, error) {
	switch subcmd {
	case tagGetCtrlMode:
		if len(payload) < 1 {
			return GetCtrlMode{}, nil
		}
		return GetCtrlMode{Mode: payload[0], HasMode: true}, nil
	case tagSetCtrlMode:
		return SetCtrlMode{}, nil
	case tagGetSoftwareVersion:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetSoftwareVersion{
			Version:    fixedpoint.U13_3(be16(payload)) * 10.0,
			HasVersion: true,
		}, nil
	case tagGetOperatingModus:
		if len(payload) < 2 {
			return GetOperatingModus{}, nil
		}
		mode, _ := decodeOpMode(payload[0])
		addons := decodeOpAddons(payload[1])
		return GetOperatingModus{
			Modus:    OpModus{Mode: mode, Addons: addons},
			HasModus: true,
		}, nil
	case tagGetSerialNr:
		return GetSerialNr{SerialNr: string(payload), HasSerialNr: true}, nil
	case tagSetSerialNr:
		return SetSerialNr{}, nil
	case tagGetHardwareVersion:
		if len(payload) < 2 {
			return GetHardwareVersion{}, nil
		}
		return GetHardwareVersion{
			Version:    fixedpoint.U13_3(be16(payload)) * 10.0,
			HasVersion: true,
		}, nil
	case tagSetHardwareVersion:
		return SetHardwareVersion{}, nil
	case tagGetCustomerInfo:
		// payload[0] is a length byte that is discarded; the rest is the
		// UTF-8 customer info string.
		if len(payload) < 1 {
			return GetCustomerInfo{}, nil
		}
		return GetCustomerInfo{
			Info:    strings.TrimRight(string(payload[1:]), "\x00"),
			HasInfo: true,
		}, nil
	case tagSetCustomerInfo:
		return SetCustomerInfo{}, nil
	case tagGetServiceDate:
		if len(payload) < 3 {
			return GetServiceDate{}, nil
		}
		date := formatServiceDate(payload[0], payload[1], payload[2])
		return GetServiceDate{Date: date, HasDate: true}, nil
	case tagSetServiceDate:
		return SetServiceDate{}, nil
	default:
		return nil, ErrUnknownSubcommand
	}
}

func formatServiceDate(day, month, year byte) string {
	return fmt.Sprintf("%02d/%02d/20%02d", day, month, year)
}
