package command

import "github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"

// Airbag subcommand tags.
const (
	tagGetIgnitionCtrlMode   byte = 0x00
	tagGetIgnitionCtrlStatus byte = 0x01
	tagInitIgnitionCtrl      byte = 0x02
	tagDiagIgnitionCtrl      byte = 0x03
	tagArmIgnitionCtrl       byte = 0x04
	tagFireAIRBAG            byte = 0x05
	tagResetIgnitionCtrl     byte = 0x06
	tagDiagGetSquibRes       byte = 0x07
	tagGetCalibSquibRes      byte = 0x08
	tagSetCalibSquibRes      byte = 0x09
	tagGetInflationType      byte = 0x0A
	tagSetInflationType      byte = 0x0B
)

func decodeInflationType(b byte) string {
	switch b {
	case 0x44:
		return "single"
	case 0xB4:
		return "double-race"
	case 0xBB:
		return "double"
	case 0xFF:
		return "clear"
	default:
		return "unknown"
	}
}

func decodeCalibRes(data []byte) float32 {
	return fixedpoint.U13_3(uint16(data[0])<<8 | uint16(data[1]))
}

// GetIgnitionCtrlMode is an acknowledgement-only leaf.
type GetIgnitionCtrlMode struct{}

func (GetIgnitionCtrlMode) Category() Category    { return CategoryAirbag }
func (GetIgnitionCtrlMode) Subcommand() byte      { return tagGetIgnitionCtrlMode }
func (GetIgnitionCtrlMode) RequestPayload() []byte { return nil }

// GetIgnitionCtrlStatus is an acknowledgement-only leaf.
type GetIgnitionCtrlStatus struct{}

func (GetIgnitionCtrlStatus) Category() Category    { return CategoryAirbag }
func (GetIgnitionCtrlStatus) Subcommand() byte      { return tagGetIgnitionCtrlStatus }
func (GetIgnitionCtrlStatus) RequestPayload() []byte { return nil }

// InitIgnitionCtrl is an acknowledgement-only leaf.
type InitIgnitionCtrl struct{}

func (InitIgnitionCtrl) Category() Category    { return CategoryAirbag }
func (InitIgnitionCtrl) Subcommand() byte      { return tagInitIgnitionCtrl }
func (InitIgnitionCtrl) RequestPayload() []byte { return nil }

// DiagIgnitionCtrl is an acknowledgement-only leaf.
type DiagIgnitionCtrl struct{}

func (DiagIgnitionCtrl) Category() Category    { return CategoryAirbag }
func (DiagIgnitionCtrl) Subcommand() byte      { return tagDiagIgnitionCtrl }
func (DiagIgnitionCtrl) RequestPayload() []byte { return nil }

// ArmIgnitionCtrl is an acknowledgement-only leaf.
type ArmIgnitionCtrl struct{}

func (ArmIgnitionCtrl) Category() Category    { return CategoryAirbag }
func (ArmIgnitionCtrl) Subcommand() byte      { return tagArmIgnitionCtrl }
func (ArmIgnitionCtrl) RequestPayload() []byte { return nil }

// ResetIgnitionCtrl is an acknowledgement-only leaf.
type ResetIgnitionCtrl struct{}

func (ResetIgnitionCtrl) Category() Category    { return CategoryAirbag }
func (ResetIgnitionCtrl) Subcommand() byte      { return tagResetIgnitionCtrl }
func (ResetIgnitionCtrl) RequestPayload() []byte { return nil }

// DiagGetSquibRes is an acknowledgement-only leaf.
type DiagGetSquibRes struct{}

func (DiagGetSquibRes) Category() Category    { return CategoryAirbag }
func (DiagGetSquibRes) Subcommand() byte      { return tagDiagGetSquibRes }
func (DiagGetSquibRes) RequestPayload() []byte { return nil }

// GetCalibSquibRes reports the two squib calibration resistances, each
// clamped to the ±100Ω sane range; an out-of-range reading decodes as
// HasRes1/HasRes2 false rather than a raw value.
type GetCalibSquibRes struct {
	Res1    float32
	HasRes1 bool
	Res2    float32
	HasRes2 bool
}

func (GetCalibSquibRes) Category() Category    { return CategoryAirbag }
func (GetCalibSquibRes) Subcommand() byte      { return tagGetCalibSquibRes }
func (GetCalibSquibRes) RequestPayload() []byte { return nil }

// SetCalibSquibRes is an acknowledgement-only leaf.
type SetCalibSquibRes struct{}

func (SetCalibSquibRes) Category() Category    { return CategoryAirbag }
func (SetCalibSquibRes) Subcommand() byte      { return tagSetCalibSquibRes }
func (SetCalibSquibRes) RequestPayload() []byte { return nil }

// GetInflationType reports the decoded inflation-type string.
type GetInflationType struct {
	Type string
}

func (GetInflationType) Category() Category    { return CategoryAirbag }
func (GetInflationType) Subcommand() byte      { return tagGetInflationType }
func (GetInflationType) RequestPayload() []byte { return nil }

// SetInflationType writes the inflation-type byte.
type SetInflationType struct {
	Type byte
}

func (SetInflationType) Category() Category         { return CategoryAirbag }
func (SetInflationType) Subcommand() byte           { return tagSetInflationType }
func (c SetInflationType) RequestPayload() []byte { return []byte{c.Type} }

// DecodeAirbag decodes an Airbag-category response. FireAIRBAG is refused
// unconditionally: it never reaches a typed Command, on decode as well as
// encode (see Command construction in this package — there is no
// FireAIRBAG leaf type to construct).
func DecodeAirbag(subcmd byte, payload []byte) (Command, error) {
	switch subcmd {
	case tagGetIgnitionCtrlMode:
		return GetIgnitionCtrlMode{}, nil
	case tagGetIgnitionCtrlStatus:
		return GetIgnitionCtrlStatus{}, nil
	case tagInitIgnitionCtrl:
		return InitIgnitionCtrl{}, nil
	case tagDiagIgnitionCtrl:
		return DiagIgnitionCtrl{}, nil
	case tagArmIgnitionCtrl:
		return ArmIgnitionCtrl{}, nil
	case tagFireAIRBAG:
		return nil, ErrForbiddenCommand
	case tagResetIgnitionCtrl:
		return ResetIgnitionCtrl{}, nil
	case tagDiagGetSquibRes:
		return DiagGetSquibRes{}, nil
	case tagGetCalibSquibRes:
		if len(payload) < 4 {
			return nil, ErrInvalidPayload
		}
		r1 := decodeCalibRes(payload[0:2])
		r2 := decodeCalibRes(payload[2:4])
		cmd := GetCalibSquibRes{}
		if r1 <= 100.0 && r1 >= -100.0 {
			cmd.Res1, cmd.HasRes1 = r1, true
		}
		if r2 <= 100.0 && r2 >= -100.0 {
			cmd.Res2, cmd.HasRes2 = r2, true
		}
		return cmd, nil
	case tagSetCalibSquibRes:
		return SetCalibSquibRes{}, nil
	case tagGetInflationType:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetInflationType{Type: decodeInflationType(payload[0])}, nil
	case tagSetInflationType:
		return SetInflationType{}, nil
	default:
		return nil, ErrUnknownSubcommand
	}
}
