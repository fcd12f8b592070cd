package command

// Algorithm subcommand tags.
const (
	tagInitAlgorithm                 byte = 0x00
	tagDoSingleSampleCalc             byte = 0x01
	tagGetSingleSampleCalcState       byte = 0x02
	tagGetSingleSampleCalcResult      byte = 0x03
	tagGetAlgorithmThresholds         byte = 0x04
	tagSetAlgorithmThresholds         byte = 0x05
	tagSetAlgorithmDefaultThresholds  byte = 0x06
)

// InitAlgorithm is an acknowledgement-only leaf.
type InitAlgorithm struct{}

func (InitAlgorithm) Category() Category    { return CategoryAlgorithm }
func (InitAlgorithm) Subcommand() byte      { return tagInitAlgorithm }
func (InitAlgorithm) RequestPayload() []byte { return nil }

// DoSingleSampleCalc is an acknowledgement-only leaf.
type DoSingleSampleCalc struct{}

func (DoSingleSampleCalc) Category() Category    { return CategoryAlgorithm }
func (DoSingleSampleCalc) Subcommand() byte      { return tagDoSingleSampleCalc }
func (DoSingleSampleCalc) RequestPayload() []byte { return nil }

// GetSingleSampleCalcState is an acknowledgement-only leaf.
type GetSingleSampleCalcState struct{}

func (GetSingleSampleCalcState) Category() Category    { return CategoryAlgorithm }
func (GetSingleSampleCalcState) Subcommand() byte      { return tagGetSingleSampleCalcState }
func (GetSingleSampleCalcState) RequestPayload() []byte { return nil }

// GetSingleSampleCalcResult is an acknowledgement-only leaf.
type GetSingleSampleCalcResult struct{}

func (GetSingleSampleCalcResult) Category() Category    { return CategoryAlgorithm }
func (GetSingleSampleCalcResult) Subcommand() byte      { return tagGetSingleSampleCalcResult }
func (GetSingleSampleCalcResult) RequestPayload() []byte { return nil }

// GetAlgorithmThresholds reports the raw threshold table bytes.
type GetAlgorithmThresholds struct {
	Data    []byte
	HasData bool
}

func (GetAlgorithmThresholds) Category() Category    { return CategoryAlgorithm }
func (GetAlgorithmThresholds) Subcommand() byte      { return tagGetAlgorithmThresholds }
func (GetAlgorithmThresholds) RequestPayload() []byte { return nil }

// SetAlgorithmThresholds is an acknowledgement-only leaf.
type SetAlgorithmThresholds struct{}

func (SetAlgorithmThresholds) Category() Category    { return CategoryAlgorithm }
func (SetAlgorithmThresholds) Subcommand() byte      { return tagSetAlgorithmThresholds }
func (SetAlgorithmThresholds) RequestPayload() []byte { return nil }

// SetAlgorithmDefaultThresholds requires firmware uiSoftwareVersion >= 279;
// older firmware does not implement writing default thresholds.
type SetAlgorithmDefaultThresholds struct {
	Status    byte
	HasStatus bool
}

func (SetAlgorithmDefaultThresholds) Category() Category    { return CategoryAlgorithm }
func (SetAlgorithmDefaultThresholds) Subcommand() byte      { return tagSetAlgorithmDefaultThresholds }
func (SetAlgorithmDefaultThresholds) RequestPayload() []byte { return nil }

// DecodeAlgorithm decodes an Algorithm-category response.
func DecodeAlgorithm(subcmd byte, payload []byte) (Command, error) {
	switch subcmd {
	case tagInitAlgorithm:
		return InitAlgorithm{}, nil
	case tagDoSingleSampleCalc:
		return DoSingleSampleCalc{}, nil
	case tagGetSingleSampleCalcState:
		return GetSingleSampleCalcState{}, nil
	case tagGetSingleSampleCalcResult:
		return GetSingleSampleCalcResult{}, nil
	case tagGetAlgorithmThresholds:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetAlgorithmThresholds{Data: payload, HasData: true}, nil
	case tagSetAlgorithmThresholds:
		return SetAlgorithmThresholds{}, nil
	case tagSetAlgorithmDefaultThresholds:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return SetAlgorithmDefaultThresholds{Status: payload[0], HasStatus: true}, nil
	default:
		return nil, ErrUnknownSubcommand
	}
}
