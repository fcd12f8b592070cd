package command

import "fmt"

// Logging subcommand tags.
const (
	tagGetOPHours           byte = 0x00
	tagClearOPHours         byte = 0x01
	tagGetNumOfErrors       byte = 0x02
	tagGetErrorEntry        byte = 0x03
	tagClearErrorHistory    byte = 0x04
	tagGetNumOfPreCrashLogs byte = 0x05
	tagGetPreCrashLogs      byte = 0x06
	tagClearPreCrashLog     byte = 0x07
	tagGetNumOfPostCrashLogs byte = 0x08
	tagGetPostCrashBulk     byte = 0x09
	tagClearPostCrashLog    byte = 0x0A
	tagGetPreCrashBulk      byte = 0x0B
	tagGetErrorHistory      byte = 0x0C
	tagGetPostCrashLogs     byte = 0x0D
	tagGetBatCount          byte = 0x0E
	tagGetPreCrashENCBulk   byte = 0x0F
	tagGetPostCrashENCBulk  byte = 0x10
)

// GetOPHours reports cumulative operating hours as "HH:MM:SS".
type GetOPHours struct {
	Duration    string
	HasDuration bool
}

func (GetOPHours) Category() Category    { return CategoryLogging }
func (GetOPHours) Subcommand() byte      { return tagGetOPHours }
func (GetOPHours) RequestPayload() []byte { return nil }

// ClearOPHours is an acknowledgement-only leaf.
type ClearOPHours struct{}

func (ClearOPHours) Category() Category    { return CategoryLogging }
func (ClearOPHours) Subcommand() byte      { return tagClearOPHours }
func (ClearOPHours) RequestPayload() []byte { return nil }

// GetNumOfErrors reports the logged error count.
type GetNumOfErrors struct {
	Count    byte
	HasCount bool
}

func (GetNumOfErrors) Category() Category    { return CategoryLogging }
func (GetNumOfErrors) Subcommand() byte      { return tagGetNumOfErrors }
func (GetNumOfErrors) RequestPayload() []byte { return nil }

// GetErrorEntry reports one raw error-log entry.
type GetErrorEntry struct {
	Entry    []byte
	HasEntry bool
}

func (GetErrorEntry) Category() Category    { return CategoryLogging }
func (GetErrorEntry) Subcommand() byte      { return tagGetErrorEntry }
func (GetErrorEntry) RequestPayload() []byte { return nil }

// ClearErrorHistory is an acknowledgement-only leaf.
type ClearErrorHistory struct{}

func (ClearErrorHistory) Category() Category    { return CategoryLogging }
func (ClearErrorHistory) Subcommand() byte      { return tagClearErrorHistory }
func (ClearErrorHistory) RequestPayload() []byte { return nil }

// GetNumOfPreCrashLogs reports the number of stored pre-crash logs.
type GetNumOfPreCrashLogs struct {
	Count    uint16
	HasCount bool
}

func (GetNumOfPreCrashLogs) Category() Category    { return CategoryLogging }
func (GetNumOfPreCrashLogs) Subcommand() byte      { return tagGetNumOfPreCrashLogs }
func (GetNumOfPreCrashLogs) RequestPayload() []byte { return nil }

// GetPreCrashLogs reports raw pre-crash log bytes.
type GetPreCrashLogs struct {
	Data    []byte
	HasData bool
}

func (GetPreCrashLogs) Category() Category    { return CategoryLogging }
func (GetPreCrashLogs) Subcommand() byte      { return tagGetPreCrashLogs }
func (GetPreCrashLogs) RequestPayload() []byte { return nil }

// ClearPreCrashLog is an acknowledgement-only leaf.
type ClearPreCrashLog struct{}

func (ClearPreCrashLog) Category() Category    { return CategoryLogging }
func (ClearPreCrashLog) Subcommand() byte      { return tagClearPreCrashLog }
func (ClearPreCrashLog) RequestPayload() []byte { return nil }

// GetNumOfPostCrashLogs reports the number of stored post-crash logs.
type GetNumOfPostCrashLogs struct {
	Count    uint16
	HasCount bool
}

func (GetNumOfPostCrashLogs) Category() Category    { return CategoryLogging }
func (GetNumOfPostCrashLogs) Subcommand() byte      { return tagGetNumOfPostCrashLogs }
func (GetNumOfPostCrashLogs) RequestPayload() []byte { return nil }

// GetPostCrashBulk requests the post-crash bulk dump.
type GetPostCrashBulk struct {
	Chunk    byte
	HasChunk bool
}

func (GetPostCrashBulk) Category() Category    { return CategoryLogging }
func (GetPostCrashBulk) Subcommand() byte      { return tagGetPostCrashBulk }
func (GetPostCrashBulk) RequestPayload() []byte { return nil }

// ClearPostCrashLog is an acknowledgement-only leaf.
type ClearPostCrashLog struct{}

func (ClearPostCrashLog) Category() Category    { return CategoryLogging }
func (ClearPostCrashLog) Subcommand() byte      { return tagClearPostCrashLog }
func (ClearPostCrashLog) RequestPayload() []byte { return nil }

// GetPreCrashBulk requests the pre-crash bulk dump.
type GetPreCrashBulk struct{}

func (GetPreCrashBulk) Category() Category    { return CategoryLogging }
func (GetPreCrashBulk) Subcommand() byte      { return tagGetPreCrashBulk }
func (GetPreCrashBulk) RequestPayload() []byte { return nil }

// GetErrorHistory reports raw error-history bytes.
type GetErrorHistory struct {
	Data    []byte
	HasData bool
}

func (GetErrorHistory) Category() Category    { return CategoryLogging }
func (GetErrorHistory) Subcommand() byte      { return tagGetErrorHistory }
func (GetErrorHistory) RequestPayload() []byte { return nil }

// GetPostCrashLogs reports raw post-crash log bytes.
type GetPostCrashLogs struct {
	Data    []byte
	HasData bool
}

func (GetPostCrashLogs) Category() Category    { return CategoryLogging }
func (GetPostCrashLogs) Subcommand() byte      { return tagGetPostCrashLogs }
func (GetPostCrashLogs) RequestPayload() []byte { return nil }

// GetBatCount reports the battery-cycle count.
type GetBatCount struct {
	Count    uint16
	HasCount bool
}

func (GetBatCount) Category() Category    { return CategoryLogging }
func (GetBatCount) Subcommand() byte      { return tagGetBatCount }
func (GetBatCount) RequestPayload() []byte { return nil }

// GetPreCrashENCBulk requests the encrypted pre-crash bulk dump.
type GetPreCrashENCBulk struct{}

func (GetPreCrashENCBulk) Category() Category    { return CategoryLogging }
func (GetPreCrashENCBulk) Subcommand() byte      { return tagGetPreCrashENCBulk }
func (GetPreCrashENCBulk) RequestPayload() []byte { return nil }

// GetPostCrashENCBulk requests the encrypted post-crash bulk dump.
type GetPostCrashENCBulk struct{}

func (GetPostCrashENCBulk) Category() Category    { return CategoryLogging }
func (GetPostCrashENCBulk) Subcommand() byte      { return tagGetPostCrashENCBulk }
func (GetPostCrashENCBulk) RequestPayload() []byte { return nil }

// DecodeLogging decodes a Logging-category response.
func DecodeLogging(subcmd byte, payload []byte) (Command, error) {
	switch subcmd {
	case tagGetOPHours:
		if len(payload) < 4 {
			return nil, ErrInvalidPayload
		}
		hours := be16(payload)
		return GetOPHours{
			Duration:    formatHMS(hours, payload[2], payload[3]),
			HasDuration: true,
		}, nil
	case tagClearOPHours:
		return ClearOPHours{}, nil
	case tagGetNumOfErrors:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetNumOfErrors{Count: payload[0], HasCount: true}, nil
	case tagGetErrorEntry:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetErrorEntry{Entry: payload, HasEntry: true}, nil
	case tagClearErrorHistory:
		return ClearErrorHistory{}, nil
	case tagGetNumOfPreCrashLogs:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetNumOfPreCrashLogs{Count: be16(payload), HasCount: true}, nil
	case tagGetPreCrashLogs:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetPreCrashLogs{Data: payload, HasData: true}, nil
	case tagClearPreCrashLog:
		return ClearPreCrashLog{}, nil
	case tagGetNumOfPostCrashLogs:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetNumOfPostCrashLogs{Count: be16(payload), HasCount: true}, nil
	case tagGetPostCrashBulk:
		return GetPostCrashBulk{}, nil
	case tagClearPostCrashLog:
		return ClearPostCrashLog{}, nil
	case tagGetPreCrashBulk:
		return GetPreCrashBulk{}, nil
	case tagGetErrorHistory:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetErrorHistory{Data: payload, HasData: true}, nil
	case tagGetPostCrashLogs:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetPostCrashLogs{Data: payload, HasData: true}, nil
	case tagGetBatCount:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetBatCount{Count: be16(payload), HasCount: true}, nil
	case tagGetPreCrashENCBulk:
		return GetPreCrashENCBulk{}, nil
	case tagGetPostCrashENCBulk:
		return GetPostCrashENCBulk{}, nil
	default:
		return nil, ErrUnknownSubcommand
	}
}

func formatHMS(hours uint16, minutes, seconds byte) string {
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
