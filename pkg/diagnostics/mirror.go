package diagnostics

import (
	"encoding/hex"
	"log"

	"github.com/alpinestars-acu/acuctl/pkg/acu/command"
)

// rawFrameKey is the capped Redis list raw wire frames are pushed onto for
// offline replay.
const rawFrameKey = "acu:raw_frames"

// Mirror writes decoded command responses into Redis hashes namespaced by
// category (acu:general, acu:measure, ...), one field per leaf. It is
// optional: a CLI session with no -redis-addr flag never constructs one.
type Mirror struct {
	client *Client
}

// NewMirror wraps an already-connected Client.
func NewMirror(client *Client) *Mirror {
	return &Mirror{client: client}
}

// Observe records resp if the mirror recognizes its type. Unrecognized
// leaves (acknowledgement-only commands, anything without a useful
// "current value") are silently ignored rather than filling Redis with
// noise.
func (m *Mirror) Observe(resp command.Command) {
	var err error
	switch v := resp.(type) {
	case command.GetSoftwareVersion:
		if v.HasVersion {
			err = m.client.WriteAndPublishFloat("acu:general", "software_version", v.Version)
		}
	case command.GetSerialNr:
		if v.HasSerialNr {
			err = m.client.WriteAndPublishString("acu:general", "serial_nr", v.SerialNr)
		}
	case command.GetServiceDate:
		if v.HasDate {
			err = m.client.WriteAndPublishString("acu:general", "service_date", v.Date)
		}
	case command.GetOperatingModus:
		if v.HasModus {
			err = m.client.WriteAndPublishInt("acu:general", "operating_mode", int64(v.Modus.Mode))
		}
	case command.GetLogicVoltage:
		if v.HasVolts {
			err = m.client.WriteAndPublishFloat("acu:measure", "logic_voltage", v.Volts)
		}
	case command.GetBatteryVoltage:
		if v.HasVolts {
			err = m.client.WriteAndPublishFloat("acu:measure", "battery_voltage", v.Volts)
		}
	case command.GetChargingState:
		if v.HasState {
			err = m.client.WriteAndPublishString("acu:measure", "charging_state", v.State)
		}
	case command.GetZIPSwitchState:
		if v.HasEngaged {
			b := int64(0)
			if v.Engaged {
				b = 1
			}
			err = m.client.WriteAndPublishInt("acu:measure", "zip_switch_engaged", b)
		}
	case command.GetOPHours:
		if v.HasDuration {
			err = m.client.WriteAndPublishString("acu:logging", "op_hours", v.Duration)
		}
	case command.GetNumOfErrors:
		if v.HasCount {
			err = m.client.WriteAndPublishInt("acu:logging", "num_errors", int64(v.Count))
		}
	case command.GetBatCount:
		if v.HasCount {
			err = m.client.WriteAndPublishInt("acu:logging", "bat_count", int64(v.Count))
		}
	case command.GetInflationType:
		err = m.client.WriteAndPublishString("acu:airbag", "inflation_type", v.Type)
	case command.GetBootLoaderState:
		if v.HasState {
			err = m.client.WriteAndPublishInt("acu:swupdate", "bootloader_state", int64(v.State))
		}
	}
	if err != nil {
		log.Printf("diagnostics: mirroring %T: %v", resp, err)
	}
}

// LogFrame hex-encodes a raw wire frame and pushes it onto the capped
// raw-frame event list, for tooling that replays a session's traffic
// offline rather than just its decoded current-value snapshot.
func (m *Mirror) LogFrame(frame []byte) {
	if err := m.client.LogRawFrame(rawFrameKey, hex.EncodeToString(frame)); err != nil {
		log.Printf("diagnostics: logging raw frame: %v", err)
	}
}
