package command

import "github.com/alpinestars-acu/acuctl/pkg/acu/fixedpoint"

// Sensor subcommand tags.
const (
	tagEnableSensorReading    byte = 0x00
	tagGetSensorReadingEnables byte = 0x01
	tagGetRightHandAccel      byte = 0x02
	tagGetLeftHandAccel       byte = 0x03
	tagGetRightFootAccel      byte = 0x04
	tagGetLeftFootAccel       byte = 0x05
	tagGetBodyAccel           byte = 0x06
	tagGetGyroscope           byte = 0x07
	tagGetSWVRH               byte = 0x08
	tagGetSWVLH               byte = 0x09
	tagGetSWVRF               byte = 0x0A
	tagGetSWVLF               byte = 0x0B
)

// Triaxial is a decoded X/Y/Z sensor reading.
type Triaxial struct {
	X, Y, Z float32
}

func decodeXYZ(data []byte) (uint16, uint16, uint16) {
	x := uint16(data[0])<<8 | uint16(data[1])
	y := uint16(data[2])<<8 | uint16(data[3])
	z := uint16(data[4])<<8 | uint16(data[5])
	return x, y, z
}

func decodeAccel(data []byte) Triaxial {
	x, y, z := decodeXYZ(data)
	return Triaxial{X: fixedpoint.Accel(x), Y: fixedpoint.Accel(y), Z: fixedpoint.Accel(z)}
}

func decodeGyro(data []byte) Triaxial {
	x, y, z := decodeXYZ(data)
	return Triaxial{X: fixedpoint.Gyro(x), Y: fixedpoint.Gyro(y), Z: fixedpoint.Gyro(z)}
}

// RevisionPair is a software/hardware revision pair.
type RevisionPair struct {
	Software, Hardware float32
}

// decodeRev reads two adjacent big-endian words: software revision then
// hardware revision. The upstream length guard only checks for 2 bytes
// even though this reads 4; a too-short payload indexes out of range here
// exactly as it would in the reference implementation.
func decodeRev(data []byte) RevisionPair {
	sw := uint16(data[0])<<8 | uint16(data[1])
	hw := uint16(data[2])<<8 | uint16(data[3])
	return RevisionPair{
		Software: fixedpoint.U13_3(sw) * 10.0,
		Hardware: fixedpoint.U13_3(hw) * 10.0,
	}
}

// EnableSensorReading sets the sensor-enable bitmask; Mask is the bitmask
// to request, when provided.
type EnableSensorReading struct {
	Mask    byte
	HasMask bool
}

func (EnableSensorReading) Category() Category { return CategorySensor }
func (EnableSensorReading) Subcommand() byte    { return tagEnableSensorReading }
func (c EnableSensorReading) RequestPayload() []byte {
	if !c.HasMask {
		return nil
	}
	return []byte{c.Mask}
}

// GetSensorReadingEnables reports the current sensor-enable bitmask.
type GetSensorReadingEnables struct {
	Mask byte
}

func (GetSensorReadingEnables) Category() Category    { return CategorySensor }
func (GetSensorReadingEnables) Subcommand() byte      { return tagGetSensorReadingEnables }
func (GetSensorReadingEnables) RequestPayload() []byte { return nil }

// GetRightHandAccel reports the right-hand accelerometer reading.
type GetRightHandAccel struct {
	Accel    Triaxial
	HasAccel bool
}

func (GetRightHandAccel) Category() Category    { return CategorySensor }
func (GetRightHandAccel) Subcommand() byte      { return tagGetRightHandAccel }
func (GetRightHandAccel) RequestPayload() []byte { return nil }

// GetLeftHandAccel reports the left-hand accelerometer reading.
type GetLeftHandAccel struct {
	Accel    Triaxial
	HasAccel bool
}

func (GetLeftHandAccel) Category() Category    { return CategorySensor }
func (GetLeftHandAccel) Subcommand() byte      { return tagGetLeftHandAccel }
func (GetLeftHandAccel) RequestPayload() []byte { return nil }

// GetRightFootAccel reports the right-foot accelerometer reading.
type GetRightFootAccel struct {
	Accel    Triaxial
	HasAccel bool
}

func (GetRightFootAccel) Category() Category    { return CategorySensor }
func (GetRightFootAccel) Subcommand() byte      { return tagGetRightFootAccel }
func (GetRightFootAccel) RequestPayload() []byte { return nil }

// GetLeftFootAccel reports the left-foot accelerometer reading.
type GetLeftFootAccel struct {
	Accel    Triaxial
	HasAccel bool
}

func (GetLeftFootAccel) Category() Category    { return CategorySensor }
func (GetLeftFootAccel) Subcommand() byte      { return tagGetLeftFootAccel }
func (GetLeftFootAccel) RequestPayload() []byte { return nil }

// GetBodyAccel reports the body accelerometer reading.
type GetBodyAccel struct {
	Accel    Triaxial
	HasAccel bool
}

func (GetBodyAccel) Category() Category    { return CategorySensor }
func (GetBodyAccel) Subcommand() byte      { return tagGetBodyAccel }
func (GetBodyAccel) RequestPayload() []byte { return nil }

// GetGyroscope reports the gyroscope reading.
type GetGyroscope struct {
	Gyro    Triaxial
	HasGyro bool
}

func (GetGyroscope) Category() Category    { return CategorySensor }
func (GetGyroscope) Subcommand() byte      { return tagGetGyroscope }
func (GetGyroscope) RequestPayload() []byte { return nil }

// GetSWVRH reports the right-hand sensor software/hardware revision.
type GetSWVRH struct{ Revision RevisionPair }

func (GetSWVRH) Category() Category    { return CategorySensor }
func (GetSWVRH) Subcommand() byte      { return tagGetSWVRH }
func (GetSWVRH) RequestPayload() []byte { return nil }

// GetSWVLH reports the left-hand sensor software/hardware revision.
type GetSWVLH struct{ Revision RevisionPair }

func (GetSWVLH) Category() Category    { return CategorySensor }
func (GetSWVLH) Subcommand() byte      { return tagGetSWVLH }
func (GetSWVLH) RequestPayload() []byte { return nil }

// GetSWVRF reports the right-foot sensor software/hardware revision.
type GetSWVRF struct{ Revision RevisionPair }

func (GetSWVRF) Category() Category    { return CategorySensor }
func (GetSWVRF) Subcommand() byte      { return tagGetSWVRF }
func (GetSWVRF) RequestPayload() []byte { return nil }

// GetSWVLF reports the left-foot sensor software/hardware revision.
type GetSWVLF struct{ Revision RevisionPair }

func (GetSWVLF) Category() Category    { return CategorySensor }
func (GetSWVLF) Subcommand() byte      { return tagGetSWVLF }
func (GetSWVLF) RequestPayload() []byte { return nil }

// DecodeSensor decodes a Sensor-category response.
func DecodeSensor(subcmd byte, payload []byte) (Command, error) {
	switch subcmd {
	case tagEnableSensorReading:
		return EnableSensorReading{}, nil
	case tagGetSensorReadingEnables:
		if len(payload) < 1 {
			return nil, ErrInvalidPayload
		}
		return GetSensorReadingEnables{Mask: payload[0]}, nil
	case tagGetRightHandAccel:
		if len(payload) < 6 {
			return nil, ErrInvalidPayload
		}
		return GetRightHandAccel{Accel: decodeAccel(payload), HasAccel: true}, nil
	case tagGetLeftHandAccel:
		if len(payload) < 6 {
			return nil, ErrInvalidPayload
		}
		return GetLeftHandAccel{Accel: decodeAccel(payload), HasAccel: true}, nil
	case tagGetRightFootAccel:
		if len(payload) < 6 {
			return nil, ErrInvalidPayload
		}
		return GetRightFootAccel{Accel: decodeAccel(payload), HasAccel: true}, nil
	case tagGetLeftFootAccel:
		if len(payload) < 6 {
			return nil, ErrInvalidPayload
		}
		return GetLeftFootAccel{Accel: decodeAccel(payload), HasAccel: true}, nil
	case tagGetBodyAccel:
		if len(payload) < 6 {
			return nil, ErrInvalidPayload
		}
		return GetBodyAccel{Accel: decodeAccel(payload), HasAccel: true}, nil
	case tagGetGyroscope:
		if len(payload) < 6 {
			return nil, ErrInvalidPayload
		}
		return GetGyroscope{Gyro: decodeGyro(payload), HasGyro: true}, nil
	case tagGetSWVRH:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetSWVRH{Revision: decodeRev(payload)}, nil
	case tagGetSWVLH:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetSWVLH{Revision: decodeRev(payload)}, nil
	case tagGetSWVRF:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetSWVRF{Revision: decodeRev(payload)}, nil
	case tagGetSWVLF:
		if len(payload) < 2 {
			return nil, ErrInvalidPayload
		}
		return GetSWVLF{Revision: decodeRev(payload)}, nil
	default:
		return nil, ErrUnknownSubcommand
	}
}
