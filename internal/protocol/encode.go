package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Protocol encodes semantic commands into fixed-size wire reports.
// The two variants are not interchangeable: a device speaking the
// framed protocol silently corrupts frames when fed simple reports,
// and vice versa. The variant is chosen at configuration time.
type Protocol interface {
	Encode(cmd Command) ([]byte, error)
	Name() string
}

// New returns the encoder for a configured variant name.
func New(variant string) (Protocol, error) {
	switch variant {
	case "framed", "":
		return Framed{}, nil
	case "simple":
		return Simple{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
}

// Framed is the preamble/checksum/backcode variant:
//
//	0xAA, cmd, len(payload)+1, dataType, payload..., checksum, 0x17, 0x17
//
// The checksum spans the command byte through the last payload byte,
// modulo 256, remapped 0x17 -> 0x18 so it can never alias the backcode.
type Framed struct{}

func (Framed) Name() string { return "framed" }

func (Framed) Encode(cmd Command) ([]byte, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	switch c := cmd.(type) {
	case SelectChannel:
		return encodeFramed(cmdSetParam, typeSelSensor, []byte{byte(c.Channel - 1), 0x00})
	case SetIntegrationTime:
		payload := make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, math.Float32bits(float32(c.Millis)))
		return encodeFramed(cmdSetParam, typeIntTime, payload)
	case SetGainMode:
		return encodeFramed(cmdSetParam, typeGainMode, []byte{byte(c.Mode)})
	case Capture:
		payload := make([]byte, 11)
		payload[0] = 0xFF
		return encodeFramed(cmdCapture, byte((c.Channel-1)<<4)|typeRange, payload)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
	}
}

// framedOverhead counts preamble, command, length, data type, checksum
// and the two backcodes.
const framedOverhead = 7

// EncodeFramed builds one framed report from raw protocol bytes.
// Exposed for commands outside the Command set (EEPROM, LED config).
func EncodeFramed(command, dataType byte, payload []byte) ([]byte, error) {
	return encodeFramed(command, dataType, payload)
}

func encodeFramed(command, dataType byte, payload []byte) ([]byte, error) {
	if len(payload) > ReportLen-framedOverhead {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d",
			ErrPayloadTooLarge, len(payload), ReportLen-framedOverhead)
	}
	buf := make([]byte, ReportLen)
	buf[0] = Preamble
	buf[1] = command
	buf[2] = byte(len(payload) + 1)
	buf[3] = dataType
	copy(buf[4:], payload)

	var sum byte
	for _, b := range buf[1 : 4+len(payload)] {
		sum += b
	}
	if sum == Backcode {
		sum = Backcode + 1
	}
	buf[4+len(payload)] = sum
	buf[5+len(payload)] = Backcode
	buf[6+len(payload)] = Backcode
	return buf, nil
}

// Simple is the lightweight variant: opcode followed by raw parameter
// bytes, zero-padded to the report length.
type Simple struct{}

func (Simple) Name() string { return "simple" }

func (Simple) Encode(cmd Command) ([]byte, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	switch c := cmd.(type) {
	case SelectChannel:
		return encodeSimple(opSelSensor, []byte{byte(c.Channel)})
	case SetIntegrationTime:
		// This variant carries only 16 bits; wider values truncate.
		return encodeSimple(opIntTime, []byte{byte(c.Millis >> 8), byte(c.Millis)})
	case SetGainMode:
		return encodeSimple(opGainMode, []byte{byte(c.Mode)})
	case Capture:
		return encodeSimple(opCapture, []byte{byte(c.Channel)})
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
	}
}

// EncodeSimple builds one simple-variant report from an opcode and
// raw parameter bytes.
func EncodeSimple(opcode byte, params []byte) ([]byte, error) {
	return encodeSimple(opcode, params)
}

func encodeSimple(opcode byte, params []byte) ([]byte, error) {
	if len(params) > ReportLen-1 {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d",
			ErrPayloadTooLarge, len(params), ReportLen-1)
	}
	buf := make([]byte, ReportLen)
	buf[0] = opcode
	copy(buf[1:], params)
	return buf, nil
}
