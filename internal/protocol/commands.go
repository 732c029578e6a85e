package protocol

import "fmt"

// ReportLen is the data capacity of one report in either direction,
// excluding any transport framing byte.
const ReportLen = 64

// Framed wire markers.
const (
	Preamble byte = 0xAA
	Backcode byte = 0x17
)

// Framed command codes.
const (
	cmdSetParam   byte = 0x01
	cmdCapture    byte = 0x02
	cmdEEPROMRead byte = 0x04
)

// Framed parameter data types.
const (
	typeRampgen   byte = 0x01
	typeRange     byte = 0x02
	typeV20       byte = 0x04
	typeV15       byte = 0x05
	typeGainMode  byte = 0x07
	typeTxBin     byte = 0x08
	typeIntTime   byte = 0x20
	typeLEDConfig byte = 0x23
	typeSelSensor byte = 0x26
	typeEEPROM    byte = 0x2D
)

// Simple variant opcodes.
const (
	opCapture   byte = 0x01
	opSelSensor byte = 0x03
	opGainMode  byte = 0x04
	opIntTime   byte = 0x05
)

// Inbound report markers.
const (
	getReplyEcho   byte = 0x02
	statusFrameEnd byte = 0x0B
	statusSensorTO byte = 0xF1
)

// Gain modes.
const (
	GainHigh = 0
	GainLow  = 1
)

// Command limits.
const (
	MinChannel = 1
	MaxChannel = 4
	MinIntTime = 1
	MaxIntTime = 66000
)

// Command is one semantic instruction for the sensor head.
type Command interface {
	validate() error
}

// SelectChannel activates one of the four sensor channels.
type SelectChannel struct {
	Channel int
}

// SetIntegrationTime sets the exposure window in milliseconds.
type SetIntegrationTime struct {
	Millis int
}

// SetGainMode selects GainHigh or GainLow.
type SetGainMode struct {
	Mode int
}

// Capture requests a frame readout from one channel.
type Capture struct {
	Channel int
}

func (c SelectChannel) validate() error {
	return checkChannel(c.Channel)
}

func (c SetIntegrationTime) validate() error {
	if c.Millis < MinIntTime || c.Millis > MaxIntTime {
		return fmt.Errorf("%w: integration time %dms out of [%d, %d]",
			ErrInvalidCommand, c.Millis, MinIntTime, MaxIntTime)
	}
	return nil
}

func (c SetGainMode) validate() error {
	if c.Mode != GainHigh && c.Mode != GainLow {
		return fmt.Errorf("%w: gain mode %d", ErrInvalidCommand, c.Mode)
	}
	return nil
}

func (c Capture) validate() error {
	return checkChannel(c.Channel)
}

func checkChannel(ch int) error {
	if ch < MinChannel || ch > MaxChannel {
		return fmt.Errorf("%w: channel %d out of [%d, %d]",
			ErrInvalidCommand, ch, MinChannel, MaxChannel)
	}
	return nil
}
