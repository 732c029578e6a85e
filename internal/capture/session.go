package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/frame"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/observability"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
)

var (
	ErrTimedOut = errors.New("capture: no packet within read timeout")
	ErrBusy     = errors.New("capture: capture already in flight")
)

// State tracks one in-flight capture through the machine
// Idle -> Requesting -> Streaming -> {Complete, Failed}.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session drives one device handle. All operations are strictly
// sequential; a second capture while one is in flight fails with
// ErrBusy. A failed or cancelled capture leaves no partial state --
// the next capture starts clean from Idle with a fresh frame.
type Session struct {
	tr  Transport
	enc protocol.Protocol
	cfg Config
	log zerolog.Logger

	mu sync.Mutex

	// Last applied parameters, stamped onto completed frames.
	channel   int
	gainMode  int
	intTimeMS int
}

func NewSession(tr Transport, enc protocol.Protocol, cfg Config, log zerolog.Logger) *Session {
	return &Session{
		tr:       tr,
		enc:      enc,
		cfg:      cfg.withDefaults(),
		log:      log,
		channel:  1,
		gainMode: protocol.GainHigh,
	}
}

// SelectChannel activates a sensor channel for subsequent captures.
func (s *Session) SelectChannel(channel int) error {
	if err := s.apply(protocol.SelectChannel{Channel: channel}, "selchan"); err != nil {
		return err
	}
	s.channel = channel
	return nil
}

// SetIntegrationTime sets the exposure window in milliseconds.
func (s *Session) SetIntegrationTime(ms int) error {
	if err := s.apply(protocol.SetIntegrationTime{Millis: ms}, "inttime"); err != nil {
		return err
	}
	s.intTimeMS = ms
	return nil
}

// SetGainMode selects high (0) or low (1) gain.
func (s *Session) SetGainMode(mode int) error {
	if err := s.apply(protocol.SetGainMode{Mode: mode}, "gain"); err != nil {
		return err
	}
	s.gainMode = mode
	return nil
}

// apply writes one parameter command and drains its single reply.
// A missing reply is tolerated: some firmware acknowledges parameter
// writes only sometimes, and the value still takes effect.
func (s *Session) apply(cmd protocol.Command, kind string) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	report, err := s.enc.Encode(cmd)
	if err != nil {
		return err
	}
	if _, err := s.tr.Write(report); err != nil {
		return fmt.Errorf("capture: send %s: %w", kind, err)
	}
	observability.RecordCommand(kind)

	reply, err := s.tr.Read(s.cfg.ReplyTimeout)
	if err != nil {
		return fmt.Errorf("capture: read %s reply: %w", kind, err)
	}
	if reply == nil {
		s.log.Debug().Str("command", kind).Msg("no reply, continuing")
		return nil
	}
	if _, err := protocol.Classify(reply, false, s.tr.SampleOrder()); err != nil &&
		!errors.Is(err, protocol.ErrTruncatedResponse) {
		return err
	}
	return nil
}

// Capture requests a frame from the given channel and runs the read
// loop to a terminal state. On Complete the assembled frame is
// returned whole; on Failed the in-progress frame is discarded and
// an error describes the cause.
func (s *Session) Capture(channel int) (*frame.Sensor, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	start := time.Now()
	fr, err := s.capture(channel)
	if err != nil {
		observability.RecordCapture(channel, "failed", time.Since(start))
		return nil, err
	}
	observability.RecordCapture(channel, "complete", time.Since(start))
	return fr, nil
}

func (s *Session) capture(channel int) (*frame.Sensor, error) {
	report, err := s.enc.Encode(protocol.Capture{Channel: channel})
	if err != nil {
		return nil, err
	}

	state := StateRequesting
	s.log.Debug().Int("channel", channel).Stringer("state", state).Msg("capture requested")
	if _, err := s.tr.Write(report); err != nil {
		return nil, fmt.Errorf("capture: send capture: %w", err)
	}
	state = StateStreaming

	asm := frame.NewAssembler()
	cont := true
	attempts := 0
	for cont && attempts < s.cfg.MaxAttempts {
		attempts++

		pkt, err := s.tr.Read(s.cfg.ReadTimeout)
		if err != nil {
			state = StateFailed
			s.log.Error().Err(err).Int("attempt", attempts).Stringer("state", state).Msg("transport read failed")
			return nil, fmt.Errorf("capture: read row packet: %w", err)
		}
		if pkt == nil {
			state = StateFailed
			s.log.Warn().Int("attempt", attempts).Stringer("state", state).Msg("read window expired")
			return nil, ErrTimedOut
		}

		resp, err := protocol.Classify(pkt, cont, s.tr.SampleOrder())
		switch {
		case errors.Is(err, protocol.ErrTruncatedResponse):
			// Ignore the packet, keep streaming.
			observability.RecordPacket("truncated")
			continue
		case errors.Is(err, protocol.ErrSensorTimeout):
			state = StateFailed
			s.log.Error().Int("attempt", attempts).Stringer("state", state).Msg("device reported sensor timeout")
			return nil, err
		case err != nil:
			state = StateFailed
			return nil, err
		}

		cont = resp.Continue
		if resp.HasRow {
			observability.RecordPacket("row")
			asm.ConsumeRow(resp)
		} else {
			observability.RecordPacket("status")
		}
	}

	// Reaching the attempt cap without a terminal marker is a soft
	// success: whatever rows arrived form the frame.
	state = StateComplete
	fr := asm.Frame()
	if fr == nil {
		fr = frame.NewSensor(frame.Dim12)
	}
	fr.Channel = channel
	fr.GainMode = s.gainMode
	fr.IntegrationTimeMS = s.intTimeMS
	s.log.Debug().
		Int("channel", channel).
		Int("attempts", attempts).
		Int("dim", fr.Dim).
		Stringer("state", state).
		Msg("capture complete")
	return fr, nil
}

// Close releases the underlying transport handle.
func (s *Session) Close() error {
	return s.tr.Close()
}
