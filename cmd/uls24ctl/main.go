//go:build linux

package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/capture"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/diag"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/frame"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/httpapi"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/logging"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/observability"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/publish"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/transport/hidraw"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/transport/usbfs"
)

type options struct {
	config      string
	interactive bool
	runDiag     bool
	channel     int
	intTimeMS   int
	gainMode    int
	frames      int
	output      string
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "path to TOML config (optional)")
	flag.BoolVar(&opts.interactive, "interactive", false, "run the interactive shell")
	flag.BoolVar(&opts.runDiag, "diag", false, "run device diagnostics and exit")
	flag.IntVar(&opts.channel, "channel", 0, "capture channel 1..4 (overrides config)")
	flag.IntVar(&opts.intTimeMS, "inttime", 0, "integration time in ms (overrides config)")
	flag.IntVar(&opts.gainMode, "gain", -1, "gain mode: 0 high, 1 low (overrides config)")
	flag.IntVar(&opts.frames, "frames", 1, "number of frames to capture")
	flag.StringVar(&opts.output, "output", "", "write captured frames to this file")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "uls24ctl: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	log := logging.New("uls24ctl", logging.ProfileRuntime)

	cfg, err := LoadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.channel != 0 {
		cfg.Capture.Channel = opts.channel
	}
	if opts.intTimeMS != 0 {
		cfg.Capture.IntegrationTimeMS = opts.intTimeMS
	}
	if opts.gainMode >= 0 {
		cfg.Capture.GainMode = opts.gainMode
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	vendorID, _ := parseHexID(cfg.Device.VendorID)
	productID, _ := parseHexID(cfg.Device.ProductID)

	if opts.runDiag {
		report := diag.Run(diag.DefaultPaths(), vendorID, productID)
		report.Log(log)
		if !report.Healthy() {
			return fmt.Errorf("diagnostics found problems")
		}
		return nil
	}

	observability.RegisterMetrics()

	tr, err := openTransport(cfg.Device, vendorID, productID, log)
	if err != nil {
		return err
	}
	enc, err := protocol.New(cfg.Device.Protocol)
	if err != nil {
		return err
	}
	session := capture.NewSession(tr, enc, cfg.captureConfig(), log)
	defer session.Close()

	if err := initSequence(session, cfg.Capture); err != nil {
		return err
	}

	var pub *publish.Publisher
	if cfg.MQTT.Enabled {
		mqttCfg := publish.DefaultConfig()
		mqttCfg.Broker = cfg.MQTT.Broker
		mqttCfg.ClientID = cfg.MQTT.ClientID
		mqttCfg.Topic = cfg.MQTT.Topic
		pub, err = publish.Connect(mqttCfg, log)
		if err != nil {
			return err
		}
		defer pub.Close()
	}

	store := &httpapi.FrameStore{}
	if cfg.HTTP.Enabled {
		go func() {
			if err := httpapi.Serve(cfg.HTTP.Addr, store, log); err != nil {
				log.Error().Err(err).Msg("http api stopped")
			}
		}()
	}

	app := &shell{
		session: session,
		cfg:     cfg,
		store:   store,
		pub:     pub,
		output:  opts.output,
		log:     log,
	}
	if opts.interactive {
		return app.loop(os.Stdin, os.Stdout)
	}
	return app.oneShot(cfg.Capture.Channel, opts.frames)
}

func openTransport(dev DeviceConfig, vendorID, productID uint16, log zerolog.Logger) (capture.Transport, error) {
	var (
		tr  capture.Transport
		err error
	)
	switch dev.Transport {
	case "usbfs":
		tr, err = usbfs.Open(vendorID, productID, log)
	default:
		tr, err = hidraw.Open(vendorID, productID, log)
	}
	if err != nil {
		return nil, err
	}
	switch dev.SampleOrder {
	case "big":
		tr = orderedTransport{Transport: tr, order: binary.BigEndian}
	case "little":
		tr = orderedTransport{Transport: tr, order: binary.LittleEndian}
	}
	return tr, nil
}

// orderedTransport forces a sample byte order over the transport's
// native one; used when firmware and transport defaults disagree.
type orderedTransport struct {
	capture.Transport
	order binary.ByteOrder
}

func (t orderedTransport) SampleOrder() binary.ByteOrder { return t.order }

// initSequence applies the configured channel, integration time and
// gain so the first capture matches the config instead of whatever the
// device last had.
func initSequence(s *capture.Session, cc CaptureConfig) error {
	if err := s.SelectChannel(cc.Channel); err != nil {
		return err
	}
	if err := s.SetIntegrationTime(cc.IntegrationTimeMS); err != nil {
		return err
	}
	return s.SetGainMode(cc.GainMode)
}

type shell struct {
	session *capture.Session
	cfg     Config
	store   *httpapi.FrameStore
	pub     *publish.Publisher
	output  string
	log     zerolog.Logger
}

func (sh *shell) oneShot(channel, frames int) error {
	for i := 0; i < frames; i++ {
		if err := sh.captureOnce(channel, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func (sh *shell) captureOnce(channel int, out *os.File) error {
	fr, err := sh.session.Capture(channel)
	if err != nil {
		return err
	}
	sh.store.Set(fr)
	if sh.pub != nil {
		if err := sh.pub.PublishFrame(fr); err != nil {
			sh.log.Warn().Err(err).Msg("frame publish failed")
		}
	}
	if sh.output != "" {
		if err := appendFrame(sh.output, fr); err != nil {
			return err
		}
	}
	printFrame(out, fr)
	return nil
}

const shellHelp = `commands:
  selchan N      select channel 1..4
  get [N]        capture N frames (default 1)
  setinttime MS  set integration time in ms
  setgain MODE   set gain: 0 high, 1 low
  reset          re-apply configured channel, time and gain
  diag           run device diagnostics
  help           show this text
  exit           quit`

func (sh *shell) loop(in *os.File, out *os.File) error {
	fmt.Fprintln(out, "uls24ctl interactive shell, 'help' for commands")
	channel := sh.cfg.Capture.Channel

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		var err error
		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "selchan":
			var ch int
			if ch, err = intArg(args, 0); err == nil {
				if err = sh.session.SelectChannel(ch); err == nil {
					channel = ch
				}
			}
		case "get":
			frames := 1
			if len(args) > 0 {
				if frames, err = intArg(args, 0); err != nil {
					break
				}
			}
			for i := 0; i < frames && err == nil; i++ {
				err = sh.captureOnce(channel, out)
			}
		case "setinttime":
			var ms int
			if ms, err = intArg(args, 0); err == nil {
				err = sh.session.SetIntegrationTime(ms)
			}
		case "setgain":
			var mode int
			if mode, err = intArg(args, 0); err == nil {
				err = sh.session.SetGainMode(mode)
			}
		case "reset":
			if err = initSequence(sh.session, sh.cfg.Capture); err == nil {
				channel = sh.cfg.Capture.Channel
			}
		case "diag":
			vendorID, _ := parseHexID(sh.cfg.Device.VendorID)
			productID, _ := parseHexID(sh.cfg.Device.ProductID)
			diag.Run(diag.DefaultPaths(), vendorID, productID).Log(sh.log)
		default:
			fmt.Fprintf(out, "unknown command %q, 'help' for commands\n", cmd)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func intArg(args []string, idx int) (int, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing argument")
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("bad argument %q", args[idx])
	}
	return v, nil
}

func printFrame(out *os.File, fr *frame.Sensor) {
	fmt.Fprintf(out, "channel %d  %dx%d  inttime %dms  gain %d\n",
		fr.Channel, fr.Dim, fr.Dim, fr.IntegrationTimeMS, fr.GainMode)
	fmt.Fprint(out, formatFrame(fr))
}

// formatFrame renders the grid as whitespace separated rows, one line
// per sensor row.
func formatFrame(fr *frame.Sensor) string {
	var sb strings.Builder
	for _, row := range fr.Grid {
		for i, v := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(int(v)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func appendFrame(path string, fr *frame.Sensor) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(formatFrame(fr) + "\n"); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
