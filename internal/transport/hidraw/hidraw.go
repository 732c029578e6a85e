//go:build linux

// Package hidraw is the HID report transport for the sensor, backed
// by the kernel hidraw character devices.
//
// Row samples arrive high-byte-first on this path. The raw-USB
// transport disagrees; see the usbfs package.
package hidraw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
)

const sysClassPath = "/sys/class/hidraw"

var ErrDeviceNotFound = errors.New("hidraw: device not found")

// Device is one open hidraw node.
type Device struct {
	f    *os.File
	path string
	log  zerolog.Logger
}

// Open scans sysfs for a hidraw node matching vendor/product and
// opens it for report I/O.
func Open(vendorID, productID uint16, log zerolog.Logger) (*Device, error) {
	node, err := findNode(sysClassPath, vendorID, productID)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(node, os.O_RDWR, 0)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("hidraw: open %s: %w (udev rule or plugdev membership required)", node, err)
		}
		return nil, fmt.Errorf("hidraw: open %s: %w", node, err)
	}
	log.Debug().Str("node", node).Msg("hidraw device opened")
	return &Device{f: f, path: node, log: log}, nil
}

// Write sends one output report. hidraw expects the report number as
// the first byte; this device uses unnumbered reports, so it is zero.
func (d *Device) Write(p []byte) (int, error) {
	buf := make([]byte, len(p)+1)
	copy(buf[1:], p)
	n, err := d.f.Write(buf)
	if err != nil {
		return 0, fmt.Errorf("hidraw: write: %w", err)
	}
	if n > 0 {
		n--
	}
	return n, nil
}

// Read returns the next input report, or (nil, nil) when no report
// arrived inside the timeout window. Unnumbered input reports carry
// no leading report byte on hidraw, so the data is already in the
// layout the classifier expects.
func (d *Device) Read(timeout time.Duration) ([]byte, error) {
	if err := d.f.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("hidraw: set deadline: %w", err)
	}
	buf := make([]byte, protocol.ReportLen)
	n, err := d.f.Read(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hidraw: read: %w", err)
	}
	return buf[:n], nil
}

func (d *Device) SampleOrder() binary.ByteOrder { return binary.BigEndian }

// Path is the device node this handle is bound to.
func (d *Device) Path() string { return d.path }

func (d *Device) Close() error { return d.f.Close() }
