//go:build linux

// Package usbfs is the raw-USB bulk transport for the sensor, used
// where the hidraw kernel module is unavailable. It talks to
// /dev/bus/usb nodes directly through usbdevfs ioctls.
//
// Row samples arrive low-byte-first on this path, the opposite of the
// hidraw transport. Whether that reflects the device or a quirk of
// one stack is unresolved; both orders are preserved as configured
// transport properties.
package usbfs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
)

// Endpoint addresses fixed by the device descriptor.
const (
	epOut uint8 = 0x01
	epIn  uint8 = 0x81
)

const interfaceNumber int32 = 0

// writeTimeoutMS bounds outbound transfers; reads carry their own
// caller-supplied timeout.
const writeTimeoutMS = 1000

var ErrDeviceNotFound = errors.New("usbfs: device not found")

// Device is one claimed USB interface handle.
type Device struct {
	fd   int
	path string
	log  zerolog.Logger
}

// Open locates the device by vendor/product in sysfs, opens its
// usbfs node, detaches any bound kernel driver, and claims the
// interface.
func Open(vendorID, productID uint16, log zerolog.Logger) (*Device, error) {
	path, err := findDeviceNode(sysBusPath, devBusPath, vendorID, productID)
	if err != nil {
		return nil, err
	}

	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, syscall.EACCES) {
			return nil, fmt.Errorf("usbfs: open %s: %w (udev rule or elevated access required)", path, err)
		}
		return nil, fmt.Errorf("usbfs: open %s: %w", path, err)
	}

	if err := claimInterface(fd, interfaceNumber); err != nil {
		if errors.Is(err, syscall.EBUSY) {
			if derr := detachKernelDriver(fd, interfaceNumber); derr != nil && !errors.Is(derr, syscall.ENODATA) {
				syscall.Close(fd)
				return nil, fmt.Errorf("usbfs: detach kernel driver: %w", derr)
			}
			err = claimInterface(fd, interfaceNumber)
		}
		if err != nil {
			syscall.Close(fd)
			return nil, fmt.Errorf("usbfs: claim interface: %w", err)
		}
	}

	log.Debug().Str("node", path).Msg("usbfs device claimed")
	return &Device{fd: fd, path: path, log: log}, nil
}

// Write sends one report to the OUT endpoint. No framing byte is
// added on this path.
func (d *Device) Write(p []byte) (int, error) {
	n, err := doBulkTransfer(d.fd, epOut, p, writeTimeoutMS)
	if err != nil {
		return 0, fmt.Errorf("usbfs: write: %w", err)
	}
	return n, nil
}

// Read returns the next inbound report, or (nil, nil) when the
// timeout elapses without data.
func (d *Device) Read(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, protocol.ReportLen)
	n, err := doBulkTransfer(d.fd, epIn, buf, uint32(timeout.Milliseconds()))
	if errors.Is(err, syscall.ETIMEDOUT) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("usbfs: read: %w", err)
	}
	return buf[:n], nil
}

func (d *Device) SampleOrder() binary.ByteOrder { return binary.LittleEndian }

// Path is the usbfs node this handle is bound to.
func (d *Device) Path() string { return d.path }

func (d *Device) Close() error {
	if err := releaseInterface(d.fd, interfaceNumber); err != nil {
		d.log.Warn().Err(err).Msg("release interface failed")
	}
	return syscall.Close(d.fd)
}
