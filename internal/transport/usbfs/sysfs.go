//go:build linux

package usbfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	sysBusPath = "/sys/bus/usb/devices"
	devBusPath = "/dev/bus/usb"
)

// findDeviceNode resolves a /dev/bus/usb/BBB/DDD node for the given
// vendor/product by scanning sysfs device entries.
func findDeviceNode(sysBase, devBase string, vendorID, productID uint16) (string, error) {
	entries, err := os.ReadDir(sysBase)
	if err != nil {
		return "", fmt.Errorf("usbfs: scan %s: %w", sysBase, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		// Skip root hubs (usbN) and interface entries (1-1:1.0).
		if strings.HasPrefix(name, "usb") || strings.Contains(name, ":") {
			continue
		}
		dir := filepath.Join(sysBase, name)
		if !matchID(dir, "idVendor", vendorID) || !matchID(dir, "idProduct", productID) {
			continue
		}
		busNum, err := readDecimal(filepath.Join(dir, "busnum"))
		if err != nil {
			continue
		}
		devNum, err := readDecimal(filepath.Join(dir, "devnum"))
		if err != nil {
			continue
		}
		return filepath.Join(devBase, fmt.Sprintf("%03d", busNum), fmt.Sprintf("%03d", devNum)), nil
	}
	return "", fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vendorID, productID)
}

func matchID(dir, attr string, want uint16) bool {
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		return false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 16, 16)
	if err != nil {
		return false
	}
	return uint16(v) == want
}

func readDecimal(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
