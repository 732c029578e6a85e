//go:build linux

package hidraw

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// findNode resolves a /dev/hidrawN path for the given vendor/product
// by walking /sys/class/hidraw. Each class entry exposes its parent
// HID device's uevent with a HID_ID=bus:vendor:product line.
func findNode(base string, vendorID, productID uint16) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("hidraw: scan %s: %w", base, err)
	}
	for _, entry := range entries {
		uevent := filepath.Join(base, entry.Name(), "device", "uevent")
		data, err := os.ReadFile(uevent)
		if err != nil {
			continue
		}
		vid, pid, ok := parseHidID(string(data))
		if !ok {
			continue
		}
		if vid == vendorID && pid == productID {
			return filepath.Join("/dev", entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vendorID, productID)
}

// parseHidID extracts vendor and product from a HID uevent body,
// e.g. "HID_ID=0003:00000483:00005750".
func parseHidID(uevent string) (vendorID, productID uint16, ok bool) {
	for _, line := range strings.Split(uevent, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "HID_ID=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(line, "HID_ID="), ":")
		if len(parts) != 3 {
			return 0, 0, false
		}
		vid, err := strconv.ParseUint(parts[1], 16, 32)
		if err != nil {
			return 0, 0, false
		}
		pid, err := strconv.ParseUint(parts[2], 16, 32)
		if err != nil {
			return 0, 0, false
		}
		return uint16(vid), uint16(pid), true
	}
	return 0, 0, false
}
