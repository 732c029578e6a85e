//go:build linux

package usbfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDevice(t *testing.T, base, name, vendor, product, bus, dev string) {
	t.Helper()
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for attr, val := range map[string]string{
		"idVendor":  vendor,
		"idProduct": product,
		"busnum":    bus,
		"devnum":    dev,
	} {
		if err := os.WriteFile(filepath.Join(dir, attr), []byte(val+"\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", attr, err)
		}
	}
}

func TestFindDeviceNode(t *testing.T) {
	sys := t.TempDir()
	writeDevice(t, sys, "1-1", "046d", "c52b", "1", "4")
	writeDevice(t, sys, "1-2", "0483", "5750", "1", "7")
	// Interface and root hub entries must be skipped.
	writeDevice(t, sys, "1-2:1.0", "0483", "5750", "1", "7")
	if err := os.MkdirAll(filepath.Join(sys, "usb1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	node, err := findDeviceNode(sys, "/dev/bus/usb", 0x0483, 0x5750)
	if err != nil {
		t.Fatalf("findDeviceNode: %v", err)
	}
	if node != "/dev/bus/usb/001/007" {
		t.Fatalf("node: %s", node)
	}
}

func TestFindDeviceNodeMissing(t *testing.T) {
	sys := t.TempDir()
	writeDevice(t, sys, "1-1", "046d", "c52b", "1", "4")

	_, err := findDeviceNode(sys, "/dev/bus/usb", 0x0483, 0x5750)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}
