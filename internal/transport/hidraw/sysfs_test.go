//go:build linux

package hidraw

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeUevent(t *testing.T, base, node, hidID string) {
	t.Helper()
	dir := filepath.Join(base, node, "device")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "DRIVER=hid-generic\nHID_ID=" + hidID + "\nHID_NAME=ULS24\n"
	if err := os.WriteFile(filepath.Join(dir, "uevent"), []byte(body), 0o644); err != nil {
		t.Fatalf("write uevent: %v", err)
	}
}

func TestFindNode(t *testing.T) {
	base := t.TempDir()
	writeUevent(t, base, "hidraw0", "0003:0000046D:0000C52B")
	writeUevent(t, base, "hidraw1", "0003:00000483:00005750")

	node, err := findNode(base, 0x0483, 0x5750)
	if err != nil {
		t.Fatalf("findNode: %v", err)
	}
	if node != "/dev/hidraw1" {
		t.Fatalf("node: %s", node)
	}
}

func TestFindNodeMissing(t *testing.T) {
	base := t.TempDir()
	writeUevent(t, base, "hidraw0", "0003:0000046D:0000C52B")

	_, err := findNode(base, 0x0483, 0x5750)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestParseHidID(t *testing.T) {
	vid, pid, ok := parseHidID("HID_PHYS=usb-0000:00:14.0-2/input0\nHID_ID=0003:00000483:00005750\n")
	if !ok || vid != 0x0483 || pid != 0x5750 {
		t.Fatalf("parse: %04x %04x %v", vid, pid, ok)
	}
	if _, _, ok := parseHidID("HID_ID=bogus"); ok {
		t.Fatalf("malformed id accepted")
	}
	if _, _, ok := parseHidID("DRIVER=hid-generic\n"); ok {
		t.Fatalf("missing id accepted")
	}
}
