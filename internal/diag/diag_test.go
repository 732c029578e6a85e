//go:build linux

package diag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckUSBPresent(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "1-3")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "idVendor"), []byte("0483\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "idProduct"), []byte("5750\n"), 0o644)

	if c := checkUSBPresent(base, 0x0483, 0x5750); !c.OK {
		t.Fatalf("expected device present: %s", c.Detail)
	}
	if c := checkUSBPresent(base, 0x0483, 0x5751); c.OK {
		t.Fatalf("unexpected match: %s", c.Detail)
	}
}

func TestCheckHidrawNode(t *testing.T) {
	sys := t.TempDir()
	dev := t.TempDir()

	dir := filepath.Join(sys, "hidraw2", "device")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "uevent"), []byte("HID_ID=0003:00000483:00005750\n"), 0o644)
	os.WriteFile(filepath.Join(dev, "hidraw2"), nil, 0o666)

	c := checkHidrawNode(sys, dev, 0x0483, 0x5750)
	if !c.OK {
		t.Fatalf("expected accessible node: %s", c.Detail)
	}
	if !strings.Contains(c.Detail, "hidraw2") {
		t.Fatalf("detail: %s", c.Detail)
	}

	if c := checkHidrawNode(sys, dev, 0x0483, 0x9999); c.OK {
		t.Fatalf("unexpected match: %s", c.Detail)
	}
}

func TestReportHealthy(t *testing.T) {
	if (Report{}).Healthy() {
		t.Fatalf("empty report must not be healthy")
	}
	r := Report{Checks: []Check{{Name: "a", OK: true}, {Name: "b", OK: false}}}
	if r.Healthy() {
		t.Fatalf("failing check must fail the report")
	}
	r.Checks[1].OK = true
	if !r.Healthy() {
		t.Fatalf("all-ok report must be healthy")
	}
}
