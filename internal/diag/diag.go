//go:build linux

// Package diag inspects the host for the sensor and reports why it
// might be unreachable: missing device, missing node permissions,
// missing group membership. It never touches the protocol engine.
package diag

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

// Check is one diagnostic probe outcome.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report is the full probe result for one vendor/product pair.
type Report struct {
	Checks []Check
}

func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return len(r.Checks) > 0
}

func (r Report) Log(log zerolog.Logger) {
	for _, c := range r.Checks {
		event := log.Info()
		if !c.OK {
			event = log.Warn()
		}
		event.Str("check", c.Name).Bool("ok", c.OK).Msg(c.Detail)
	}
}

// Paths points the probes at the host filesystem; tests substitute
// temp directories.
type Paths struct {
	SysBusUSB string
	SysHidraw string
	DevHidraw string
}

func DefaultPaths() Paths {
	return Paths{
		SysBusUSB: "/sys/bus/usb/devices",
		SysHidraw: "/sys/class/hidraw",
		DevHidraw: "/dev",
	}
}

// Run probes the host for the given device.
func Run(paths Paths, vendorID, productID uint16) Report {
	var r Report
	r.Checks = append(r.Checks, checkUSBPresent(paths.SysBusUSB, vendorID, productID))
	r.Checks = append(r.Checks, checkHidrawNode(paths.SysHidraw, paths.DevHidraw, vendorID, productID))
	r.Checks = append(r.Checks, checkGroups())
	return r
}

func checkUSBPresent(base string, vendorID, productID uint16) Check {
	c := Check{Name: "usb_present"}
	entries, err := os.ReadDir(base)
	if err != nil {
		c.Detail = fmt.Sprintf("cannot scan %s: %v", base, err)
		return c
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "usb") || strings.Contains(name, ":") {
			continue
		}
		dir := filepath.Join(base, name)
		if readHex(filepath.Join(dir, "idVendor")) == vendorID &&
			readHex(filepath.Join(dir, "idProduct")) == productID {
			c.OK = true
			c.Detail = fmt.Sprintf("device %04x:%04x enumerated at %s", vendorID, productID, name)
			return c
		}
	}
	c.Detail = fmt.Sprintf("device %04x:%04x not on the bus", vendorID, productID)
	return c
}

func checkHidrawNode(sysBase, devBase string, vendorID, productID uint16) Check {
	c := Check{Name: "hidraw_node"}
	entries, err := os.ReadDir(sysBase)
	if err != nil {
		c.Detail = fmt.Sprintf("cannot scan %s: %v", sysBase, err)
		return c
	}
	want := fmt.Sprintf(":%08x:%08x", vendorID, productID)
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(sysBase, entry.Name(), "device", "uevent"))
		if err != nil {
			continue
		}
		if !strings.Contains(strings.ToLower(string(data)), strings.ToLower("HID_ID=0003"+want)) {
			continue
		}
		node := filepath.Join(devBase, entry.Name())
		if err := syscall.Access(node, 0x6); err != nil { // R_OK|W_OK
			c.Detail = fmt.Sprintf("%s exists but is not read/writable: %v (add a udev rule for %04x:%04x)",
				node, err, vendorID, productID)
			return c
		}
		c.OK = true
		c.Detail = fmt.Sprintf("%s accessible", node)
		return c
	}
	c.Detail = "no matching hidraw node (hidraw module missing or device unbound)"
	return c
}

func checkGroups() Check {
	c := Check{Name: "user_groups"}
	u, err := user.Current()
	if err != nil {
		c.Detail = fmt.Sprintf("cannot resolve current user: %v", err)
		return c
	}
	if u.Uid == "0" {
		c.OK = true
		c.Detail = "running as root"
		return c
	}
	ids, err := u.GroupIds()
	if err != nil {
		c.Detail = fmt.Sprintf("cannot list groups: %v", err)
		return c
	}
	for _, id := range ids {
		g, err := user.LookupGroupId(id)
		if err != nil {
			continue
		}
		if g.Name == "plugdev" || g.Name == "dialout" {
			c.OK = true
			c.Detail = fmt.Sprintf("user %s in group %s", u.Username, g.Name)
			return c
		}
	}
	c.Detail = fmt.Sprintf("user %s not in plugdev or dialout; device nodes may be unreadable", u.Username)
	return c
}

func readHex(path string) uint16 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var v uint16
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%x", &v); err != nil {
		return 0
	}
	return v
}
