package capture

import (
	"encoding/binary"
	"time"
)

// Transport is one open device handle. Implementations strip their
// own framing byte (HID report ID) before handing reports up, and
// own all blocking behavior; Read returns (nil, nil) when no packet
// arrived inside the timeout window.
//
// The protocol carries no request identifier, so responses cannot be
// correlated across outstanding requests: callers serialize all
// traffic per handle.
type Transport interface {
	Write(p []byte) (int, error)
	Read(timeout time.Duration) ([]byte, error)

	// SampleOrder is the byte order of row samples on this transport.
	// The HID and raw-USB paths disagree here for nominally the same
	// device; the order is configured per transport, never detected
	// from the data.
	SampleOrder() binary.ByteOrder

	Close() error
}
