package protocol

import (
	"encoding/binary"
)

// RowSamples is the number of 16-bit samples carried by one row packet.
const RowSamples = 12

// sampleBase is the report offset of the first sample byte.
const sampleBase = 6

// minResponseLen is the smallest report the classifier accepts; the
// echo, data type and status/row bytes all live below this offset.
const minResponseLen = 6

// DecodedResponse is one classified inbound report.
type DecodedResponse struct {
	CommandEcho byte
	DataType    byte

	// Continue reports whether more packets are expected. When the
	// report does not resolve continuation, the prior value passed to
	// Classify is carried through unchanged.
	Continue bool

	// Channel is the active channel named by a get reply (1..4),
	// zero otherwise.
	Channel int

	// Row and Samples are populated for row packets only.
	HasRow  bool
	Row     int
	Samples []uint16
}

// IsRowType reports whether a data type carries row samples.
func IsRowType(dataType byte) bool {
	switch dataType {
	case 0x01, 0x02, 0x12, 0x22, 0x32:
		return true
	}
	return false
}

// Classify parses one inbound report with transport framing already
// stripped. prior is the continuation value carried over from the
// previous packet. order is the sample byte order configured for the
// active transport; it is never inferred from the data.
//
// ErrTruncatedResponse means the packet should be ignored, not that
// the capture should abort. ErrSensorTimeout is terminal for the
// capture in flight.
func Classify(report []byte, prior bool, order binary.ByteOrder) (DecodedResponse, error) {
	if len(report) < minResponseLen {
		return DecodedResponse{}, ErrTruncatedResponse
	}

	resp := DecodedResponse{
		CommandEcho: report[2],
		DataType:    report[4],
		Continue:    prior,
	}

	status := report[5]
	switch {
	case resp.CommandEcho == getReplyEcho && isGetReplyType(resp.DataType):
		resp.Channel = int(resp.DataType>>4) + 1
		if status == statusFrameEnd || status == statusSensorTO {
			resp.Continue = false
			if status == statusSensorTO {
				return resp, ErrSensorTimeout
			}
		} else {
			resp.Continue = true
		}
	case resp.DataType == 0x07, resp.DataType == 0x08, resp.DataType == 0x0B:
		resp.Continue = status != Backcode
	}

	// Row 0x0B doubles as the terminal marker and the last row index
	// of a 12x12 frame, so terminal packets still carry samples. Rows
	// beyond the frame dimension are discarded by the assembler.
	if IsRowType(resp.DataType) {
		resp.HasRow = true
		resp.Row = int(status)
		resp.Samples = decodeSamples(report, order)
	}
	return resp, nil
}

func isGetReplyType(dataType byte) bool {
	switch dataType {
	case 0x01, 0x02, 0x12, 0x22, 0x32, 0x03:
		return true
	}
	return false
}

// decodeSamples reads up to RowSamples 16-bit values starting at
// sampleBase, tolerating short packets the way the device tolerates
// them: missing trailing bytes simply shorten the row.
func decodeSamples(report []byte, order binary.ByteOrder) []uint16 {
	n := (len(report) - sampleBase) / 2
	if n > RowSamples {
		n = RowSamples
	}
	if n <= 0 {
		return nil
	}
	samples := make([]uint16, n)
	for i := 0; i < n; i++ {
		samples[i] = order.Uint16(report[sampleBase+2*i : sampleBase+2*i+2])
	}
	return samples
}
