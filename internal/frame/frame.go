// Package frame owns the assembled sensor image.
//
// Ownership boundary:
// - SensorFrame value type and its metadata
// - row-by-row assembly with quadrant geometry
package frame

import (
	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
)

// Frame dimensions. The device reports either a single 12x12 channel
// or a 24x24 composite built from four 12x12 quadrants.
const (
	Dim12 = 12
	Dim24 = 24
)

// Sensor is one assembled frame. It is mutated row-by-row during a
// capture and treated as immutable once the capture reaches a
// terminal state; each capture returns a freshly owned value.
type Sensor struct {
	Dim  int
	Grid [][]uint16

	// Capture metadata, stamped by the session.
	Channel           int
	GainMode          int
	IntegrationTimeMS int
}

// NewSensor allocates a zeroed dim x dim frame.
func NewSensor(dim int) *Sensor {
	grid := make([][]uint16, dim)
	for i := range grid {
		grid[i] = make([]uint16, dim)
	}
	return &Sensor{Dim: dim, Grid: grid}
}

// Rows returns the grid as plain int rows, for export and JSON.
func (s *Sensor) Rows() [][]int {
	rows := make([][]int, s.Dim)
	for i := 0; i < s.Dim; i++ {
		row := make([]int, s.Dim)
		for j := 0; j < s.Dim; j++ {
			row[j] = int(s.Grid[i][j])
		}
		rows[i] = row
	}
	return rows
}

// Assembler writes decoded row packets into an in-progress frame.
// The frame dimension is fixed by the first decoded row and never
// changes for the remainder of the capture.
type Assembler struct {
	frame *Sensor
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Frame returns the in-progress frame, nil before the first row.
func (a *Assembler) Frame() *Sensor {
	return a.frame
}

// ConsumeRow maps one decoded row into the grid. Out-of-range rows
// are dropped silently; devices emit stray trailing packets past the
// last row and those must not fail the capture. Consuming the same
// row twice is a no-op for the grid state.
func (a *Assembler) ConsumeRow(resp protocol.DecodedResponse) {
	if !resp.HasRow {
		return
	}

	dim, colBase, ok := geometry(resp.DataType)
	if !ok {
		return
	}
	if a.frame == nil {
		a.frame = NewSensor(dim)
	}
	if dim != a.frame.Dim {
		// Dimension is pinned by the first row of the capture.
		return
	}
	if resp.Row < 0 || resp.Row >= a.frame.Dim {
		return
	}

	row := a.frame.Grid[resp.Row]
	for i, sample := range resp.Samples {
		if i >= protocol.RowSamples || colBase+i >= a.frame.Dim {
			break
		}
		row[colBase+i] = sample
	}
}

// geometry resolves a row data type to the frame dimension and the
// column base of its 12-sample half-row. Quadrants 0 and 2 fill
// columns [0,12), quadrants 1 and 3 fill [12,24).
func geometry(dataType byte) (dim, colBase int, ok bool) {
	switch dataType {
	case 0x01:
		return Dim12, 0, true
	case 0x02, 0x12, 0x22, 0x32:
		quad := int(dataType >> 4)
		colBase = 0
		if quad&1 == 1 {
			colBase = Dim12
		}
		return Dim24, colBase, true
	}
	return 0, 0, false
}
