package frame

import (
	"testing"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
)

func rowResponse(dataType byte, row int, samples ...uint16) protocol.DecodedResponse {
	return protocol.DecodedResponse{
		CommandEcho: 0x02,
		DataType:    dataType,
		Continue:    true,
		HasRow:      true,
		Row:         row,
		Samples:     samples,
	}
}

func TestConsumeRow12(t *testing.T) {
	a := NewAssembler()
	a.ConsumeRow(rowResponse(0x01, 0, 5, 1023, 7))

	fr := a.Frame()
	if fr == nil {
		t.Fatalf("expected frame after first row")
	}
	if fr.Dim != Dim12 {
		t.Fatalf("dimension: %d", fr.Dim)
	}
	if fr.Grid[0][0] != 5 || fr.Grid[0][1] != 1023 || fr.Grid[0][2] != 7 {
		t.Fatalf("row 0: %v", fr.Grid[0])
	}
}

func TestConsumeRowQuadrantColumns(t *testing.T) {
	cases := []struct {
		dataType byte
		colBase  int
	}{
		{0x02, 0},
		{0x12, 12},
		{0x22, 0},
		{0x32, 12},
	}
	for _, tc := range cases {
		a := NewAssembler()
		samples := make([]uint16, 12)
		for i := range samples {
			samples[i] = uint16(100 + i)
		}
		a.ConsumeRow(rowResponse(tc.dataType, 7, samples...))

		fr := a.Frame()
		if fr.Dim != Dim24 {
			t.Fatalf("type %#02x: dimension %d", tc.dataType, fr.Dim)
		}
		for i := range samples {
			if fr.Grid[7][tc.colBase+i] != samples[i] {
				t.Fatalf("type %#02x: col %d got %d", tc.dataType, tc.colBase+i, fr.Grid[7][tc.colBase+i])
			}
		}
		// The complementary half of the row stays untouched.
		other := (tc.colBase + 12) % 24
		for i := 0; i < 12; i++ {
			if fr.Grid[7][other+i] != 0 {
				t.Fatalf("type %#02x: unexpected write at col %d", tc.dataType, other+i)
			}
		}
	}
}

func TestConsumeRowCompositePair(t *testing.T) {
	// Two packets for the same row from complementary quadrants fill
	// the full 24-wide row.
	a := NewAssembler()
	left := make([]uint16, 12)
	right := make([]uint16, 12)
	for i := 0; i < 12; i++ {
		left[i] = uint16(i + 1)
		right[i] = uint16(i + 13)
	}
	a.ConsumeRow(rowResponse(0x02, 3, left...))
	a.ConsumeRow(rowResponse(0x12, 3, right...))

	fr := a.Frame()
	for i := 0; i < 24; i++ {
		if fr.Grid[3][i] != uint16(i+1) {
			t.Fatalf("col %d: %d", i, fr.Grid[3][i])
		}
	}
}

func TestConsumeRowOutOfRangeIgnored(t *testing.T) {
	a := NewAssembler()
	a.ConsumeRow(rowResponse(0x01, 0, 9))
	before := snapshot(a.Frame())

	a.ConsumeRow(rowResponse(0x01, 12, 1, 2, 3))
	a.ConsumeRow(rowResponse(0x01, 200, 4, 5, 6))

	if !equal(before, snapshot(a.Frame())) {
		t.Fatalf("out-of-range row mutated the grid")
	}
}

func TestConsumeRowIdempotent(t *testing.T) {
	resp := rowResponse(0x01, 4, 11, 22, 33)

	a := NewAssembler()
	a.ConsumeRow(resp)
	once := snapshot(a.Frame())

	a.ConsumeRow(resp)
	if !equal(once, snapshot(a.Frame())) {
		t.Fatalf("repeated row changed the grid")
	}
}

func TestConsumeRowDimensionPinned(t *testing.T) {
	a := NewAssembler()
	a.ConsumeRow(rowResponse(0x01, 0, 1))
	a.ConsumeRow(rowResponse(0x12, 0, 99))

	fr := a.Frame()
	if fr.Dim != Dim12 {
		t.Fatalf("dimension changed mid-capture: %d", fr.Dim)
	}
	if fr.Grid[0][0] != 1 {
		t.Fatalf("row 0: %v", fr.Grid[0])
	}
}

func TestConsumeRowWithoutRowIsNoop(t *testing.T) {
	a := NewAssembler()
	a.ConsumeRow(protocol.DecodedResponse{DataType: 0x01, Continue: true})
	if a.Frame() != nil {
		t.Fatalf("no-row response allocated a frame")
	}
}

func TestRows(t *testing.T) {
	a := NewAssembler()
	a.ConsumeRow(rowResponse(0x01, 1, 42))
	rows := a.Frame().Rows()
	if len(rows) != Dim12 || len(rows[0]) != Dim12 {
		t.Fatalf("rows shape: %dx%d", len(rows), len(rows[0]))
	}
	if rows[1][0] != 42 {
		t.Fatalf("rows value: %d", rows[1][0])
	}
}

func snapshot(s *Sensor) [][]uint16 {
	out := make([][]uint16, s.Dim)
	for i := range out {
		out[i] = append([]uint16(nil), s.Grid[i]...)
	}
	return out
}

func equal(a, b [][]uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
