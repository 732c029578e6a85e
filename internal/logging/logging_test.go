package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		got, ok := parseLevel(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseLevel(%q) = %v, %v", tc.raw, got, ok)
		}
	}
}

func TestNewProfiles(t *testing.T) {
	if lg := New("uls24ctl", ProfileRuntime); lg.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("runtime level: %v", lg.GetLevel())
	}
	if lg := New("uls24ctl", ProfileTest); lg.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("test level: %v", lg.GetLevel())
	}
}
