package publish

import (
	"encoding/json"
	"testing"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/frame"
)

func TestFramePayloadShape(t *testing.T) {
	fr := frame.NewSensor(frame.Dim12)
	fr.Channel = 3
	fr.GainMode = 1
	fr.IntegrationTimeMS = 30
	fr.Grid[0][0] = 5
	fr.Grid[11][11] = 4095

	raw, err := json.Marshal(framePayload{
		Channel:           fr.Channel,
		Dim:               fr.Dim,
		GainMode:          fr.GainMode,
		IntegrationTimeMS: fr.IntegrationTimeMS,
		CapturedAt:        "2026-01-02T03:04:05Z",
		Rows:              fr.Rows(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		Channel           int     `json:"channel"`
		Dim               int     `json:"dim"`
		GainMode          int     `json:"gain_mode"`
		IntegrationTimeMS int     `json:"integration_time_ms"`
		CapturedAt        string  `json:"captured_at"`
		Rows              [][]int `json:"rows"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Channel != 3 || got.Dim != 12 || got.GainMode != 1 || got.IntegrationTimeMS != 30 {
		t.Fatalf("metadata mismatch: %+v", got)
	}
	if len(got.Rows) != 12 || len(got.Rows[0]) != 12 {
		t.Fatalf("rows shape = %dx%d, want 12x12", len(got.Rows), len(got.Rows[0]))
	}
	if got.Rows[0][0] != 5 || got.Rows[11][11] != 4095 {
		t.Fatalf("sample values lost: %d %d", got.Rows[0][0], got.Rows[11][11])
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Broker == "" || cfg.Topic == "" || cfg.Timeout <= 0 {
		t.Fatalf("incomplete defaults: %+v", cfg)
	}
}
