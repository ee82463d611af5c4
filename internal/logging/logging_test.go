package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-tcp/internal/logging"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.FormatJSON, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("dropped")
	log.Warn().Str("component", "server").Msg("kept")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output %q: %v", buf.String(), err)
	}
	if rec["message"] != "kept" || rec["component"] != "server" || rec["level"] != "warn" {
		t.Fatalf("record = %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"ERROR": zerolog.ErrorLevel,
	}
	for in, want := range tests {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Error("unknown level accepted")
	}
	if _, err := logging.New(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestSetGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.FormatJSON, "trace")
	if err != nil {
		t.Fatal(err)
	}
	if err := logging.SetGlobalLevel("error"); err != nil {
		t.Fatal(err)
	}
	log.Warn().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("warn written at global error level: %q", buf.String())
	}
	if err := logging.SetGlobalLevel("debug"); err != nil {
		t.Fatal(err)
	}
	log.Debug().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("debug dropped at global debug level")
	}
	if err := logging.SetGlobalLevel("loud"); err == nil {
		t.Error("unknown level accepted")
	}
}
