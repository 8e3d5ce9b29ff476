package runlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLogAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)

	if err := l.Log(EventSessionStart, "", ""); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := l.Log(EventRestart, filepath.Join(dir, "src", "main.rs"), "modified"); err != nil {
		t.Fatalf("Log: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, ".stoker", "run.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad log line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventSessionStart {
		t.Errorf("first event = %s, want session_start", events[0].Type)
	}
	if events[1].Type != EventRestart || events[1].Context != "modified" {
		t.Errorf("second event = %+v", events[1])
	}
	if events[0].Session == "" || events[0].Session != events[1].Session {
		t.Error("events in one session should share a session id")
	}
}

func TestSessionIDsDiffer(t *testing.T) {
	dir := t.TempDir()
	if NewLogger(dir).Session() == NewLogger(dir).Session() {
		t.Error("separate loggers should get distinct session ids")
	}
}
