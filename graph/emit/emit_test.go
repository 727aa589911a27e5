package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(&buf, false)

	e.Emit(Event{
		RunID:  "run-1",
		Step:   2,
		NodeID: "draft",
		Msg:    "node completed",
		Meta:   map[string]interface{}{"duration_ms": int64(42)},
	})

	out := buf.String()
	for _, want := range []string{"[node completed]", "runID=run-1", "step=2", "nodeID=draft", "duration_ms=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(&buf, true)

	e.Emit(Event{RunID: "run-1", Step: 1, NodeID: "research", Msg: "node completed"})

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded["runID"] != "run-1" || decoded["msg"] != "node completed" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestBufferedEmitter(t *testing.T) {
	e := NewBufferedEmitter()
	e.Emit(Event{RunID: "run-1", Step: 1, NodeID: "a", Msg: "one"})
	e.Emit(Event{RunID: "run-1", Step: 2, NodeID: "b", Msg: "two"})
	e.Emit(Event{RunID: "run-2", Step: 1, NodeID: "a", Msg: "other"})

	events := e.History("run-1")
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Msg != "one" || events[1].Msg != "two" {
		t.Errorf("events out of order: %+v", events)
	}

	e.Clear("run-1")
	if len(e.History("run-1")) != 0 {
		t.Error("Clear should drop the run's events")
	}
	if len(e.History("run-2")) != 1 {
		t.Error("Clear must not touch other runs")
	}
}

func TestNullEmitter(t *testing.T) {
	NewNullEmitter().Emit(Event{RunID: "run-1"}) // must not panic
}

func TestZapEmitterNilLogger(t *testing.T) {
	NewZapEmitter(nil).Emit(Event{RunID: "run-1", Msg: "ok"}) // must not panic
}
