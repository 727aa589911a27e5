package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter writes events to a writer in either a human-readable
// key=value format or machine-readable JSON (one event per line).
//
// Example text output:
//
//	[node completed] runID=run-001 step=2 nodeID=outline
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter. A nil writer defaults to stdout;
// jsonMode selects JSON lines instead of text.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

// Emit writes the event to the configured writer. Write failures are
// silently dropped; observability must never break the workflow.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		line, err := json.Marshal(map[string]interface{}{
			"runID":  event.RunID,
			"step":   event.Step,
			"nodeID": event.NodeID,
			"msg":    event.Msg,
			"meta":   event.Meta,
		})
		if err != nil {
			return
		}
		_, _ = fmt.Fprintf(l.writer, "%s\n", line)
		return
	}

	_, _ = fmt.Fprintf(l.writer, "[%s] runID=%s step=%d nodeID=%s", event.Msg, event.RunID, event.Step, event.NodeID)
	for k, v := range event.Meta {
		_, _ = fmt.Fprintf(l.writer, " %s=%v", k, v)
	}
	_, _ = fmt.Fprintln(l.writer)
}
