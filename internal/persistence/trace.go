package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/market-sim/internal/engine"
)

// TraceLine is one JSONL record of a trace file.
type TraceLine struct {
	Kind  string           `json:"kind"` // "event" or "tick"
	Event *engine.Event    `json:"event,omitempty"`
	Tick  *engine.Snapshot `json:"tick,omitempty"`
}

// Trace writes session events and tick snapshots as zstd-compressed JSONL.
type Trace struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// CreateTrace creates (or truncates) a trace file, making parent directories.
func CreateTrace(path string) (*Trace, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Trace{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// Path returns the trace file path.
func (t *Trace) Path() string { return t.path }

// RecordEvent appends an event line.
func (t *Trace) RecordEvent(e engine.Event) error {
	return t.write(TraceLine{Kind: "event", Event: &e})
}

// RecordTick appends a tick snapshot line.
func (t *Trace) RecordTick(s engine.Snapshot) error {
	return t.write(TraceLine{Kind: "tick", Tick: &s})
}

func (t *Trace) write(line TraceLine) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.w == nil {
		return fmt.Errorf("trace %s: closed", t.path)
	}
	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return err
	}
	return t.w.Flush()
}

// Close flushes and closes the trace. Closing twice is a no-op.
func (t *Trace) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.w == nil {
		return nil
	}
	var err error
	if ferr := t.w.Flush(); ferr != nil {
		err = ferr
	}
	if cerr := t.enc.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := t.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	t.w, t.enc, t.f = nil, nil, nil
	return err
}

// ReadTrace decodes every line of a closed trace file.
func ReadTrace(path string) ([]TraceLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var lines []TraceLine
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var line TraceLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("trace %s line %d: %w", path, len(lines)+1, err)
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
