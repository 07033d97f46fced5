// Package fs provides file-based storage for extracted records.
package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/roster"
)

// File names inside the output directory.
const (
	RecordsFile = "records.jsonl"
	SummaryFile = "summary.json"
)

// Ensure Writer implements the sink interfaces at compile time.
var (
	_ roster.RecordWriter  = (*Writer)(nil)
	_ roster.SummaryWriter = (*Writer)(nil)
)

// Writer writes records as JSON lines with atomic update semantics.
// Records go to records.jsonl.tmp and are moved over records.jsonl on
// Commit, so an aborted run leaves the previous dataset in place.
type Writer struct {
	dir string

	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
}

// NewWriter creates a new Writer for the given output directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) tempPath() string {
	return filepath.Join(w.dir, RecordsFile+".tmp")
}

func (w *Writer) finalPath() string {
	return filepath.Join(w.dir, RecordsFile)
}

// Open creates the output directory and the temporary records file.
func (w *Writer) Open() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(w.tempPath())
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.f = f
	w.buf = bufio.NewWriter(f)
	w.enc = json.NewEncoder(w.buf)
	return nil
}

// WriteRecord appends rec as one JSON line.
func (w *Writer) WriteRecord(ctx context.Context, rec *roster.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return roster.Errorf(roster.EINTERNAL, "writer is not open")
	}
	return w.enc.Encode(rec)
}

// SaveSummary writes the run summary next to the records.
func (w *Writer) SaveSummary(ctx context.Context, s roster.Summary) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(w.dir, SummaryFile)
	if err := os.WriteFile(path+".tmp", append(b, '\n'), 0644); err != nil {
		return err
	}
	return os.Rename(path+".tmp", path)
}

// Commit flushes the records and moves them into place.
func (w *Writer) Commit() error {
	if err := w.close(); err != nil {
		return err
	}
	return os.Rename(w.tempPath(), w.finalPath())
}

// Abort discards the records written since Open.
func (w *Writer) Abort() error {
	if err := w.close(); err != nil {
		return err
	}
	return os.RemoveAll(w.tempPath())
}

func (w *Writer) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return roster.Errorf(roster.EINTERNAL, "writer is not open")
	}
	err := w.buf.Flush()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	w.f, w.buf, w.enc = nil, nil, nil
	return err
}
