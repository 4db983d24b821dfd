// internal/recorder/csvfile/csvfile.go
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultName is the layout of the file name used when none is configured.
const DefaultName = "20060102-150405.csv"

// Config is the minimal config of a CSV log.
type Config struct {
	Path string // empty: DefaultName formatted with the open time
}

// Writer appends one line per sample. The header is written before the
// first line from the column names of that sample.
type Writer struct {
	mu     sync.Mutex
	path   string
	out    io.Closer
	csv    *csv.Writer
	header []string
	closed bool
}

// Open creates (or truncates) the log file.
func Open(cfg Config) (*Writer, error) {
	path := cfg.Path
	if path == "" {
		path = time.Now().Format(DefaultName)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: %w", err)
	}
	return newWriter(path, f), nil
}

func newWriter(path string, w io.WriteCloser) *Writer {
	return &Writer{path: path, out: w, csv: csv.NewWriter(w)}
}

func (w *Writer) Path() string { return w.path }

// Write appends one line: TIME then the cells. Every line is flushed.
func (w *Writer) Write(at time.Time, names, cells []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("csvfile: closed")
	}
	if len(names) != len(cells) {
		return fmt.Errorf("csvfile: %d names for %d cells", len(names), len(cells))
	}

	if w.header == nil {
		w.header = append([]string{}, names...)
		if err := w.csv.Write(append([]string{"TIME"}, names...)); err != nil {
			return err
		}
	} else if len(names) != len(w.header) {
		return fmt.Errorf("csvfile: column count changed from %d to %d", len(w.header), len(names))
	}

	if err := w.csv.Write(append([]string{at.Format("15:04:05")}, cells...)); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the file. Idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.csv.Flush()
	return errors.Join(w.csv.Error(), w.out.Close())
}
