package results

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"flight-loadgen/internal/models"
)

var logHeader = []string{"concurrency", "mean_latency"}

// Appender persists run summaries
type Appender interface {
	Append(ctx context.Context, runID string, summary models.RunSummary) error
}

// AppenderFunc adapts a function to Appender
type AppenderFunc func(ctx context.Context, runID string, summary models.RunSummary) error

func (f AppenderFunc) Append(ctx context.Context, runID string, summary models.RunSummary) error {
	return f(ctx, runID, summary)
}

// Appenders fans one summary out to several destinations. Every destination
// is attempted and the failures are joined.
type Appenders []Appender

func (a Appenders) Append(ctx context.Context, runID string, summary models.RunSummary) error {
	var errs []error
	for _, app := range a {
		if err := app.Append(ctx, runID, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log is an append-only CSV results file with one row per run. The header is
// written only by whoever creates the file.
type Log struct {
	path string
	mu   sync.Mutex
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string {
	return l.path
}

// Append writes one row. A new file is populated under a temporary name and
// hard-linked into place, so no reader or writer ever sees it without its
// header. Rows for an existing file go out in a single write on an O_APPEND
// descriptor, so concurrent writers never interleave within a line.
func (l *Log) Append(ctx context.Context, runID string, summary models.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row, err := encodeRows([]string{
		strconv.Itoa(summary.Concurrency),
		strconv.FormatFloat(summary.MeanLatency.Seconds(), 'f', -1, 64),
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		err := l.create(row)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return l.appendRow(row)
}

func (l *Log) create(row []byte) error {
	header, err := encodeRows(logHeader)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), "."+filepath.Base(l.path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(header, row...)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Link(tmp.Name(), l.path)
}

func (l *Log) appendRow(row []byte) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(row); err != nil {
		return err
	}
	return f.Sync()
}

func encodeRows(rows ...[]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
