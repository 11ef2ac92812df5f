// Package sink reports transfer progress and diagnostics. It mirrors the
// teacher's Applier io.Writer-based printf/println helpers rather than
// reaching for a structured-logging library (see DESIGN.md).
package sink

import (
	"fmt"
	"io"
)

// Sink receives progress and diagnostic events during one transfer run.
type Sink interface {
	TableStarted(table string, kind string)
	ChunkCommitted(table string, rows int64, totalRows int64)
	TableDone(table string, totalRows int64)
	Warning(msg string)
	Error(err error)
}

// console is the default Sink, writing one line of text per event to an
// underlying io.Writer (stdout, or the -l log file opened by the CLI).
type console struct {
	w io.Writer
}

// NewConsole constructs the default text Sink.
func NewConsole(w io.Writer) Sink {
	return &console{w: w}
}

func (c *console) TableStarted(table, kind string) {
	fmt.Fprintf(c.w, "==> %s %s: starting transfer\n", kind, table)
}

func (c *console) ChunkCommitted(table string, rows, totalRows int64) {
	fmt.Fprintf(c.w, "    %s: committed %d rows (%d total)\n", table, rows, totalRows)
}

func (c *console) TableDone(table string, totalRows int64) {
	fmt.Fprintf(c.w, "==> %s: done, %d rows transferred\n", table, totalRows)
}

func (c *console) Warning(msg string) {
	fmt.Fprintf(c.w, "WARNING: %s\n", msg)
}

func (c *console) Error(err error) {
	fmt.Fprintf(c.w, "ERROR: %v\n", err)
}

// quiet decorates another Sink, suppressing every event but Error, for -q.
type quiet struct {
	inner Sink
}

// NewQuiet wraps inner so only Error events pass through.
func NewQuiet(inner Sink) Sink {
	return &quiet{inner: inner}
}

func (q *quiet) TableStarted(string, string)         {}
func (q *quiet) ChunkCommitted(string, int64, int64) {}
func (q *quiet) TableDone(string, int64)             {}
func (q *quiet) Warning(string)                      {}
func (q *quiet) Error(err error)                     { q.inner.Error(err) }
