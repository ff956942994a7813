// Package output provides formatting utilities for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, unknown command, auth required
	ExitSystemError = 2 // network failure, IO error, API error
)

// Format represents an output format.
type Format int

const (
	// FormatText is plain text output.
	FormatText Format = iota
	// FormatJSON is JSON output.
	FormatJSON
)

// Writer handles formatted output to a destination.
type Writer struct {
	dest   io.Writer
	format Format
}

// NewWriter creates an output writer for stdout with the given format.
func NewWriter(format Format) *Writer {
	return &Writer{dest: os.Stdout, format: format}
}

// NewWriterTo creates an output writer for an explicit destination.
func NewWriterTo(dest io.Writer, format Format) *Writer {
	return &Writer{dest: dest, format: format}
}

// JSON reports whether the writer is in JSON mode.
func (w *Writer) JSON() bool { return w.format == FormatJSON }

// WriteJSON encodes a value as pretty-printed JSON.
func (w *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(w.dest)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteText writes plain text.
func (w *Writer) WriteText(s string) error {
	_, err := fmt.Fprint(w.dest, s)
	return err
}

// WriteLn writes a line of text.
func (w *Writer) WriteLn(s string) error {
	_, err := fmt.Fprintln(w.dest, s)
	return err
}

// WriteError writes an error message to stderr.
func WriteError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s "+format+"\n",
		append([]any{color.New(color.FgRed).Sprint("Error:")}, args...)...)
}

// Success writes a green confirmation line to stdout.
func Success(format string, args ...any) {
	fmt.Printf("%s "+format+"\n",
		append([]any{color.New(color.FgGreen).Sprint("✓")}, args...)...)
}
