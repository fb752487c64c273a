// Package debug formats program state for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxText limits how much of a text value is put into the tree, full
// markup of large sheets makes dumps unreadable.
const MaxText = 256

// TreeWriter builds indented text tree, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

// Line writes formatted line at depth.
func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Field writes "label: value" line.
func (tw TreeWriter) Field(depth int, label string, value any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, "%s: %v\n", label, value)
}

// Text writes quoted (and possibly shortened) text value. Empty values are
// written as is.
func (tw TreeWriter) Text(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value, MaxText))
	tw.w.WriteByte('\n')
}

func encodeText(raw string, limit int) string {
	if raw == "" {
		return raw
	}
	if limit <= 0 || len(raw) <= limit {
		return strconv.Quote(raw)
	}
	cut := limit
	// do not split multibyte sequence
	for cut > 0 && !isRuneStart(raw[cut]) {
		cut--
	}
	return strconv.Quote(raw[:cut]) + fmt.Sprintf("... (%d bytes)", len(raw))
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
