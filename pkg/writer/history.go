package writer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/field"
	"github.com/wehubfusion/Daedalus/pkg/registry"
)

// History appends delimited records to the run history stream. The header
// row of quoted labels is written once, before the first record.
type History struct {
	w             io.Writer
	hist          *registry.History
	keys          []string
	headerWritten bool
}

// NewHistory creates a history-record writer over every declared field in
// declaration order.
func NewHistory(w io.Writer, hist *registry.History) (*History, error) {
	if w == nil {
		return nil, errors.New("writer is required")
	}
	if hist == nil {
		return nil, errors.New("history registry is required")
	}
	return &History{w: w, hist: hist, keys: hist.OrderedKeys("")}, nil
}

// WriteRecord appends one record of current values. The first call also
// writes the label header.
func (h *History) WriteRecord() error {
	if !h.headerWritten {
		if err := h.writeHeader(); err != nil {
			return err
		}
		h.headerWritten = true
	}

	var b strings.Builder
	for i, key := range h.keys {
		value, err := h.hist.Value(key)
		if err != nil {
			return fmt.Errorf("history record: %w", err)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		schema, _ := h.hist.Schema(key)
		if schema.Format == field.FormatInteger {
			fmt.Fprintf(&b, "%d", int64(value))
		} else {
			fmt.Fprintf(&b, "%17.10e", value)
		}
	}
	b.WriteByte('\n')

	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *History) writeHeader() error {
	var b strings.Builder
	for i, key := range h.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		schema, _ := h.hist.Schema(key)
		fmt.Fprintf(&b, "%q", schema.Label)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(h.w, b.String())
	return err
}
