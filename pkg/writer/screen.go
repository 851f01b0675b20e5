// Package writer renders the current registry contents: Screen writes the
// console convergence table (header plus rows, gated by the caller) and
// History appends delimited records for the run history file. Both write to
// a plain io.Writer; opening and owning files is the caller's business.
package writer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/field"
	"github.com/wehubfusion/Daedalus/pkg/registry"
)

// columnWidth is the fixed width of one screen column
const columnWidth = 15

// Screen writes the console convergence table.
type Screen struct {
	w      io.Writer
	hist   *registry.History
	keys   []string
	banner string
}

// NewScreen creates a screen writer over the given history registry. The
// keys select and order the printed columns; nil means every declared field
// in declaration order. The banner, when non-empty, is printed above each
// header (multizone runs use the zone banner here).
func NewScreen(w io.Writer, hist *registry.History, keys []string, banner string) (*Screen, error) {
	if w == nil {
		return nil, errors.New("writer is required")
	}
	if hist == nil {
		return nil, errors.New("history registry is required")
	}
	if keys == nil {
		keys = hist.OrderedKeys("")
	}
	for _, key := range keys {
		if !hist.Has(key) {
			return nil, fmt.Errorf("screen column %q is not a declared field", key)
		}
	}
	return &Screen{w: w, hist: hist, keys: keys, banner: banner}, nil
}

// WriteHeader prints the banner and the column labels
func (s *Screen) WriteHeader() error {
	if s.banner != "" {
		if _, err := fmt.Fprintln(s.w, s.banner); err != nil {
			return err
		}
	}

	var b strings.Builder
	rule := strings.Repeat("-", (columnWidth+1)*len(s.keys)+1)
	b.WriteString(rule)
	b.WriteByte('\n')
	for _, key := range s.keys {
		schema, _ := s.hist.Schema(key)
		fmt.Fprintf(&b, "|%*s", columnWidth, schema.Label)
	}
	b.WriteString("|\n")
	b.WriteString(rule)
	b.WriteByte('\n')

	_, err := io.WriteString(s.w, b.String())
	return err
}

// WriteRow prints one row of current values, formatted per each field's
// declared format hint.
func (s *Screen) WriteRow() error {
	var b strings.Builder
	for _, key := range s.keys {
		value, err := s.hist.Value(key)
		if err != nil {
			return fmt.Errorf("screen row: %w", err)
		}
		schema, _ := s.hist.Schema(key)
		fmt.Fprintf(&b, "|%*s", columnWidth, formatValue(schema.Format, value))
	}
	b.WriteString("|\n")

	_, err := io.WriteString(s.w, b.String())
	return err
}

func formatValue(format field.Format, value float64) string {
	switch format {
	case field.FormatInteger:
		return fmt.Sprintf("%d", int64(value))
	case field.FormatScientific:
		return fmt.Sprintf("%.6e", value)
	default:
		return fmt.Sprintf("%.6f", value)
	}
}
