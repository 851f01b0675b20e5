package writer

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistoryWriteRecord(t *testing.T) {
	t.Run("Header is written once before the first record", func(t *testing.T) {
		hist := newTestHistory(t)
		bindAll(t, hist)
		var buf bytes.Buffer
		h, err := NewHistory(&buf, hist)
		if err != nil {
			t.Fatal(err)
		}

		if err := h.WriteRecord(); err != nil {
			t.Fatal(err)
		}
		if err := h.WriteRecord(); err != nil {
			t.Fatal(err)
		}

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("Expected header plus 2 records, got %d lines", len(lines))
		}
		if lines[0] != `"Inner_Iter", "rms[DispX]", "VonMises_Stress"` {
			t.Errorf("Unexpected header: %q", lines[0])
		}
		if strings.Count(buf.String(), "Inner_Iter") != 1 {
			t.Error("Header was written more than once")
		}
	})

	t.Run("Integer fields print without an exponent", func(t *testing.T) {
		hist := newTestHistory(t)
		bindAll(t, hist)
		var buf bytes.Buffer
		h, err := NewHistory(&buf, hist)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.WriteRecord(); err != nil {
			t.Fatal(err)
		}

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		record := strings.Split(lines[1], ", ")
		if len(record) != 3 {
			t.Fatalf("Expected 3 cells, got %d: %q", len(record), lines[1])
		}
		if record[0] != "7" {
			t.Errorf("Expected integer cell 7, got %q", record[0])
		}
		for _, cell := range record[1:] {
			if !strings.Contains(cell, "e+") && !strings.Contains(cell, "e-") {
				t.Errorf("Expected scientific cell, got %q", cell)
			}
		}
	})

	t.Run("Unbound field fails the record", func(t *testing.T) {
		hist := newTestHistory(t)
		var buf bytes.Buffer
		h, err := NewHistory(&buf, hist)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.WriteRecord(); err == nil {
			t.Error("Expected error for unbound field")
		}
	})
}
