package derived

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/field"
	"github.com/wehubfusion/Daedalus/pkg/registry"
)

func newHistory(t *testing.T) *registry.History {
	t.Helper()
	h := registry.NewHistory()
	for _, key := range []string{"VMS", "LOAD_RAMP"} {
		if err := h.Declare(key, key, field.FormatScientific, "G", field.KindPlain); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.SetValue("VMS", 120.0); err != nil {
		t.Fatal(err)
	}
	if err := h.SetValue("LOAD_RAMP", 0.5); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestEvaluator(t *testing.T) {
	t.Run("Expression over bound fields", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}

		err = e.AddField(hist, Field{
			Key:        "EFFECTIVE_VMS",
			Expression: "fields.VMS * fields.LOAD_RAMP",
		})
		if err != nil {
			t.Fatalf("AddField: %v", err)
		}
		if !hist.Has("EFFECTIVE_VMS") {
			t.Fatal("Derived field was not declared")
		}

		if err := e.Evaluate(hist); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}

		got, err := hist.Value("EFFECTIVE_VMS")
		if err != nil {
			t.Fatal(err)
		}
		if got != 60.0 {
			t.Errorf("Expected 60, got %v", got)
		}
	})

	t.Run("Re-evaluation sees refreshed values", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}
		if err := e.AddField(hist, Field{Key: "DOUBLED", Expression: "fields.VMS * 2"}); err != nil {
			t.Fatal(err)
		}

		if err := e.Evaluate(hist); err != nil {
			t.Fatal(err)
		}
		if err := hist.SetValue("VMS", 10.0); err != nil {
			t.Fatal(err)
		}
		if err := e.Evaluate(hist); err != nil {
			t.Fatal(err)
		}

		got, err := hist.Value("DOUBLED")
		if err != nil {
			t.Fatal(err)
		}
		if got != 20.0 {
			t.Errorf("Expected 20, got %v", got)
		}
	})

	t.Run("Compile failure is a setup error", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}

		err = e.AddField(hist, Field{Key: "BROKEN", Expression: "fields.VMS *"})
		if !errors.Is(err, sdkerrors.ErrExpression) {
			t.Errorf("Expected ErrExpression, got: %v", err)
		}
		if hist.Has("BROKEN") {
			t.Error("Failed compilation must not declare the field")
		}
	})

	t.Run("Duplicate key is rejected by the registry", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}

		err = e.AddField(hist, Field{Key: "VMS", Expression: "1"})
		if !errors.Is(err, sdkerrors.ErrDuplicateField) {
			t.Errorf("Expected ErrDuplicateField, got: %v", err)
		}
	})

	t.Run("Non-finite result is skipped", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}
		if err := e.AddField(hist, Field{Key: "BAD", Expression: "1 / 0"}); err != nil {
			t.Fatal(err)
		}

		if err := e.Evaluate(hist); err != nil {
			t.Fatal(err)
		}
		if _, err := hist.Value("BAD"); !errors.Is(err, sdkerrors.ErrNotBound) {
			t.Errorf("Expected ErrNotBound for non-finite result, got: %v", err)
		}
	})

	t.Run("Runaway expressions are each interrupted", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}
		e.timeout = 20 * time.Millisecond

		for _, key := range []string{"SPIN_A", "SPIN_B"} {
			if err := e.AddField(hist, Field{Key: key, Expression: "for(;;){}"}); err != nil {
				t.Fatal(err)
			}
		}
		if err := e.AddField(hist, Field{Key: "AFTER", Expression: "fields.VMS + 1"}); err != nil {
			t.Fatal(err)
		}

		done := make(chan error, 1)
		go func() { done <- e.Evaluate(hist) }()
		select {
		case err := <-done:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Evaluate did not return; a runaway expression was not interrupted")
		}

		for _, key := range []string{"SPIN_A", "SPIN_B"} {
			if _, err := hist.Value(key); !errors.Is(err, sdkerrors.ErrNotBound) {
				t.Errorf("Value(%s): expected ErrNotBound, got: %v", key, err)
			}
		}

		// Fields after the interrupted ones still evaluate
		got, err := hist.Value("AFTER")
		if err != nil {
			t.Fatal(err)
		}
		if got != 121.0 {
			t.Errorf("Expected 121, got %v", got)
		}
	})

	t.Run("Sandbox bars eval", func(t *testing.T) {
		hist := newHistory(t)
		e, err := NewEvaluator(zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}
		if err := e.AddField(hist, Field{Key: "EVIL", Expression: `eval("1+1")`}); err != nil {
			t.Fatal(err)
		}

		// Evaluation logs and skips; the field stays unbound
		if err := e.Evaluate(hist); err != nil {
			t.Fatal(err)
		}
		if _, err := hist.Value("EVIL"); !errors.Is(err, sdkerrors.ErrNotBound) {
			t.Errorf("Expected ErrNotBound, got: %v", err)
		}
	})
}
