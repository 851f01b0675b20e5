// Package derived adds user-defined history fields computed from already
// bound values. Each field is a JavaScript expression over the `fields`
// object (keyed by history field key), compiled once at declaration and
// evaluated in a sandboxed VM after every binding pass.
package derived

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/field"
	"github.com/wehubfusion/Daedalus/pkg/registry"
)

// DefaultGroup is the display group assigned to derived fields that do not
// name their own.
const DefaultGroup = "CUSTOM"

// defaultTimeout bounds a single expression evaluation. Expressions are
// expected to be tiny arithmetic; anything hitting this limit is broken.
const defaultTimeout = 100 * time.Millisecond

// Field declares one derived history field.
type Field struct {
	// Key is the history key the result is bound under
	Key string

	// Label is the column header label
	Label string

	// Group is the display group; empty means DefaultGroup
	Group string

	// Expression is a JavaScript expression over the global `fields`
	// object, e.g. "fields.VMS * fields.LOAD_RAMP"
	Expression string
}

type compiledField struct {
	key     string
	program *goja.Program
}

// Evaluator compiles and evaluates derived fields against a history
// registry. It owns a single sandboxed VM; evaluation is synchronous and
// single-threaded like the rest of the scalar binding pass.
type Evaluator struct {
	vm      *goja.Runtime
	fields  []compiledField
	timeout time.Duration
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator with a sandboxed VM
func NewEvaluator(logger *zap.Logger) (*Evaluator, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	vm := goja.New()
	if err := applySandbox(vm); err != nil {
		return nil, fmt.Errorf("failed to sandbox VM: %w", err)
	}

	return &Evaluator{
		vm:      vm,
		timeout: defaultTimeout,
		logger:  logger,
	}, nil
}

// AddField compiles the expression and declares the field into the history
// registry. Compilation failures and duplicate keys are setup errors.
func (e *Evaluator) AddField(hist *registry.History, f Field) error {
	if hist == nil {
		return errors.New("history registry is required")
	}
	if f.Key == "" || f.Expression == "" {
		return fmt.Errorf("derived field needs a key and an expression: %w", sdkerrors.ErrExpression)
	}

	program, err := goja.Compile(f.Key, f.Expression, true)
	if err != nil {
		return fmt.Errorf("derived field %q: compile failed (%v): %w", f.Key, err, sdkerrors.ErrExpression)
	}

	group := f.Group
	if group == "" {
		group = DefaultGroup
	}
	label := f.Label
	if label == "" {
		label = f.Key
	}
	if err := hist.Declare(f.Key, label, field.FormatScientific, group, field.KindPlain); err != nil {
		return err
	}

	e.fields = append(e.fields, compiledField{key: f.Key, program: program})
	return nil
}

// Evaluate runs every compiled expression against the current bound values
// and binds the results. A failing expression is logged and skipped; the
// remaining fields still evaluate.
func (e *Evaluator) Evaluate(hist *registry.History) error {
	if hist == nil {
		return errors.New("history registry is required")
	}
	if len(e.fields) == 0 {
		return nil
	}

	if err := e.vm.Set("fields", hist.Values()); err != nil {
		return fmt.Errorf("failed to inject field values: %w", err)
	}

	for _, cf := range e.fields {
		value, err := e.runBounded(cf.program)
		if err != nil {
			e.logger.Warn("derived field evaluation failed",
				zap.String("key", cf.key),
				zap.Error(err))
			continue
		}

		result := value.ToFloat()
		if math.IsNaN(result) || math.IsInf(result, 0) {
			e.logger.Warn("derived field produced a non-finite value",
				zap.String("key", cf.key),
				zap.Float64("value", result))
			continue
		}

		if err := hist.SetValue(cf.key, result); err != nil {
			e.logger.Warn("derived field bind failed",
				zap.String("key", cf.key),
				zap.Error(err))
		}
	}
	return nil
}

// runBounded runs one compiled expression under the evaluation timeout. The
// timer is armed per program and the interrupt cleared afterwards, so one
// runaway expression cannot consume the timeout of the next or leave a stale
// interrupt behind.
func (e *Evaluator) runBounded(program *goja.Program) (goja.Value, error) {
	timer := time.AfterFunc(e.timeout, func() {
		e.vm.Interrupt("expression timed out")
	})
	value, err := e.vm.RunProgram(program)
	timer.Stop()
	e.vm.ClearInterrupt()
	return value, err
}

// Len returns the number of registered derived fields
func (e *Evaluator) Len() int {
	return len(e.fields)
}
