// Package registry implements the two output field registries of the
// library: History holds one scalar value per run-state snapshot, Volume
// holds one value per spatial point. Both follow a strict declare-then-bind
// discipline: every key is declared exactly once with its schema metadata,
// and values may only be bound under declared keys. Declaration order is
// preserved and defines the display order used by writers.
//
// Registries are not safe for concurrent mutation. The one sanctioned
// parallelism is per-point volume binding, where distinct point indices
// address disjoint storage slots.
package registry

import (
	"fmt"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/field"
)

// History is the scalar-domain registry: one current value per declared key.
// Values are overwritten in place on every binding pass; the registry keeps
// no history of past values.
type History struct {
	schemas []field.Schema
	index   map[string]int
	values  map[string]float64
}

// NewHistory creates an empty history registry
func NewHistory() *History {
	return &History{
		index:  make(map[string]int),
		values: make(map[string]float64),
	}
}

// Declare inserts a new field schema at the end of the declaration order.
// Declaring a key twice is a setup error and leaves the registry unchanged.
func (h *History) Declare(key, label string, format field.Format, group string, kind field.Kind) error {
	if _, exists := h.index[key]; exists {
		return fmt.Errorf("history field %q: %w", key, sdkerrors.ErrDuplicateField)
	}
	h.index[key] = len(h.schemas)
	h.schemas = append(h.schemas, field.Schema{
		Key:    key,
		Label:  label,
		Format: format,
		Group:  group,
		Kind:   kind,
	})
	return nil
}

// SetValue overwrites the current value for key. Binding under an undeclared
// key is a programmer error and is reported, never silently dropped.
func (h *History) SetValue(key string, value float64) error {
	if _, exists := h.index[key]; !exists {
		return fmt.Errorf("history field %q: %w", key, sdkerrors.ErrUnknownField)
	}
	h.values[key] = value
	return nil
}

// Value returns the last value bound for key. A declared key with no bound
// value yet reports ErrNotBound.
func (h *History) Value(key string) (float64, error) {
	if _, exists := h.index[key]; !exists {
		return 0, fmt.Errorf("history field %q: %w", key, sdkerrors.ErrUnknownField)
	}
	value, bound := h.values[key]
	if !bound {
		return 0, fmt.Errorf("history field %q: %w", key, sdkerrors.ErrNotBound)
	}
	return value, nil
}

// Has reports whether key has been declared
func (h *History) Has(key string) bool {
	_, exists := h.index[key]
	return exists
}

// Schema returns the schema for key and whether it is declared
func (h *History) Schema(key string) (field.Schema, bool) {
	i, exists := h.index[key]
	if !exists {
		return field.Schema{}, false
	}
	return h.schemas[i], true
}

// OrderedKeys returns the declared keys in declaration order. A non-empty
// group restricts the result to fields carrying that group tag.
func (h *History) OrderedKeys(group string) []string {
	keys := make([]string, 0, len(h.schemas))
	for _, s := range h.schemas {
		if group != "" && s.Group != group {
			continue
		}
		keys = append(keys, s.Key)
	}
	return keys
}

// Values returns a copy of all currently bound values keyed by field key.
// Returns a copy to prevent external modification of internal state.
func (h *History) Values() map[string]float64 {
	out := make(map[string]float64, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// Len returns the number of declared fields
func (h *History) Len() int {
	return len(h.schemas)
}
