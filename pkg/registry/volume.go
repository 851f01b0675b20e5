package registry

import (
	"fmt"
	"math"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/field"
)

// Volume is the per-entity registry: one value per (declared key, point
// index) pair. Storage is column-major, one column per field, so binding
// distinct point indices touches disjoint slots and may run in parallel.
type Volume struct {
	schemas []field.Schema
	index   map[string]int
	columns [][]float64
	nPoints int
}

// NewVolume creates an empty volume registry
func NewVolume() *Volume {
	return &Volume{
		index: make(map[string]int),
	}
}

// Declare inserts a new field schema at the end of the declaration order.
// Declaring a key twice is a setup error and leaves the registry unchanged.
func (v *Volume) Declare(key, label string, format field.Format, group string, kind field.Kind) error {
	if _, exists := v.index[key]; exists {
		return fmt.Errorf("volume field %q: %w", key, sdkerrors.ErrDuplicateField)
	}
	v.index[key] = len(v.schemas)
	v.schemas = append(v.schemas, field.Schema{
		Key:    key,
		Label:  label,
		Format: format,
		Group:  group,
		Kind:   kind,
	})
	v.columns = append(v.columns, makeColumn(v.nPoints))
	return nil
}

// Resize sets the number of spatial points and reallocates value storage.
// All previously bound values are discarded. Call once after declaration,
// with the point count reported by the geometry collaborator.
func (v *Volume) Resize(nPoints int) {
	if nPoints < 0 {
		nPoints = 0
	}
	v.nPoints = nPoints
	for i := range v.columns {
		v.columns[i] = makeColumn(nPoints)
	}
}

// SetValue overwrites the value of key at point. Unknown keys, out-of-range
// points and NaN values are reported, never silently dropped; NaN is
// reserved as the unbound-slot encoding, so admitting it would make the slot
// read back as never bound. A rejected write leaves the slot unchanged.
func (v *Volume) SetValue(key string, point int, value float64) error {
	i, exists := v.index[key]
	if !exists {
		return fmt.Errorf("volume field %q: %w", key, sdkerrors.ErrUnknownField)
	}
	if point < 0 || point >= v.nPoints {
		return fmt.Errorf("volume field %q point %d of %d: %w", key, point, v.nPoints, sdkerrors.ErrPointOutOfRange)
	}
	if math.IsNaN(value) {
		return fmt.Errorf("volume field %q point %d: %w", key, point, sdkerrors.ErrNaNValue)
	}
	v.columns[i][point] = value
	return nil
}

// Value returns the value of key at point. Slots that were never bound
// report ErrNotBound.
func (v *Volume) Value(key string, point int) (float64, error) {
	i, exists := v.index[key]
	if !exists {
		return 0, fmt.Errorf("volume field %q: %w", key, sdkerrors.ErrUnknownField)
	}
	if point < 0 || point >= v.nPoints {
		return 0, fmt.Errorf("volume field %q point %d of %d: %w", key, point, v.nPoints, sdkerrors.ErrPointOutOfRange)
	}
	value := v.columns[i][point]
	if math.IsNaN(value) {
		return 0, fmt.Errorf("volume field %q point %d: %w", key, point, sdkerrors.ErrNotBound)
	}
	return value, nil
}

// Has reports whether key has been declared
func (v *Volume) Has(key string) bool {
	_, exists := v.index[key]
	return exists
}

// Schema returns the schema for key and whether it is declared
func (v *Volume) Schema(key string) (field.Schema, bool) {
	i, exists := v.index[key]
	if !exists {
		return field.Schema{}, false
	}
	return v.schemas[i], true
}

// OrderedKeys returns the declared keys in declaration order. A non-empty
// group restricts the result to fields carrying that group tag.
func (v *Volume) OrderedKeys(group string) []string {
	keys := make([]string, 0, len(v.schemas))
	for _, s := range v.schemas {
		if group != "" && s.Group != group {
			continue
		}
		keys = append(keys, s.Key)
	}
	return keys
}

// NumPoints returns the current point count
func (v *Volume) NumPoints() int {
	return v.nPoints
}

// Len returns the number of declared fields
func (v *Volume) Len() int {
	return len(v.schemas)
}

// Unbound slots carry NaN so a read of a never-bound value is detectable.
func makeColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
