// Package field defines the descriptor metadata attached to every output
// quantity: a stable string key, a display label, a rendering format hint,
// a display group, and a semantic kind. Descriptors are created once during
// schema declaration and never modified afterwards.
package field

// Format is a rendering hint for writers; it carries no semantics beyond
// how a bound value should be printed.
type Format string

const (
	// FormatInteger renders the value as a whole number
	FormatInteger Format = "INTEGER"

	// FormatFixed renders the value in fixed-point notation
	FormatFixed Format = "FIXED"

	// FormatScientific renders the value in scientific notation
	FormatScientific Format = "SCIENTIFIC"
)

// Kind classifies what a field represents to consumers.
type Kind string

const (
	// KindPlain marks an ordinary output quantity
	KindPlain Kind = "PLAIN"

	// KindResidual marks a convergence metric; residual values are bound
	// on a logarithmic scale
	KindResidual Kind = "RESIDUAL"
)

// Schema describes a single output field. Schemas are immutable once
// declared; the registry owns them for the lifetime of the run.
type Schema struct {
	// Key is the unique identifier of the field within its registry
	Key string

	// Label is the short human-readable name used for column headers
	Label string

	// Format is the rendering hint for writers
	Format Format

	// Group clusters related fields for display (e.g. "RMS_RES", "STRESS")
	Group string

	// Kind distinguishes plain quantities from convergence residuals
	Kind Kind
}
