// Package config holds the immutable run-configuration snapshot consumed by
// the schema builder, the data binder and the output gates. The enclosing
// engine fills it in once at setup; nothing in this library re-queries
// configuration mid-run, which keeps the declared and bound field sets
// provably consistent.
package config

import (
	"fmt"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Config is the run-configuration snapshot.
type Config struct {
	// Dims is the spatial dimensionality of the problem, 2 or 3
	Dims int

	// Nonlinear selects the large-deformation analysis mode; false means
	// linear (small-deformation) analysis
	Nonlinear bool

	// Dynamic marks a time-dependent analysis; static runs leave it false
	Dynamic bool

	// Multizone marks a coupled multizone run
	Multizone bool

	// Zone is the index of this zone within a multizone run
	Zone int

	// WriteFrequency is the configured console write frequency used by the
	// linear-analysis header cadence
	WriteFrequency int

	// WriteZoneConv explicitly opts into per-zone convergence printing in
	// multizone runs; default is off
	WriteZoneConv bool

	// Output filenames, passed through opaquely to writer collaborators
	HistoryFilename string
	VolumeFilename  string
	SurfaceFilename string
	RestartFilename string
}

// DefaultConfig returns a configuration for a 3-D linear static single-zone
// run with sensible writer defaults.
func DefaultConfig() Config {
	return Config{
		Dims:            3,
		WriteFrequency:  1,
		HistoryFilename: "history",
		VolumeFilename:  "flow",
		SurfaceFilename: "surface_flow",
		RestartFilename: "restart",
	}
}

// Validate checks the snapshot at setup time. Validation errors are
// unrecoverable; the run must not start on an invalid configuration.
func (c Config) Validate() error {
	if c.Dims != 2 && c.Dims != 3 {
		return fmt.Errorf("dims must be 2 or 3, got %d: %w", c.Dims, sdkerrors.ErrInvalidConfig)
	}
	if c.WriteFrequency <= 0 {
		return fmt.Errorf("write frequency must be positive, got %d: %w", c.WriteFrequency, sdkerrors.ErrInvalidConfig)
	}
	if c.Zone < 0 {
		return fmt.Errorf("zone index must not be negative, got %d: %w", c.Zone, sdkerrors.ErrInvalidConfig)
	}
	return nil
}
