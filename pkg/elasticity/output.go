// Package elasticity wires the generic field registries to the structural
// analysis kind: it declares the history and volume field sets implied by
// the run configuration, binds live solver and geometry values under those
// keys each iteration, and answers the per-iteration write gating
// questions.
//
// The configuration snapshot is captured once at construction and never
// re-read, so the declared and bound field sets cannot drift apart during a
// run. Constructing a second Output against the same registries would fail
// on duplicate declarations, which is the intended safety net.
package elasticity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/config"
	"github.com/wehubfusion/Daedalus/pkg/field"
	"github.com/wehubfusion/Daedalus/pkg/registry"
)

// Output owns the declared field schemas for one structural analysis run.
type Output struct {
	cfg     config.Config
	history *registry.History
	volume  *registry.Volume
	logger  *zap.Logger

	multizoneHeader string
	convergenceKey  string
}

// NewOutput validates the configuration, declares the history and volume
// field sets it implies, and returns the ready-to-bind output. Declaration
// failures are setup errors and abort construction.
func NewOutput(cfg config.Config, logger *zap.Logger) (*Output, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Output{
		cfg:             cfg,
		history:         registry.NewHistory(),
		volume:          registry.NewVolume(),
		logger:          logger,
		multizoneHeader: fmt.Sprintf("Zone %d (Structure)", cfg.Zone),
		convergenceKey:  KeyRMSDispX,
	}
	if cfg.Nonlinear {
		o.convergenceKey = KeyRMSUTol
	}

	if err := o.setHistoryFields(); err != nil {
		return nil, fmt.Errorf("history schema: %w", err)
	}
	if err := o.setVolumeFields(); err != nil {
		return nil, fmt.Errorf("volume schema: %w", err)
	}
	return o, nil
}

// setHistoryFields declares the scalar field set for the captured
// configuration. The set is a deterministic function of dimensionality,
// analysis mode and coupling mode.
func (o *Output) setHistoryFields() error {
	h := o.history

	declarations := []struct {
		key, label string
		format     field.Format
		group      string
		kind       field.Kind
		active     bool
	}{
		{KeyTimeIter, "Time_Iter", field.FormatInteger, GroupIter, field.KindPlain, true},
		{KeyOuterIter, "Outer_Iter", field.FormatInteger, GroupIter, field.KindPlain, true},
		{KeyInnerIter, "Inner_Iter", field.FormatInteger, GroupIter, field.KindPlain, true},

		{KeyPhysTime, "Time(min)", field.FormatScientific, GroupPhysTime, field.KindPlain, true},
		{KeyLinSolIter, "Linear_Solver_Iterations", field.FormatInteger, GroupLinSolIter, field.KindPlain, true},

		// Linear analysis reports per-axis RMS displacement residuals;
		// nonlinear analysis reports the fixed U/R/E tolerance trio
		// regardless of dimensionality.
		{KeyRMSDispX, "rms[DispX]", field.FormatFixed, GroupRMSRes, field.KindResidual, !o.cfg.Nonlinear},
		{KeyRMSDispY, "rms[DispY]", field.FormatFixed, GroupRMSRes, field.KindResidual, !o.cfg.Nonlinear},
		{KeyRMSDispZ, "rms[DispZ]", field.FormatFixed, GroupRMSRes, field.KindResidual, !o.cfg.Nonlinear && o.cfg.Dims == 3},

		{KeyRMSUTol, "rms[U]", field.FormatFixed, GroupRMSRes, field.KindResidual, o.cfg.Nonlinear},
		{KeyRMSRTol, "rms[R]", field.FormatFixed, GroupRMSRes, field.KindResidual, o.cfg.Nonlinear},
		{KeyRMSETol, "rms[E]", field.FormatFixed, GroupRMSRes, field.KindResidual, o.cfg.Nonlinear},

		{KeyBGSDispX, "bgs[DispX]", field.FormatFixed, GroupBGSRes, field.KindResidual, o.cfg.Multizone},
		{KeyBGSDispY, "bgs[DispY]", field.FormatFixed, GroupBGSRes, field.KindResidual, o.cfg.Multizone},
		{KeyBGSDispZ, "bgs[DispZ]", field.FormatFixed, GroupBGSRes, field.KindResidual, o.cfg.Multizone && o.cfg.Dims == 3},

		{KeyVonMises, "VonMises", field.FormatScientific, GroupVonMises, field.KindPlain, true},
		{KeyLoadIncrement, "Load_Increment", field.FormatFixed, GroupLoadIncrement, field.KindPlain, true},
		{KeyLoadRamp, "Load_Ramp", field.FormatFixed, GroupLoadRamp, field.KindPlain, true},
	}

	for _, d := range declarations {
		if !d.active {
			continue
		}
		if err := h.Declare(d.key, d.label, d.format, d.group, d.kind); err != nil {
			return err
		}
	}
	return nil
}

// setVolumeFields declares the per-point field set for the captured
// configuration. Velocity and acceleration exist only in time-dependent
// runs; out-of-plane stress components exist only in 3-D.
func (o *Output) setVolumeFields() error {
	v := o.volume
	threeD := o.cfg.Dims == 3

	declarations := []struct {
		key, label string
		group      string
		active     bool
	}{
		{KeyCoordX, "x", GroupCoordinates, true},
		{KeyCoordY, "y", GroupCoordinates, true},
		{KeyCoordZ, "z", GroupCoordinates, threeD},

		{KeyDisplacementX, "Displacement_x", GroupSolution, true},
		{KeyDisplacementY, "Displacement_y", GroupSolution, true},
		{KeyDisplacementZ, "Displacement_z", GroupSolution, threeD},

		{KeyVelocityX, "Velocity_x", GroupVelocity, o.cfg.Dynamic},
		{KeyVelocityY, "Velocity_y", GroupVelocity, o.cfg.Dynamic},
		{KeyVelocityZ, "Velocity_z", GroupVelocity, o.cfg.Dynamic && threeD},

		{KeyAccelerationX, "Acceleration_x", GroupAcceleration, o.cfg.Dynamic},
		{KeyAccelerationY, "Acceleration_y", GroupAcceleration, o.cfg.Dynamic},
		{KeyAccelerationZ, "Acceleration_z", GroupAcceleration, o.cfg.Dynamic && threeD},

		{KeyStressXX, "Sxx", GroupStress, true},
		{KeyStressYY, "Syy", GroupStress, true},
		{KeyStressXY, "Sxy", GroupStress, true},

		{KeyStressZZ, "Szz", GroupStress, threeD},
		{KeyStressXZ, "Sxz", GroupStress, threeD},
		{KeyStressYZ, "Syz", GroupStress, threeD},

		{KeyVonMisesStress, "Von_Mises_Stress", GroupStress, true},
	}

	for _, d := range declarations {
		if !d.active {
			continue
		}
		if err := v.Declare(d.key, d.label, field.FormatScientific, d.group, field.KindPlain); err != nil {
			return err
		}
	}
	return nil
}

// History returns the scalar-domain registry
func (o *Output) History() *registry.History {
	return o.history
}

// Volume returns the per-point registry
func (o *Output) Volume() *registry.Volume {
	return o.volume
}

// Config returns the configuration snapshot captured at construction
func (o *Output) Config() config.Config {
	return o.cfg
}

// ConvergenceKey returns the history key the enclosing loop should monitor
// for convergence: the X displacement residual for linear runs, the U
// tolerance residual for nonlinear runs.
func (o *Output) ConvergenceKey() string {
	return o.convergenceKey
}

// MultizoneHeader returns the zone banner used by writers in multizone runs
func (o *Output) MultizoneHeader() string {
	return o.multizoneHeader
}
