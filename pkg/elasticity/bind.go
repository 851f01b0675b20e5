package elasticity

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

// residualFloor is the smallest residual magnitude admitted into the
// logarithmic transform. A raw residual of exactly zero therefore binds as
// -16 instead of negative infinity, and the clamp is idempotent.
const residualFloor = 1e-16

// logResidual clamps then log-scales a raw residual magnitude. The result
// is always finite.
func logResidual(r float64) float64 {
	if r < residualFloor || math.IsNaN(r) {
		r = residualFloor
	}
	return math.Log10(r)
}

// LoadHistoryData binds the scalar field set for the current iteration:
// counters and load scalars verbatim, residuals log-scaled. Binding reads
// from the solver only; it never mutates solver state. Individual bind
// failures are logged and skipped so one bad value cannot abort an
// otherwise valid step.
func (o *Output) LoadHistoryData(iter Iteration, solver Solver) error {
	if solver == nil {
		return errors.New("solver is required")
	}

	o.setHist(KeyTimeIter, float64(iter.TimeIter))
	o.setHist(KeyOuterIter, float64(iter.OuterIter))
	o.setHist(KeyInnerIter, float64(iter.InnerIter))
	o.setHist(KeyPhysTime, iter.PhysTime)
	o.setHist(KeyLinSolIter, float64(solver.LinearSolverIterations()))

	if o.cfg.Nonlinear {
		o.setHist(KeyRMSUTol, logResidual(solver.ResidualFEM(0)))
		o.setHist(KeyRMSRTol, logResidual(solver.ResidualFEM(1)))
		o.setHist(KeyRMSETol, logResidual(solver.ResidualFEM(2)))
	} else {
		o.setHist(KeyRMSDispX, logResidual(solver.ResidualRMS(0)))
		o.setHist(KeyRMSDispY, logResidual(solver.ResidualRMS(1)))
		if o.cfg.Dims == 3 {
			o.setHist(KeyRMSDispZ, logResidual(solver.ResidualRMS(2)))
		}
	}

	if o.cfg.Multizone {
		o.setHist(KeyBGSDispX, logResidual(solver.ResidualBGS(0)))
		o.setHist(KeyBGSDispY, logResidual(solver.ResidualBGS(1)))
		if o.cfg.Dims == 3 {
			o.setHist(KeyBGSDispZ, logResidual(solver.ResidualBGS(2)))
		}
	}

	o.setHist(KeyVonMises, solver.VonMises())
	o.setHist(KeyLoadIncrement, solver.LoadIncrement())
	o.setHist(KeyLoadRamp, solver.LoadRamp())

	return nil
}

// LoadVolumeData binds every declared per-point field at the given point.
// Callers binding all points may do so in parallel: each point writes a
// disjoint storage slot. The registry must have been resized to the
// geometry's point count beforehand.
func (o *Output) LoadVolumeData(point int, solver Solver, geometry Geometry) error {
	if solver == nil {
		return errors.New("solver is required")
	}
	if geometry == nil {
		return errors.New("geometry is required")
	}

	threeD := o.cfg.Dims == 3

	o.setVol(KeyCoordX, point, geometry.Coord(point, 0))
	o.setVol(KeyCoordY, point, geometry.Coord(point, 1))
	if threeD {
		o.setVol(KeyCoordZ, point, geometry.Coord(point, 2))
	}

	o.setVol(KeyDisplacementX, point, solver.Solution(point, 0))
	o.setVol(KeyDisplacementY, point, solver.Solution(point, 1))
	if threeD {
		o.setVol(KeyDisplacementZ, point, solver.Solution(point, 2))
	}

	if o.cfg.Dynamic {
		o.setVol(KeyVelocityX, point, solver.Velocity(point, 0))
		o.setVol(KeyVelocityY, point, solver.Velocity(point, 1))
		if threeD {
			o.setVol(KeyVelocityZ, point, solver.Velocity(point, 2))
		}

		o.setVol(KeyAccelerationX, point, solver.Acceleration(point, 0))
		o.setVol(KeyAccelerationY, point, solver.Acceleration(point, 1))
		if threeD {
			o.setVol(KeyAccelerationZ, point, solver.Acceleration(point, 2))
		}
	}

	o.setVol(KeyStressXX, point, solver.Stress(point, 0))
	o.setVol(KeyStressYY, point, solver.Stress(point, 1))
	o.setVol(KeyStressXY, point, solver.Stress(point, 2))
	if threeD {
		o.setVol(KeyStressZZ, point, solver.Stress(point, 3))
		o.setVol(KeyStressXZ, point, solver.Stress(point, 4))
		o.setVol(KeyStressYZ, point, solver.Stress(point, 5))
	}
	o.setVol(KeyVonMisesStress, point, solver.VonMisesAt(point))

	return nil
}

func (o *Output) setHist(key string, value float64) {
	if err := o.history.SetValue(key, value); err != nil {
		o.logger.Warn("history bind failed",
			zap.String("key", key),
			zap.Float64("value", value),
			zap.Error(err))
	}
}

func (o *Output) setVol(key string, point int, value float64) {
	if err := o.volume.SetValue(key, point, value); err != nil {
		o.logger.Warn("volume bind failed",
			zap.String("key", key),
			zap.Int("point", point),
			zap.Error(err))
	}
}
