package elasticity

// Solver is the read-only surface the binder needs from the structural
// solver. Component indices are 0-based spatial axes (0=X, 1=Y, 2=Z); the
// binder only asks for components it declared for the active
// dimensionality, so a 2-D solver is never asked for axis Z.
type Solver interface {
	// ResidualRMS returns the linear-analysis RMS residual for axis i
	ResidualRMS(i int) float64

	// ResidualFEM returns the nonlinear-analysis tolerance residual i,
	// where 0=UTOL, 1=RTOL, 2=ETOL
	ResidualFEM(i int) float64

	// ResidualBGS returns the multizone coupling residual for axis i
	ResidualBGS(i int) float64

	// LinearSolverIterations returns the iteration count of the last
	// linear solve
	LinearSolverIterations() int

	// VonMises returns the aggregate stress-severity scalar for the run
	VonMises() float64

	// LoadIncrement returns the current load-increment fraction
	LoadIncrement() float64

	// LoadRamp returns the current load-ramp coefficient
	LoadRamp() float64

	// Solution returns the displacement component i at point
	Solution(point, i int) float64

	// Velocity returns the velocity component i at point; only consulted
	// in time-dependent runs
	Velocity(point, i int) float64

	// Acceleration returns the acceleration component i at point; only
	// consulted in time-dependent runs
	Acceleration(point, i int) float64

	// Stress returns stress-tensor component i at point, ordered
	// XX, YY, XY [, ZZ, XZ, YZ in 3-D]
	Stress(point, i int) float64

	// VonMisesAt returns the von Mises stress at point
	VonMisesAt(point int) float64
}

// Geometry is the read-only surface the binder needs from the mesh.
type Geometry interface {
	// NumPoints returns the number of spatial points
	NumPoints() int

	// Coord returns coordinate component i of point
	Coord(point, i int) float64
}

// Iteration carries the counters and timing of the current step. Counters
// are passed explicitly so gating and binding stay pure and testable.
type Iteration struct {
	// TimeIter is the physical time step counter
	TimeIter int

	// OuterIter is the outer (coupling) iteration counter
	OuterIter int

	// InnerIter is the inner (solver) iteration counter
	InnerIter int

	// PhysTime is the elapsed wall-clock time in minutes
	PhysTime float64
}
