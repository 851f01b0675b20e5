package elasticity

// The three write gates are evaluated independently every iteration from
// the configuration snapshot and the explicit iteration counters; nothing
// is cached between calls.

// WriteScreenHeader decides whether a console header should be printed this
// iteration. Nonlinear runs print one at the start of every outer step
// (inner counter zero); linear runs print on a coarser cadence of every
// WriteFrequency*40 outer iterations. Multizone runs suppress the header
// unless per-zone convergence printing was explicitly requested.
func (o *Output) WriteScreenHeader(iter Iteration) bool {
	var write bool
	if o.cfg.Nonlinear {
		write = iter.InnerIter == 0
	} else {
		write = iter.OuterIter%(o.cfg.WriteFrequency*40) == 0
	}

	if o.cfg.Multizone {
		write = write && o.cfg.WriteZoneConv
	}
	return write
}

// WriteScreenRow decides whether a console row should be printed this
// iteration. Rows print unconditionally except in multizone runs, which
// stay silent unless per-zone convergence printing was explicitly
// requested.
func (o *Output) WriteScreenRow(iter Iteration) bool {
	write := true
	if o.cfg.Multizone {
		write = write && o.cfg.WriteZoneConv
	}
	return write
}

// WriteHistoryRow decides whether a history-file row should be requested
// this iteration. Every iteration requests one; cadence and buffering are
// the file writer's concern.
func (o *Output) WriteHistoryRow(iter Iteration) bool {
	return true
}
