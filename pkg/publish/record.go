package publish

import (
	"time"

	"github.com/wehubfusion/Daedalus/pkg/elasticity"
	"github.com/wehubfusion/Daedalus/pkg/registry"
)

// Record is one published history snapshot: the iteration counters plus
// every currently bound history value, keyed by field key.
type Record struct {
	RunID     string             `json:"runId"`
	Zone      int                `json:"zone"`
	TimeIter  int                `json:"timeIter"`
	OuterIter int                `json:"outerIter"`
	InnerIter int                `json:"innerIter"`
	PhysTime  float64            `json:"physTime"`
	Values    map[string]float64 `json:"values"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewRecord snapshots the given history registry into a publishable record
func NewRecord(runID string, zone int, iter elasticity.Iteration, hist *registry.History) Record {
	return Record{
		RunID:     runID,
		Zone:      zone,
		TimeIter:  iter.TimeIter,
		OuterIter: iter.OuterIter,
		InnerIter: iter.InnerIter,
		PhysTime:  iter.PhysTime,
		Values:    hist.Values(),
		Timestamp: time.Now().UTC(),
	}
}
