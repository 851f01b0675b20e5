// Package runner drives the output system through the simulation loop: one
// Step call per iteration binds the scalar fields, evaluates derived
// fields, consults the write gates, and feeds the attached writers and the
// optional history stream; snapshot calls bind the volume domain in
// parallel and ship the encoded result to blob storage.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	internaltracing "github.com/wehubfusion/Daedalus/internal/tracing"
	"github.com/wehubfusion/Daedalus/pkg/concurrency"
	"github.com/wehubfusion/Daedalus/pkg/derived"
	"github.com/wehubfusion/Daedalus/pkg/elasticity"
	"github.com/wehubfusion/Daedalus/pkg/publish"
	"github.com/wehubfusion/Daedalus/pkg/storage"
	"github.com/wehubfusion/Daedalus/pkg/writer"
)

// Runner owns the per-iteration output pipeline for one analysis run.
type Runner struct {
	out      *elasticity.Output
	solver   elasticity.Solver
	geometry elasticity.Geometry

	screen    *writer.Screen
	history   *writer.History
	publisher *publish.Publisher
	snapshots storage.BlobStorageClient
	derived   *derived.Evaluator

	limiter         *concurrency.Limiter
	runID           string
	logger          *zap.Logger
	tracer          trace.Tracer
	tracingShutdown func(context.Context) error
}

// NewRunner creates a runner for the given output, solver and geometry.
// The volume registry is sized to the geometry's point count here, once.
// tracingConfig is optional - if nil, no tracing will be set up; if
// provided, tracing is configured now and torn down by Close.
func NewRunner(out *elasticity.Output, solver elasticity.Solver, geometry elasticity.Geometry, logger *zap.Logger, tracingConfig *TracingConfig) (*Runner, error) {
	if out == nil {
		return nil, errors.New("output cannot be nil")
	}
	if solver == nil {
		return nil, errors.New("solver cannot be nil")
	}
	if geometry == nil {
		return nil, errors.New("geometry cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	out.Volume().Resize(geometry.NumPoints())

	r := &Runner{
		out:      out,
		solver:   solver,
		geometry: geometry,
		limiter:  concurrency.NewLimiter(0),
		runID:    uuid.New().String(),
		logger:   logger,
		tracer:   otel.Tracer("daedalus/runner"),
	}

	if tracingConfig != nil {
		ctx := context.Background()
		shutdown, err := internaltracing.SetupTracing(ctx, tracingConfig.toInternalConfig(), logger)
		if err != nil {
			logger.Warn("Failed to setup tracing, continuing without tracing", zap.Error(err))
		} else {
			r.tracingShutdown = shutdown
			logger.Info("Tracing setup complete",
				zap.String("service", tracingConfig.ServiceName),
				zap.String("endpoint", tracingConfig.OTLPEndpoint))
		}
	}

	return r, nil
}

// RunID returns the identity of this run, used in stream subjects and
// snapshot paths
func (r *Runner) RunID() string {
	return r.runID
}

// SetScreen attaches the console writer
func (r *Runner) SetScreen(s *writer.Screen) {
	r.screen = s
}

// SetHistoryWriter attaches the history-file writer
func (r *Runner) SetHistoryWriter(h *writer.History) {
	r.history = h
}

// SetPublisher attaches a history stream over the given connection,
// publishing to <subjectPrefix>.<runID>.
func (r *Runner) SetPublisher(conn publish.Conn, subjectPrefix string) error {
	p, err := publish.NewPublisher(conn, subjectPrefix, r.runID, r.logger)
	if err != nil {
		return err
	}
	r.publisher = p
	return nil
}

// SetSnapshotStorage attaches the blob client used by UploadSnapshot
func (r *Runner) SetSnapshotStorage(client storage.BlobStorageClient) {
	r.snapshots = client
}

// SetDerived attaches the derived-field evaluator. Its fields must already
// be declared into this runner's history registry.
func (r *Runner) SetDerived(e *derived.Evaluator) {
	r.derived = e
}

// Step runs one iteration of the scalar output pipeline. Writer failures
// are returned; publish failures are logged and absorbed so a broker
// outage cannot stall the solve.
func (r *Runner) Step(ctx context.Context, iter elasticity.Iteration) error {
	ctx, span := r.tracer.Start(ctx, "runner.step",
		trace.WithAttributes(
			attribute.String("run.id", r.runID),
			attribute.Int("iter.time", iter.TimeIter),
			attribute.Int("iter.outer", iter.OuterIter),
			attribute.Int("iter.inner", iter.InnerIter),
		))
	defer span.End()

	if err := r.out.LoadHistoryData(iter, r.solver); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("history binding failed: %w", err)
	}

	if r.derived != nil {
		if err := r.derived.Evaluate(r.out.History()); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("derived evaluation failed: %w", err)
		}
	}

	if r.screen != nil {
		if r.out.WriteScreenHeader(iter) {
			if err := r.screen.WriteHeader(); err != nil {
				return fmt.Errorf("screen header failed: %w", err)
			}
		}
		if r.out.WriteScreenRow(iter) {
			if err := r.screen.WriteRow(); err != nil {
				return fmt.Errorf("screen row failed: %w", err)
			}
		}
	}

	if r.history != nil && r.out.WriteHistoryRow(iter) {
		if err := r.history.WriteRecord(); err != nil {
			return fmt.Errorf("history record failed: %w", err)
		}
	}

	if r.publisher != nil {
		record := publish.NewRecord(r.runID, r.out.Config().Zone, iter, r.out.History())
		if err := r.publisher.Publish(ctx, record); err != nil {
			r.logger.Warn("history stream publish failed", zap.Error(err))
		}
	}

	return nil
}

// BindVolume binds every declared per-point field for all points. Points
// are fanned out over the limiter; each point writes disjoint registry
// slots, so the semaphore is the only synchronization involved.
func (r *Runner) BindVolume(ctx context.Context) error {
	nPoints := r.geometry.NumPoints()

	var wg sync.WaitGroup
	for point := 0; point < nPoints; point++ {
		point := point
		wg.Add(1)
		err := r.limiter.Go(ctx, func() error {
			defer wg.Done()
			return r.out.LoadVolumeData(point, r.solver, r.geometry)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("volume binding stopped at point %d: %w", point, err)
		}
	}
	wg.Wait()
	return nil
}

// Snapshot binds the volume domain and returns the encoded snapshot table
func (r *Runner) Snapshot(ctx context.Context) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "runner.snapshot",
		trace.WithAttributes(
			attribute.String("run.id", r.runID),
			attribute.Int("points", r.geometry.NumPoints()),
		))
	defer span.End()

	if err := r.BindVolume(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	data, err := storage.EncodeSnapshot(r.out.Volume())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

// UploadSnapshot binds, encodes and uploads a volume snapshot, returning
// the blob URL. Requires snapshot storage to be attached.
func (r *Runner) UploadSnapshot(ctx context.Context, iter elasticity.Iteration) (string, error) {
	if r.snapshots == nil {
		return "", errors.New("snapshot storage is not attached")
	}

	data, err := r.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	path := storage.SnapshotBlobPath(r.runID, r.out.Config().Zone, iter.TimeIter)
	metadata := map[string]string{
		"run_id":    r.runID,
		"time_iter": fmt.Sprintf("%d", iter.TimeIter),
	}
	return r.snapshots.UploadSnapshot(ctx, path, data, metadata)
}

// Close gracefully shuts down the runner and cleans up resources including
// tracing. This should be called when the run is over.
func (r *Runner) Close() error {
	if r.tracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.tracingShutdown(ctx); err != nil {
			r.logger.Error("Error shutting down tracing", zap.Error(err))
			return err
		}
		r.logger.Info("Tracing shutdown complete")
	}
	return nil
}
