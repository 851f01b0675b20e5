package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/config"
	"github.com/wehubfusion/Daedalus/pkg/elasticity"
	"github.com/wehubfusion/Daedalus/pkg/writer"
)

type fakeSolver struct{}

func (s *fakeSolver) ResidualRMS(i int) float64     { return []float64{1e-3, 1e-4, 1e-5}[i] }
func (s *fakeSolver) ResidualFEM(i int) float64     { return []float64{1e-6, 1e-7, 1e-8}[i] }
func (s *fakeSolver) ResidualBGS(i int) float64     { return []float64{1e-2, 1e-3, 1e-4}[i] }
func (s *fakeSolver) LinearSolverIterations() int   { return 12 }
func (s *fakeSolver) VonMises() float64             { return 99.5 }
func (s *fakeSolver) LoadIncrement() float64        { return 1.0 }
func (s *fakeSolver) LoadRamp() float64             { return 1.0 }
func (s *fakeSolver) Solution(p, i int) float64     { return float64(p + i) }
func (s *fakeSolver) Velocity(p, i int) float64     { return 0 }
func (s *fakeSolver) Acceleration(p, i int) float64 { return 0 }
func (s *fakeSolver) Stress(p, i int) float64       { return float64(10*p + i) }
func (s *fakeSolver) VonMisesAt(p int) float64      { return float64(p) }

type fakeGeometry struct{ n int }

func (g *fakeGeometry) NumPoints() int         { return g.n }
func (g *fakeGeometry) Coord(p, i int) float64 { return float64(p) }

type fakeConn struct {
	connected bool
	published [][]byte
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.published = append(f.published, data)
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }

type fakeBlobStorage struct {
	uploads map[string][]byte
}

func (f *fakeBlobStorage) UploadSnapshot(ctx context.Context, blobPath string, data []byte, metadata map[string]string) (string, error) {
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[blobPath] = data
	return "https://fake.blob.core.windows.net/snapshots/" + blobPath, nil
}

func (f *fakeBlobStorage) DownloadSnapshot(ctx context.Context, blobURL string) ([]byte, error) {
	return nil, nil
}

func newRunner(t *testing.T, cfg config.Config, nPoints int) *Runner {
	t.Helper()
	out, err := elasticity.NewOutput(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRunner(out, &fakeSolver{}, &fakeGeometry{n: nPoints}, zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRunner(t *testing.T) {
	out, err := elasticity.NewOutput(config.DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	solver := &fakeSolver{}
	geometry := &fakeGeometry{n: 1}
	logger := zap.NewNop()

	t.Run("Required parameters", func(t *testing.T) {
		if _, err := NewRunner(nil, solver, geometry, logger, nil); err == nil {
			t.Error("Expected error for nil output")
		}
		if _, err := NewRunner(out, nil, geometry, logger, nil); err == nil {
			t.Error("Expected error for nil solver")
		}
		if _, err := NewRunner(out, solver, nil, logger, nil); err == nil {
			t.Error("Expected error for nil geometry")
		}
		if _, err := NewRunner(out, solver, geometry, nil, nil); err == nil {
			t.Error("Expected error for nil logger")
		}
	})

	t.Run("Run IDs are unique", func(t *testing.T) {
		a := newRunner(t, config.DefaultConfig(), 1)
		b := newRunner(t, config.DefaultConfig(), 1)
		if a.RunID() == "" || a.RunID() == b.RunID() {
			t.Errorf("Expected distinct run IDs, got %q and %q", a.RunID(), b.RunID())
		}
	})
}

func TestStep(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes screen header and row at the cadence", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, Nonlinear: true, WriteFrequency: 1}, 1)

		var screenBuf bytes.Buffer
		screen, err := writer.NewScreen(&screenBuf, r.out.History(), nil, "")
		if err != nil {
			t.Fatal(err)
		}
		r.SetScreen(screen)

		if err := r.Step(ctx, elasticity.Iteration{InnerIter: 0}); err != nil {
			t.Fatal(err)
		}
		withHeader := screenBuf.String()
		if !strings.Contains(withHeader, "---") {
			t.Errorf("Expected header at inner iteration 0: %q", withHeader)
		}

		screenBuf.Reset()
		if err := r.Step(ctx, elasticity.Iteration{InnerIter: 1}); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(screenBuf.String(), "---") {
			t.Errorf("Unexpected header at inner iteration 1: %q", screenBuf.String())
		}
		if screenBuf.Len() == 0 {
			t.Error("Expected a row at inner iteration 1")
		}
	})

	t.Run("History records are appended every step", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, WriteFrequency: 1}, 1)

		var histBuf bytes.Buffer
		hw, err := writer.NewHistory(&histBuf, r.out.History())
		if err != nil {
			t.Fatal(err)
		}
		r.SetHistoryWriter(hw)

		for inner := 0; inner < 3; inner++ {
			if err := r.Step(ctx, elasticity.Iteration{InnerIter: inner}); err != nil {
				t.Fatal(err)
			}
		}

		lines := strings.Split(strings.TrimRight(histBuf.String(), "\n"), "\n")
		if len(lines) != 4 {
			t.Errorf("Expected header plus 3 records, got %d lines", len(lines))
		}
	})

	t.Run("Publish failure does not fail the step", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, WriteFrequency: 1}, 1)
		if err := r.SetPublisher(&fakeConn{connected: false}, "daedalus.history"); err != nil {
			t.Fatal(err)
		}

		if err := r.Step(ctx, elasticity.Iteration{}); err != nil {
			t.Errorf("Step failed on publish outage: %v", err)
		}
	})

	t.Run("Published records carry the run identity", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, WriteFrequency: 1}, 1)
		conn := &fakeConn{connected: true}
		if err := r.SetPublisher(conn, "daedalus.history"); err != nil {
			t.Fatal(err)
		}

		if err := r.Step(ctx, elasticity.Iteration{TimeIter: 2}); err != nil {
			t.Fatal(err)
		}
		if len(conn.published) != 1 {
			t.Fatalf("Expected 1 published record, got %d", len(conn.published))
		}
		if !strings.Contains(string(conn.published[0]), r.RunID()) {
			t.Error("Published record does not carry the run ID")
		}
	})
}

func TestBindVolumeAndSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("Every point is bound", func(t *testing.T) {
		const nPoints = 64
		r := newRunner(t, config.Config{Dims: 3, WriteFrequency: 1}, nPoints)

		if err := r.BindVolume(ctx); err != nil {
			t.Fatal(err)
		}

		vol := r.out.Volume()
		for p := 0; p < nPoints; p++ {
			got, err := vol.Value(elasticity.KeyVonMisesStress, p)
			if err != nil {
				t.Fatalf("Point %d unbound: %v", p, err)
			}
			if got != float64(p) {
				t.Errorf("Point %d: expected %v, got %v", p, float64(p), got)
			}
		}
	})

	t.Run("Snapshot encodes the full domain", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, WriteFrequency: 1}, 3)

		data, err := r.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 4 {
			t.Errorf("Expected header plus 3 rows, got %d lines", len(lines))
		}
	})

	t.Run("UploadSnapshot ships to blob storage", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, WriteFrequency: 1}, 2)
		store := &fakeBlobStorage{}
		r.SetSnapshotStorage(store)

		url, err := r.UploadSnapshot(ctx, elasticity.Iteration{TimeIter: 5})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(url, "volume_00005.csv") {
			t.Errorf("Unexpected blob URL: %s", url)
		}
		if len(store.uploads) != 1 {
			t.Errorf("Expected 1 upload, got %d", len(store.uploads))
		}
	})

	t.Run("UploadSnapshot requires attached storage", func(t *testing.T) {
		r := newRunner(t, config.Config{Dims: 2, WriteFrequency: 1}, 1)
		if _, err := r.UploadSnapshot(ctx, elasticity.Iteration{}); err == nil {
			t.Error("Expected error without snapshot storage")
		}
	})
}

func TestClose(t *testing.T) {
	r := newRunner(t, config.DefaultConfig(), 1)
	if err := r.Close(); err != nil {
		t.Errorf("Close without tracing: %v", err)
	}
}
