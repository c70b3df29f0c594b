package geoproc

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/cumberland-gis/pointbuffer/internal/fsutil"
	"github.com/cumberland-gis/pointbuffer/internal/spatial"
	"github.com/cumberland-gis/pointbuffer/internal/timeutil"
	"github.com/cumberland-gis/pointbuffer/internal/units"
)

// fakeProjector satisfies spatial.Projector without touching PROJ.
type fakeProjector struct {
	x, y    float64
	err     error
	release <-chan struct{} // when set, Project blocks until closed
}

func (f *fakeProjector) Project(lat, lon float64) (float64, float64, error) {
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.x, f.y, nil
}

func (f *fakeProjector) Target() spatial.CRS { return spatial.PAStatePlaneSouth }
func (f *fakeProjector) Describe() string    { return "fake projection engine" }

func testRunner(p spatial.Projector) (*Runner, *fsutil.MemoryFileSystem, *CaptureMessenger) {
	fs := fsutil.NewMemoryFileSystem()
	msg := &CaptureMessenger{}
	r := &Runner{
		Projector: p,
		FS:        fs,
		Clock:     timeutil.NewMockClock(time.Date(2017, 2, 13, 10, 0, 0, 0, time.UTC)),
		Messenger: msg,
	}
	return r, fs, msg
}

func testParams() Params {
	return Params{
		Latitude:   40.2737,
		Longitude:  -76.8844,
		PointPath:  "out/point.geojson",
		Distances:  []float64{0.5, 1},
		Units:      units.Miles,
		BufferPath: "out/rings.geojson",
		Segments:   16,
	}
}

func TestRunSuccess(t *testing.T) {
	r, fs, msg := testRunner(&fakeProjector{x: 2200000, y: 250000})
	res := r.Run(context.Background(), testParams())

	if !res.OK() {
		t.Fatalf("run failed: projection=%v buffer=%v", res.Projection.Err, res.Buffer.Err)
	}
	if res.Point != (orb.Point{2200000, 250000}) {
		t.Errorf("projected point = %v", res.Point)
	}
	if got := res.Status(); got != StatusCompleted {
		t.Errorf("Status() = %v, want %v", got, StatusCompleted)
	}

	// Point artifact
	data, err := fs.ReadFile("out/point.geojson")
	if err != nil {
		t.Fatalf("point artifact missing: %v", err)
	}
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		t.Fatalf("point artifact invalid: %v", err)
	}
	if pt, ok := f.Geometry.(orb.Point); !ok || pt != (orb.Point{2200000, 250000}) {
		t.Errorf("point artifact geometry = %v", f.Geometry)
	}
	if f.Properties["crs"] != "EPSG:2272" {
		t.Errorf("point crs property = %v", f.Properties["crs"])
	}

	// Buffer artifact: ring radii are the distances converted to us survey feet
	data, err = fs.ReadFile("out/rings.geojson")
	if err != nil {
		t.Fatalf("buffer artifact missing: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("buffer artifact invalid: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("got %d buffer features, want 2", len(fc.Features))
	}

	wantRadii := make([]float64, 2)
	for i, d := range []float64{0.5, 1} {
		wantRadii[i], err = units.Convert(d, units.Miles, units.USSurveyFeet)
		if err != nil {
			t.Fatal(err)
		}
	}
	for i, feat := range fc.Features {
		if got := feat.Properties["distance"]; got != []float64{0.5, 1}[i] {
			t.Errorf("feature %d distance property = %v", i, got)
		}
		if got := feat.Properties["units"]; got != units.Miles {
			t.Errorf("feature %d units property = %v", i, got)
		}
		poly, ok := feat.Geometry.(orb.Polygon)
		if !ok {
			t.Fatalf("feature %d geometry is %T, want polygon", i, feat.Geometry)
		}
		for _, pt := range poly[0] {
			radius := math.Hypot(pt[0]-2200000, pt[1]-250000)
			if math.Abs(radius-wantRadii[i]) > 0.001 {
				t.Fatalf("feature %d vertex radius = %f, want %f", i, radius, wantRadii[i])
			}
		}
	}

	// Completion banner is always the last message
	msgs := msg.Messages()
	if len(msgs) == 0 || !strings.Contains(msgs[len(msgs)-1], "completed running") {
		t.Errorf("missing completion message, got %v", msgs)
	}
	if len(msg.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", msg.Errors())
	}
}

func TestRunProjectionFailureSkipsBuffer(t *testing.T) {
	r, fs, msg := testRunner(&fakeProjector{err: errors.New("latitude or longitude exceeded limits")})
	res := r.Run(context.Background(), testParams())

	if res.OK() {
		t.Fatal("run reported success despite projection failure")
	}
	if res.Projection.Status != StatusFailed {
		t.Errorf("projection status = %v, want failed", res.Projection.Status)
	}
	if res.Buffer.Status != StatusSkipped {
		t.Errorf("buffer status = %v, want skipped", res.Buffer.Status)
	}
	if fs.Exists("out/rings.geojson") {
		t.Error("buffer artifact written despite skipped step")
	}
	if len(msg.Errors()) == 0 {
		t.Error("expected error messages")
	}
	if !strings.Contains(res.Summary(), "buffer skipped") {
		t.Errorf("Summary() = %q", res.Summary())
	}
}

func TestRunKeepGoingAttemptsBuffer(t *testing.T) {
	r, fs, msg := testRunner(&fakeProjector{err: errors.New("projection engine unavailable")})
	p := testParams()
	p.KeepGoing = true
	res := r.Run(context.Background(), p)

	// Legacy behavior: the buffer step runs anyway and fails on its own
	// because the point artifact was never written.
	if res.Buffer.Status != StatusFailed {
		t.Errorf("buffer status = %v, want failed", res.Buffer.Status)
	}
	if res.Buffer.Err == nil || !strings.Contains(res.Buffer.Err.Error(), "reading projected point") {
		t.Errorf("buffer error = %v", res.Buffer.Err)
	}
	if fs.Exists("out/rings.geojson") {
		t.Error("buffer artifact written despite failure")
	}
	// Both steps reported their own failures.
	if len(msg.Errors()) < 4 {
		t.Errorf("expected independent error reports from both steps, got %v", msg.Errors())
	}
}

func TestRunStepTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r, _, _ := testRunner(&fakeProjector{release: release})
	p := testParams()
	p.StepTimeout = 20 * time.Millisecond

	res := r.Run(context.Background(), p)
	if res.Projection.Status != StatusFailed {
		t.Fatalf("projection status = %v, want failed", res.Projection.Status)
	}
	if !errors.Is(res.Projection.Err, context.DeadlineExceeded) {
		t.Errorf("projection error = %v, want deadline exceeded", res.Projection.Err)
	}
	if res.Buffer.Status != StatusSkipped {
		t.Errorf("buffer status = %v, want skipped", res.Buffer.Status)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	defer close(release)

	r, _, _ := testRunner(&fakeProjector{release: release})
	res := r.Run(ctx, testParams())

	if !errors.Is(res.Projection.Err, context.Canceled) {
		t.Errorf("projection error = %v, want canceled", res.Projection.Err)
	}
}

func TestReadPointArtifactErrors(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	if _, err := readPointArtifact(fs, "missing.geojson"); err == nil {
		t.Error("expected error for missing artifact")
	}

	if err := fs.WriteFile("bad.geojson", []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readPointArtifact(fs, "bad.geojson"); err == nil {
		t.Error("expected error for malformed artifact")
	}

	poly := geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	data, err := poly.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile("poly.geojson", data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readPointArtifact(fs, "poly.geojson"); err == nil {
		t.Error("expected error for non-point geometry")
	}
}
