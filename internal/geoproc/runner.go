package geoproc

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/cumberland-gis/pointbuffer/internal/fsutil"
	"github.com/cumberland-gis/pointbuffer/internal/rings"
	"github.com/cumberland-gis/pointbuffer/internal/spatial"
	"github.com/cumberland-gis/pointbuffer/internal/timeutil"
	"github.com/cumberland-gis/pointbuffer/internal/units"
)

// Runner executes the two-step pipeline: project the point, then buffer it.
type Runner struct {
	Projector spatial.Projector
	FS        fsutil.FileSystem
	Clock     timeutil.Clock
	Messenger Messenger
}

// NewRunner creates a Runner with production defaults.
func NewRunner(p spatial.Projector) *Runner {
	return &Runner{
		Projector: p,
		FS:        fsutil.OSFileSystem{},
		Clock:     timeutil.RealClock{},
		Messenger: &ConsoleMessenger{},
	}
}

// Run executes both steps. A failed projection skips the buffer step unless
// KeepGoing is set, in which case the buffer step is attempted anyway and
// fails on its own when the point artifact is unusable.
func (r *Runner) Run(ctx context.Context, p Params) RunResult {
	var out RunResult
	target := r.Projector.Target()

	r.Messenger.Message("Converting WGS 1984 point to %s point.", target.Name)

	out.Projection, out.Point = r.runStep(ctx, StepProject, p, func(ctx context.Context) (stepOutput, error) {
		return r.projectPoint(ctx, p, target)
	})
	if !out.Projection.OK() {
		r.Messenger.Error("%v", out.Projection.Err)
		r.Messenger.Error("There was an error running this tool.")
	}

	switch {
	case out.Projection.OK(), p.KeepGoing:
		out.Buffer, _ = r.runStep(ctx, StepBuffer, p, func(ctx context.Context) (stepOutput, error) {
			return r.bufferPoint(ctx, p, target)
		})
		if !out.Buffer.OK() {
			r.Messenger.Error("%v", out.Buffer.Err)
			r.Messenger.Error("There was an error running this tool.")
		}
	default:
		out.Buffer = StepResult{Step: StepBuffer, Status: StatusSkipped}
		r.Messenger.Message("Skipping buffer step: projection did not complete.")
	}

	r.Messenger.Message("Create buffers from point tool has completed running.")
	return out
}

// stepOutput carries a step's status messages and, for the projection step,
// the projected point.
type stepOutput struct {
	messages []string
	point    orb.Point
}

// runStep executes fn with a bounded wait: the step is abandoned when the
// context is done or the per-step timeout elapses.
func (r *Runner) runStep(ctx context.Context, name string, p Params, fn func(ctx context.Context) (stepOutput, error)) (StepResult, orb.Point) {
	start := r.Clock.Now()

	if p.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.StepTimeout)
		defer cancel()
	}

	type outcome struct {
		out stepOutput
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := fn(ctx)
		done <- outcome{out, err}
	}()

	res := StepResult{Step: name}
	var pt orb.Point
	select {
	case o := <-done:
		res.Messages = o.out.messages
		res.Err = o.err
		pt = o.out.point
	case <-ctx.Done():
		res.Err = fmt.Errorf("step %s: %w", name, ctx.Err())
	}
	res.Duration = r.Clock.Since(start)

	if res.Err != nil {
		res.Status = StatusFailed
		return res, pt
	}
	res.Status = StatusCompleted
	for _, m := range res.Messages {
		r.Messenger.Message("%s", m)
	}
	return res, pt
}

// projectPoint builds the WGS 1984 point, reprojects it and writes the
// projected point artifact.
func (r *Runner) projectPoint(ctx context.Context, p Params, target spatial.CRS) (stepOutput, error) {
	var out stepOutput

	x, y, err := r.Projector.Project(p.Latitude, p.Longitude)
	if err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	out.point = orb.Point{x, y}
	out.messages = append(out.messages,
		fmt.Sprintf("Created WGS 1984 point for latitude: %v and longitude: %v.", p.Latitude, p.Longitude))

	if err := writePointArtifact(r.FS, p.PointPath, out.point, target, p.Latitude, p.Longitude); err != nil {
		return out, err
	}
	out.messages = append(out.messages,
		r.Projector.Describe(),
		fmt.Sprintf("Reprojected point from WGS 1984 to %s.", target.Name),
		fmt.Sprintf("Wrote projected point to %s.", p.PointPath))
	return out, nil
}

// bufferPoint reads the projected point artifact, generates the ring
// polygons in the target CRS unit and writes the buffer artifact.
func (r *Runner) bufferPoint(ctx context.Context, p Params, target spatial.CRS) (stepOutput, error) {
	var out stepOutput

	pt, err := readPointArtifact(r.FS, p.PointPath)
	if err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	converted := make([]float64, len(p.Distances))
	for i, d := range p.Distances {
		converted[i], err = units.Convert(d, p.Units, target.Unit)
		if err != nil {
			return out, err
		}
	}

	rs, err := rings.Multi(pt, converted, p.Segments, p.RingsOnly)
	if err != nil {
		return out, err
	}

	if err := writeBufferArtifact(r.FS, p.BufferPath, rs, p.Distances, p.Units, target); err != nil {
		return out, err
	}
	out.messages = append(out.messages,
		fmt.Sprintf("Created %d buffer ring(s) around location latitude: %v; longitude: %v.", len(rs), p.Latitude, p.Longitude),
		fmt.Sprintf("Wrote multi-ring buffer to %s.", p.BufferPath))
	return out, nil
}
