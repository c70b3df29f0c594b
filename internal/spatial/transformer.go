package spatial

import (
	"fmt"

	proj "github.com/pebbe/proj/v5"
)

// Projector converts geographic coordinates to projected coordinates.
// Implemented by Transformer for production; tests supply fakes.
type Projector interface {
	// Project converts a latitude/longitude in the source system to an
	// easting/northing in the target system's linear unit.
	Project(lat, lon float64) (x, y float64, err error)

	// Target returns the projected CRS coordinates are produced in.
	Target() CRS

	// Describe returns a status line about the underlying engine and
	// transformation, surfaced to the user after a successful projection.
	Describe() string
}

// Transformer projects coordinates through a PROJ transformation pipeline.
// Not safe for concurrent use; each goroutine should create its own.
type Transformer struct {
	ctx  *proj.Context
	pj   *proj.PJ
	from CRS
	to   CRS
	def  string
}

// NewTransformer creates a transformer from a geographic to a projected CRS.
// Close must be called to release the PROJ handles.
func NewTransformer(from, to CRS) (*Transformer, error) {
	def, err := PipelineDefinition(from, to)
	if err != nil {
		return nil, err
	}

	ctx := proj.NewContext()
	pj, err := ctx.Create(def)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("creating transformation %s to %s: %w", from, to, err)
	}

	return &Transformer{ctx: ctx, pj: pj, from: from, to: to, def: def}, nil
}

// Project converts latitude/longitude degrees to projected coordinates.
func (t *Transformer) Project(lat, lon float64) (float64, float64, error) {
	x, y, _, _, err := t.pj.Trans(proj.Fwd, lon, lat, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("projecting (%v, %v) to %s: %w", lat, lon, t.to, err)
	}
	return x, y, nil
}

// Inverse converts projected coordinates back to latitude/longitude degrees.
func (t *Transformer) Inverse(x, y float64) (lat, lon float64, err error) {
	u, v, _, _, err := t.pj.Trans(proj.Inv, x, y, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("inverse projecting (%v, %v) from %s: %w", x, y, t.to, err)
	}
	return v, u, nil
}

// Target returns the projected CRS.
func (t *Transformer) Target() CRS {
	return t.to
}

// Describe reports the PROJ release and the pipeline in use.
func (t *Transformer) Describe() string {
	info := proj.Info()
	return fmt.Sprintf("PROJ %s: %s to %s (%s)", info.Version, t.from, t.to, t.def)
}

// Close releases the PROJ transformation and context.
func (t *Transformer) Close() {
	t.pj.Close()
	t.ctx.Close()
}
