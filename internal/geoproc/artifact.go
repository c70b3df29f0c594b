package geoproc

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/cumberland-gis/pointbuffer/internal/fsutil"
	"github.com/cumberland-gis/pointbuffer/internal/rings"
	"github.com/cumberland-gis/pointbuffer/internal/spatial"
)

// writePointArtifact writes the projected point as a GeoJSON feature.
func writePointArtifact(fsys fsutil.FileSystem, path string, pt orb.Point, crs spatial.CRS, lat, lon float64) error {
	f := geojson.NewFeature(pt)
	f.Properties["latitude"] = lat
	f.Properties["longitude"] = lon
	f.Properties["crs"] = crs.String()
	f.Properties["units"] = crs.Unit

	return writeArtifact(fsys, path, f)
}

// readPointArtifact loads a projected point written by the projection step.
// The buffer step takes the artifact path as its input, not the in-memory
// point, so a missing or malformed artifact fails the buffer step on its own.
func readPointArtifact(fsys fsutil.FileSystem, path string) (orb.Point, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return orb.Point{}, fmt.Errorf("reading projected point: %w", err)
	}

	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return orb.Point{}, fmt.Errorf("decoding projected point %s: %w", path, err)
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("artifact %s does not contain a point geometry", path)
	}
	return pt, nil
}

// writeBufferArtifact writes the ring polygons as a GeoJSON feature
// collection. The distance property carries the user-supplied value in the
// user's units; geometry coordinates are in the projected CRS unit.
func writeBufferArtifact(fsys fsutil.FileSystem, path string, rs []rings.Ring, inputDistances []float64, unit string, crs spatial.CRS) error {
	fc := geojson.NewFeatureCollection()
	for i, r := range rs {
		f := geojson.NewFeature(r.Polygon)
		f.Properties["ring"] = i + 1
		f.Properties["distance"] = inputDistances[i]
		f.Properties["units"] = unit
		f.Properties["crs"] = crs.String()
		fc.Append(f)
	}

	return writeArtifact(fsys, path, fc)
}

func writeArtifact(fsys fsutil.FileSystem, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory for %s: %w", path, err)
		}
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
