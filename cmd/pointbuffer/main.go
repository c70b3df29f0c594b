// Command pointbuffer projects a WGS 1984 latitude/longitude into the
// Pennsylvania State Plane South (US feet) system and generates a multi-ring
// buffer around the projected point.
//
// Parameters may be given as flags or as the six positional arguments the
// host dialog delivers them in:
//
//	pointbuffer LAT LON POINT_OUT DISTANCES UNITS BUFFER_OUT
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cumberland-gis/pointbuffer/internal/db"
	"github.com/cumberland-gis/pointbuffer/internal/geoproc"
	"github.com/cumberland-gis/pointbuffer/internal/rings"
	"github.com/cumberland-gis/pointbuffer/internal/spatial"
	"github.com/cumberland-gis/pointbuffer/internal/version"
)

var (
	lat         = flag.String("lat", "", "Latitude of the site (WGS 1984 degrees)")
	lon         = flag.String("lon", "", "Longitude of the site (WGS 1984 degrees)")
	pointOut    = flag.String("point-out", "", "Output path for the projected point (GeoJSON)")
	distances   = flag.String("distances", "", "Buffer distances, e.g. \"0.5;1;2\"")
	unitsFlag   = flag.String("units", "miles", "Distance units (meters, kilometers, feet, us-survey-feet, yards, miles)")
	bufferOut   = flag.String("buffer-out", "", "Output path for the multi-ring buffer (GeoJSON)")
	segments    = flag.Int("segments", rings.DefaultSegments, "Segments per buffer circle")
	ringsOnly   = flag.Bool("rings-only", false, "Generate annular rings instead of full disks")
	keepGoing   = flag.Bool("keep-going", false, "Attempt the buffer step even if projection fails (legacy behavior)")
	timeout     = flag.Duration("timeout", 2*time.Minute, "Per-step timeout")
	historyDB   = flag.String("history-db", "", "Optional sqlite file to record the run in")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// paramsFromArgs assembles tool parameters from either the flag values or
// the six positional dialog arguments.
func paramsFromArgs(lat, lon, pointOut, distances, units, bufferOut string, args []string) (geoproc.Params, error) {
	switch len(args) {
	case 0:
		return geoproc.ParseParams(lat, lon, pointOut, distances, units, bufferOut)
	case 6:
		return geoproc.ParseParams(args[0], args[1], args[2], args[3], args[4], args[5])
	default:
		return geoproc.Params{}, fmt.Errorf("expected 6 positional arguments (lat lon pointOut distances units bufferOut), got %d", len(args))
	}
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("pointbuffer %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	params, err := paramsFromArgs(*lat, *lon, *pointOut, *distances, *unitsFlag, *bufferOut, flag.Args())
	if err != nil {
		log.Fatalf("invalid parameters: %v", err)
	}
	params.Segments = *segments
	params.RingsOnly = *ringsOnly
	params.KeepGoing = *keepGoing
	params.StepTimeout = *timeout

	transformer, err := spatial.NewTransformer(spatial.WGS84, spatial.PAStatePlaneSouth)
	if err != nil {
		log.Fatalf("failed to create projection transformer: %v", err)
	}
	defer transformer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := geoproc.NewRunner(transformer)
	result := runner.Run(ctx, params)

	if *historyDB != "" {
		if err := recordRun(*historyDB, params, *distances, result); err != nil {
			log.Printf("failed to record run: %v", err)
		}
	}

	if !result.OK() {
		os.Exit(1)
	}
}

func recordRun(path string, params geoproc.Params, rawDistances string, result geoproc.RunResult) error {
	database, err := db.NewDB(path)
	if err != nil {
		return err
	}
	defer database.Close()

	if rawDistances == "" {
		rawDistances = fmt.Sprint(params.Distances)
	}
	return database.RecordRun(db.Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Latitude:   params.Latitude,
		Longitude:  params.Longitude,
		Distances:  rawDistances,
		Units:      params.Units,
		PointPath:  params.PointPath,
		BufferPath: params.BufferPath,
		Status:     string(result.Status()),
		Message:    result.Summary(),
		DurationMs: (result.Projection.Duration + result.Buffer.Duration).Milliseconds(),
	})
}
