// Command route is the thin CLI collaborator wrapping the core library: it
// loads a dataset, builds or loads a spatial index, resolves names, runs
// plan_route, and prints the resulting RouteSummary as JSON. Per the
// library boundary, it must not grow adapter logic beyond what is needed to
// invoke the library — compare the teacher's own minimal cmd/sde utility.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/evefrontier/routecore/pkg/config"
	"github.com/evefrontier/routecore/pkg/freshness"
	"github.com/evefrontier/routecore/pkg/fuel"
	"github.com/evefrontier/routecore/pkg/logging"
	"github.com/evefrontier/routecore/pkg/routemodel"
	"github.com/evefrontier/routecore/pkg/routeplanner"
	"github.com/evefrontier/routecore/pkg/shipcatalog"
	"github.com/evefrontier/routecore/pkg/spatialindex"
	"github.com/evefrontier/routecore/pkg/starmap"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "route":
		err = runRoute(os.Args[2:])
	case "index-build":
		err = runIndexBuild(os.Args[2:])
	case "index-verify":
		err = runIndexVerify(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: route <route|index-build|index-verify> [flags]")
}

func datasetPath() string {
	return filepath.Join(config.DataDir(), "dataset.db")
}

func indexPath() string {
	return filepath.Join(config.DataDir(), "spatial_index.bin")
}

// buildIndexMetadata computes the dataset fingerprint a freshly built spatial
// index must embed: starmap.Load never populates Starmap.metadata (it has no
// release-marker table to read), so the checksum has to be taken directly
// off the dataset file the same way freshness.Verify later recomputes it
// (pkg/freshness/freshness.go), or index-verify would report every index
// built by this CLI as permanently Stale.
func buildIndexMetadata(datasetPath string) (starmap.DatasetMetadata, error) {
	checksum, cerr := freshness.ChecksumFile(datasetPath)
	if cerr != nil {
		return starmap.DatasetMetadata{}, cerr
	}
	return starmap.DatasetMetadata{
		Checksum:           checksum,
		ReleaseTag:         config.DatasetSource(),
		BuildTimestampUnix: time.Now().Unix(),
	}, nil
}

func loadOrBuildIndex(sm *starmap.Starmap) (*spatialindex.Index, error) {
	idx, ierr := spatialindex.Load(indexPath())
	if ierr == nil {
		return idx, nil
	}
	meta, merr := buildIndexMetadata(datasetPath())
	if merr != nil {
		return nil, merr
	}
	built := spatialindex.Build(sm, meta)
	if serr := built.Save(indexPath()); serr != nil {
		return nil, serr
	}
	return built, nil
}

func runRoute(args []string) error {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	algorithm := fs.String("algorithm", "a-star", "bfs|dijkstra|a-star")
	maxJump := fs.Float64("max-jump", 0, "max spatial jump range in light-years")
	avoidGates := fs.Bool("avoid-gates", false, "force spatial-only routing")
	maxTemp := fs.Float64("max-temp", 0, "maximum tolerable system temperature (K); 0 means unset")
	shipName := fs.String("ship", "", "ship name from the ship catalog")
	fuelQuality := fs.Float64("fuel-quality", 100, "fuel quality percent, 1-100")
	cargoMass := fs.Float64("cargo-mass", 0, "cargo mass in kg")
	fuelLoad := fs.Float64("fuel-load", 0, "fuel load in units")
	dynamicMass := fs.Bool("dynamic-mass", false, "deplete mass as fuel is consumed")
	avoidCritical := fs.Bool("avoid-critical-state", false, "reject edges that would push cumulative heat to critical")
	var avoidNames multiFlag
	fs.Var(&avoidNames, "avoid", "system name to avoid (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: route route <from> <to> [flags]")
	}

	sm, lerr := starmap.Load(datasetPath())
	if lerr != nil {
		return lerr
	}

	origin, rerr := sm.Resolve(fs.Arg(0))
	if rerr != nil {
		return rerr
	}
	destination, rerr := sm.Resolve(fs.Arg(1))
	if rerr != nil {
		return rerr
	}

	avoid := make(map[starmap.SystemID]bool, len(avoidNames))
	for _, name := range avoidNames {
		id, rerr := sm.Resolve(name)
		if rerr != nil {
			return rerr
		}
		avoid[id] = true
	}

	var idx *spatialindex.Index
	algo := parseAlgorithm(*algorithm)
	if algo != routeplanner.BFS || *avoidGates {
		built, err := loadOrBuildIndex(sm)
		if err != nil {
			return err
		}
		idx = built
	}

	request := routeplanner.Request{
		Origin:      origin,
		Destination: destination,
		Algorithm:   algo,
		MaxJumpLy:   *maxJump,
		Avoid:       avoid,
		AvoidGates:  *avoidGates,
	}
	if *maxTemp > 0 {
		request.MaxTemperatureK = maxTemp
	}

	if *shipName != "" {
		shipPath, serr := shipcatalog.ResolvePath(config.ShipDataPath(), config.DataDir())
		if serr != nil {
			return serr
		}
		catalog, serr := shipcatalog.FromPath(shipPath)
		if serr != nil {
			return serr
		}
		ship, ok := catalog.Get(*shipName)
		if !ok {
			return fmt.Errorf("unknown ship %q", *shipName)
		}
		loadout, lderr := fuel.NewLoadout(ship, *fuelLoad, *cargoMass, *fuelQuality, *dynamicMass)
		if lderr != nil {
			return lderr
		}
		request.Loadout = loadout
		request.AvoidCriticalHeat = *avoidCritical
	}

	summary, perr := routemodel.PlanRoute(sm, idx, request)
	if perr != nil {
		return perr
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func parseAlgorithm(s string) routeplanner.Algorithm {
	switch strings.ToLower(s) {
	case "bfs":
		return routeplanner.BFS
	case "dijkstra":
		return routeplanner.Dijkstra
	default:
		return routeplanner.AStar
	}
}

func runIndexBuild(args []string) error {
	fs := flag.NewFlagSet("index-build", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	sm, lerr := starmap.Load(datasetPath())
	if lerr != nil {
		return lerr
	}
	meta, merr := buildIndexMetadata(datasetPath())
	if merr != nil {
		return merr
	}
	idx := spatialindex.Build(sm, meta)
	if serr := idx.Save(indexPath()); serr != nil {
		return serr
	}
	slog.Info("spatial index built", "systems", idx.Len(), "path", indexPath())
	return nil
}

func runIndexVerify(args []string) error {
	fs := flag.NewFlagSet("index-verify", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "emit JSON")
	quiet := fs.Bool("quiet", false, "suppress output, rely on exit code only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := freshness.Verify(indexPath(), datasetPath())

	if !*quiet {
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(result)
		} else {
			fmt.Printf("state=%s fresh=%v\n", result.State, result.IsFresh())
		}
	}

	os.Exit(result.State.ExitCode())
	return nil
}

// multiFlag accumulates repeated -avoid flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
