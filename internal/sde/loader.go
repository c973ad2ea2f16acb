package sde

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"starmap/internal/graph"
	"starmap/internal/logger"
)

// Options controls one snapshot load.
type Options struct {
	// SkipAndReport collects malformed and dangling rows in
	// Result.Skipped instead of aborting. Default (false) is fail-fast:
	// a partially loaded universe is unsafe to query.
	SkipAndReport bool
	// Directed inserts connections exactly as stored instead of
	// mirroring them.
	Directed bool
	// Factor divides raw coordinates. Zero means no scaling.
	Factor float64
	// InvertCoordinates flips coordinate signs after scaling.
	InvertCoordinates bool
	// GridCellSize and PathCacheSize are passed through to the graph
	// build; zero selects the graph defaults.
	GridCellSize  float64
	PathCacheSize int
}

// Result is a successful load: a fully validated universe plus, under
// skip-and-report, the rows that were left out.
type Result struct {
	Universe *graph.Universe
	Skipped  []*RowError
}

// Load reads all snapshot tables from src and builds the universe graph.
//
// Tables are read concurrently, but validation runs in dependency order
// (regions, constellations, systems, connections) against complete
// parent sets, so every referential check sees the parents as they will
// finally exist. On any error the previous universe, if the caller holds
// one, is untouched; Load returns no partial graph.
func Load(ctx context.Context, src RowSource, opts Options) (*Result, error) {
	logger.Info("SDE", "Reading snapshot tables...")

	var (
		regionRows        []RegionRow
		constellationRows []ConstellationRow
		systemRows        []SystemRow
		connectionRows    []ConnectionRow

		regionSkips, constellationSkips, systemSkips, connectionSkips []*RowError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		regionRows, regionSkips, err = collect("regions", src.Regions(gctx), opts.SkipAndReport)
		return err
	})
	g.Go(func() (err error) {
		constellationRows, constellationSkips, err = collect("constellations", src.Constellations(gctx), opts.SkipAndReport)
		return err
	})
	g.Go(func() (err error) {
		systemRows, systemSkips, err = collect("solar_systems", src.Systems(gctx), opts.SkipAndReport)
		return err
	})
	g.Go(func() (err error) {
		connectionRows, connectionSkips, err = collect("jumps", src.Connections(gctx), opts.SkipAndReport)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skipped := make([]*RowError, 0,
		len(regionSkips)+len(constellationSkips)+len(systemSkips)+len(connectionSkips))
	skipped = append(skipped, regionSkips...)
	skipped = append(skipped, constellationSkips...)
	skipped = append(skipped, systemSkips...)
	skipped = append(skipped, connectionSkips...)

	skipRow := func(table string, key int64, cause error) error {
		if opts.SkipAndReport {
			skipped = append(skipped, &RowError{Table: table, Key: key, Cause: cause})
			return nil
		}
		return &LoadError{Kind: ErrDanglingReference, Table: table, Cause: cause}
	}

	// Regions first: no references to check.
	if len(regionRows) == 0 {
		return nil, &LoadError{Kind: ErrEmptyTable, Table: "regions"}
	}
	regions := make(map[int32]*graph.Region, len(regionRows))
	for _, row := range regionRows {
		if _, dup := regions[row.ID]; dup {
			return nil, &LoadError{Kind: ErrDuplicateID, Table: "regions", Cause: fmt.Errorf("region %d", row.ID)}
		}
		regions[row.ID] = &graph.Region{ID: row.ID, Name: row.Name, Description: row.Description}
	}

	// Constellations against the complete region set.
	if len(constellationRows) == 0 {
		return nil, &LoadError{Kind: ErrEmptyTable, Table: "constellations"}
	}
	constellations := make(map[int32]*graph.Constellation, len(constellationRows))
	for _, row := range constellationRows {
		if _, dup := constellations[row.ID]; dup {
			return nil, &LoadError{Kind: ErrDuplicateID, Table: "constellations", Cause: fmt.Errorf("constellation %d", row.ID)}
		}
		if _, ok := regions[row.RegionID]; !ok {
			if err := skipRow("constellations", int64(row.ID),
				fmt.Errorf("constellation %d references unknown region %d", row.ID, row.RegionID)); err != nil {
				return nil, err
			}
			continue
		}
		constellations[row.ID] = &graph.Constellation{ID: row.ID, Name: row.Name, RegionID: row.RegionID}
	}

	// Systems against the complete constellation set.
	if len(systemRows) == 0 {
		return nil, &LoadError{Kind: ErrEmptyTable, Table: "solar_systems"}
	}
	factor := opts.Factor
	if factor <= 0 {
		factor = 1
	}
	systems := make(map[int32]*graph.SolarSystem, len(systemRows))
	for _, row := range systemRows {
		if _, dup := systems[row.ID]; dup {
			return nil, &LoadError{Kind: ErrDuplicateID, Table: "solar_systems", Cause: fmt.Errorf("system %d", row.ID)}
		}
		if _, ok := constellations[row.ConstellationID]; !ok {
			if err := skipRow("solar_systems", int64(row.ID),
				fmt.Errorf("system %d references unknown constellation %d", row.ID, row.ConstellationID)); err != nil {
				return nil, err
			}
			continue
		}
		systems[row.ID] = &graph.SolarSystem{
			ID:              row.ID,
			Name:            row.Name,
			Coords:          scalePoint(row, factor, opts.InvertCoordinates),
			Security:        row.Security,
			ConstellationID: row.ConstellationID,
		}
	}

	// Connections last: both endpoints must already be loaded.
	connections := make([]graph.Connection, 0, len(connectionRows))
	for _, row := range connectionRows {
		if _, ok := systems[row.FromID]; !ok {
			if err := skipRow("jumps", int64(row.FromID),
				fmt.Errorf("connection %d→%d references unknown system %d", row.FromID, row.ToID, row.FromID)); err != nil {
				return nil, err
			}
			continue
		}
		if _, ok := systems[row.ToID]; !ok {
			if err := skipRow("jumps", int64(row.FromID),
				fmt.Errorf("connection %d→%d references unknown system %d", row.FromID, row.ToID, row.ToID)); err != nil {
				return nil, err
			}
			continue
		}
		connections = append(connections, graph.Connection{From: row.FromID, To: row.ToID, OneWay: row.OneWay})
	}

	u := graph.Build(graph.BuildInput{
		Regions:        regions,
		Constellations: constellations,
		Systems:        systems,
		Connections:    connections,
	}, graph.BuildOptions{
		Directed:      opts.Directed,
		GridCellSize:  opts.GridCellSize,
		PathCacheSize: opts.PathCacheSize,
	})

	logger.Section("Snapshot Statistics")
	logger.Stats("Regions", len(regions))
	logger.Stats("Constellations", len(constellations))
	logger.Stats("Systems", len(systems))
	logger.Stats("Connections", len(connections))
	if len(skipped) > 0 {
		logger.Warn("SDE", fmt.Sprintf("Skipped %d rows", len(skipped)))
	}

	return &Result{Universe: u, Skipped: skipped}, nil
}

func scalePoint(row SystemRow, factor float64, invert bool) graph.Point3 {
	p := graph.Point3{X: row.X / factor, Y: row.Y / factor, Z: row.Z / factor}
	if invert {
		p.X, p.Y, p.Z = -p.X, -p.Y, -p.Z
	}
	return p
}

// collect drains one table sequence, applying the row policy to
// *RowError values. Any other error is terminal for the whole load.
func collect[T any](table string, seq iter.Seq2[T, error], skip bool) ([]T, []*RowError, error) {
	var rows []T
	var skipped []*RowError
	for row, err := range seq {
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				if skip {
					skipped = append(skipped, rowErr)
					continue
				}
				return nil, nil, &LoadError{Kind: ErrBadRow, Table: table, Cause: rowErr}
			}
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				return nil, nil, loadErr
			}
			return nil, nil, &LoadError{Kind: ErrBadRow, Table: table, Cause: err}
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}
