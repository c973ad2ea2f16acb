package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"starmap/internal/api"
	"starmap/internal/config"
	"starmap/internal/graph"
	"starmap/internal/logger"
	"starmap/internal/sde"
	"starmap/internal/store"
)

var version = "dev"

var configPath string

func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:   "starmap",
		Short: "Universe snapshot loader and map query service",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "starmap.yaml", "config file path")
	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(routeCmd())
	root.AddCommand(searchCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadOptions(cfg *config.Config) sde.Options {
	return sde.Options{
		SkipAndReport:     cfg.Snapshot.SkipAndReport(),
		Directed:          cfg.Graph.Directed,
		Factor:            cfg.Graph.Factor,
		InvertCoordinates: cfg.Graph.InvertCoordinates,
		GridCellSize:      cfg.Graph.GridCellSize,
		PathCacheSize:     cfg.Graph.PathCacheSize,
	}
}

// loaderFor binds a snapshot source and options into the reload function
// the atlas and API share.
func loaderFor(cfg *config.Config, src sde.RowSource) func(context.Context) (*graph.Universe, error) {
	return func(ctx context.Context) (*graph.Universe, error) {
		result, err := sde.Load(ctx, src, loadOptions(cfg))
		if err != nil {
			return nil, err
		}
		for _, skip := range result.Skipped {
			logger.Warn("SDE", skip.Error())
		}
		return result.Universe, nil
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the snapshot and serve the map query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Banner(version)
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			src, err := store.Open(cmd.Context(), cfg.Snapshot)
			if err != nil {
				return err
			}
			defer src.Close()

			atlas := graph.NewAtlas()
			loader := loaderFor(cfg, src)

			// Load in the background so the API comes up immediately;
			// queries answer 503 until the first load lands.
			go func() {
				if _, err := atlas.Reload(context.Background(), loader); err != nil {
					logger.Error("SDE", fmt.Sprintf("Load failed: %v", err))
					return
				}
				logger.Success("SDE", "Universe ready")
			}()

			srv := api.NewServer(cfg, atlas, loader)
			logger.Server(cfg.Listen)
			return http.ListenAndServe(cfg.Listen, srv.Handler())
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the snapshot once and report integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Banner(version)
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			src, err := store.Open(cmd.Context(), cfg.Snapshot)
			if err != nil {
				return err
			}
			defer src.Close()

			result, err := sde.Load(cmd.Context(), src, loadOptions(cfg))
			if err != nil {
				return err
			}
			for _, skip := range result.Skipped {
				logger.Warn("SDE", skip.Error())
			}
			logger.Success("SDE", "Snapshot is consistent")
			return nil
		},
	}
}

// loadUniverse is the shared one-shot load for query commands.
func loadUniverse(ctx context.Context) (*graph.Universe, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	src, err := store.Open(ctx, cfg.Snapshot)
	if err != nil {
		return nil, nil, err
	}
	result, err := sde.Load(ctx, src, loadOptions(cfg))
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return result.Universe, func() { src.Close() }, nil
}

func resolveSystemArg(u *graph.Universe, arg string) (int32, error) {
	if id, err := strconv.ParseInt(arg, 10, 32); err == nil {
		if _, err := u.System(int32(id)); err == nil {
			return int32(id), nil
		}
	}
	if id, ok := u.SystemIDByName(arg); ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown system %q", arg)
}

func routeCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "route FROM TO",
		Short: "Print the shortest route between two systems",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, done, err := loadUniverse(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			from, err := resolveSystemArg(u, args[0])
			if err != nil {
				return err
			}
			to, err := resolveSystemArg(u, args[1])
			if err != nil {
				return err
			}

			weightMode := graph.Hops
			switch mode {
			case "hops":
			case "distance":
				weightMode = graph.Distance
			default:
				return fmt.Errorf("bad mode %q (hops or distance)", mode)
			}

			path, err := u.ShortestPath(from, to, weightMode)
			if err != nil {
				return err
			}

			logger.Section(fmt.Sprintf("Route (%d jumps, %.2f units)", path.Jumps, path.Distance))
			for i, id := range path.Systems {
				sys, err := u.System(id)
				if err != nil {
					return err
				}
				fmt.Printf("  %2d. %s (%d, sec %.1f)\n", i, sys.Name, sys.ID, sys.Security)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "hops", "route metric: hops or distance")
	return cmd
}

func searchCmd() *cobra.Command {
	var scopeName string
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search entity names by substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, done, err := loadUniverse(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			scope, ok := graph.ParseScope(scopeName)
			if !ok {
				return fmt.Errorf("bad scope %q", scopeName)
			}

			count := 0
			for m := range u.Search(args[0], scope) {
				fmt.Printf("  %-13s %-10d %s\n", m.Kind, m.ID, m.Name)
				count++
				if limit > 0 && count >= limit {
					break
				}
			}
			if count == 0 {
				logger.Info("Search", "No matches")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scopeName, "scope", "all", "entity scope: all, regions, constellations, systems")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum matches to print (0 = unlimited)")
	return cmd
}
