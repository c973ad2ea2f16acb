// Package store provides the relational row sources the loader reads a
// universe snapshot from. The snapshot is external and read-only; each
// source owns its connections and cursors.
package store

import (
	"context"
	"fmt"
	"strings"

	"starmap/internal/config"
	"starmap/internal/sde"
)

// Source is a closable row source.
type Source interface {
	sde.RowSource
	Close() error
}

// Open creates the row source selected by the snapshot config.
func Open(ctx context.Context, cfg config.SnapshotConfig) (Source, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported snapshot driver: %q", cfg.Driver)
	}
}
