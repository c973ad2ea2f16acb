package sde

import (
	"context"
	"iter"
)

// RowSource yields typed rows from one universe snapshot. The core never
// owns the database engine; implementations live in internal/store and
// manage their own cursors, timeouts, and retries.
//
// Error protocol for every sequence:
//   - a *RowError marks one unreadable row; iteration continues and the
//     loader's row policy decides whether to abort or collect it.
//   - a *LoadError (e.g. missing table) or any other error is terminal
//     for the load. The row value accompanying an error is ignored.
type RowSource interface {
	Regions(ctx context.Context) iter.Seq2[RegionRow, error]
	Constellations(ctx context.Context) iter.Seq2[ConstellationRow, error]
	Systems(ctx context.Context) iter.Seq2[SystemRow, error]
	Connections(ctx context.Context) iter.Seq2[ConnectionRow, error]
}
