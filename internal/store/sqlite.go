package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	_ "modernc.org/sqlite"

	"starmap/internal/logger"
	"starmap/internal/sde"
)

// SQLite reads a universe snapshot from a SQLite database file, the
// format the static data export ships in.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the snapshot database read-only.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot %s: %w", path, err)
	}
	logger.Success("Store", fmt.Sprintf("Opened snapshot %s", path))
	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// variant is one query shape to attempt. Snapshots differ slightly
// across releases (optional columns, jumps vs stargates naming), so each
// table carries fallbacks tried in order.
type variant[T any] struct {
	query string
	scan  func(*sql.Rows) (T, error)
}

func sqliteMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

// tableSeq runs the first variant whose shape the snapshot has and
// yields its rows. Scan failures yield *sde.RowError and continue;
// everything else is terminal per the RowSource contract.
func tableSeq[T any](ctx context.Context, db *sql.DB, table string, variants []variant[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		var rows *sql.Rows
		var scan func(*sql.Rows) (T, error)
		for _, v := range variants {
			r, err := db.QueryContext(ctx, v.query)
			if err == nil {
				rows, scan = r, v.scan
				break
			}
			if sqliteMissing(err) {
				continue
			}
			yield(zero, &sde.LoadError{Kind: sde.ErrBadRow, Table: table, Cause: err})
			return
		}
		if rows == nil {
			yield(zero, &sde.LoadError{Kind: sde.ErrMissingTable, Table: table})
			return
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scan(rows)
			if err != nil {
				if !yield(zero, &sde.RowError{Table: table, Cause: err}) {
					return
				}
				continue
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, &sde.LoadError{Kind: sde.ErrBadRow, Table: table, Cause: err})
		}
	}
}

// Regions yields the regions table. The description column is optional.
func (s *SQLite) Regions(ctx context.Context) iter.Seq2[sde.RegionRow, error] {
	return tableSeq(ctx, s.db, "regions", []variant[sde.RegionRow]{
		{
			query: `SELECT id, name, COALESCE(description, '') FROM regions ORDER BY id`,
			scan: func(rows *sql.Rows) (r sde.RegionRow, err error) {
				err = rows.Scan(&r.ID, &r.Name, &r.Description)
				return
			},
		},
		{
			query: `SELECT id, name FROM regions ORDER BY id`,
			scan: func(rows *sql.Rows) (r sde.RegionRow, err error) {
				err = rows.Scan(&r.ID, &r.Name)
				return
			},
		},
	})
}

// Constellations yields the constellations table.
func (s *SQLite) Constellations(ctx context.Context) iter.Seq2[sde.ConstellationRow, error] {
	return tableSeq(ctx, s.db, "constellations", []variant[sde.ConstellationRow]{
		{
			query: `SELECT id, name, region_id FROM constellations ORDER BY id`,
			scan: func(rows *sql.Rows) (c sde.ConstellationRow, err error) {
				err = rows.Scan(&c.ID, &c.Name, &c.RegionID)
				return
			},
		},
	})
}

// Systems yields the solar_systems table. Older snapshots name the
// security column security_status.
func (s *SQLite) Systems(ctx context.Context) iter.Seq2[sde.SystemRow, error] {
	scan := func(rows *sql.Rows) (r sde.SystemRow, err error) {
		err = rows.Scan(&r.ID, &r.Name, &r.X, &r.Y, &r.Z, &r.Security, &r.ConstellationID)
		return
	}
	return tableSeq(ctx, s.db, "solar_systems", []variant[sde.SystemRow]{
		{
			query: `SELECT id, name, x, y, z, security, constellation_id FROM solar_systems ORDER BY id`,
			scan:  scan,
		},
		{
			query: `SELECT id, name, x, y, z, security_status, constellation_id FROM solar_systems ORDER BY id`,
			scan:  scan,
		},
	})
}

// Connections yields the jumps table, falling back to the stargates
// naming. The one_way column is optional and defaults to false.
func (s *SQLite) Connections(ctx context.Context) iter.Seq2[sde.ConnectionRow, error] {
	withFlag := func(rows *sql.Rows) (c sde.ConnectionRow, err error) {
		err = rows.Scan(&c.FromID, &c.ToID, &c.OneWay)
		return
	}
	withoutFlag := func(rows *sql.Rows) (c sde.ConnectionRow, err error) {
		err = rows.Scan(&c.FromID, &c.ToID)
		return
	}
	return tableSeq(ctx, s.db, "jumps", []variant[sde.ConnectionRow]{
		{query: `SELECT from_id, to_id, COALESCE(one_way, 0) FROM jumps ORDER BY from_id, to_id`, scan: withFlag},
		{query: `SELECT from_id, to_id FROM jumps ORDER BY from_id, to_id`, scan: withoutFlag},
		{query: `SELECT from_id, to_id, COALESCE(one_way, 0) FROM stargates ORDER BY from_id, to_id`, scan: withFlag},
		{query: `SELECT from_id, to_id FROM stargates ORDER BY from_id, to_id`, scan: withoutFlag},
	})
}
