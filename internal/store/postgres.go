package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"starmap/internal/logger"
	"starmap/internal/sde"
)

// Postgres reads a universe snapshot from a Postgres database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the snapshot database.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	logger.Success("Store", "Connected to postgres snapshot")
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// pgVariant is one query shape to attempt, mirroring the SQLite source's
// fallback handling for optional columns and table naming.
type pgVariant[T any] struct {
	query string
	scan  func(pgx.Rows) (T, error)
}

// pgMissing reports undefined-table (42P01) or undefined-column (42703).
func pgMissing(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42P01" || pgErr.Code == "42703"
}

// probe checks a query's shape without transferring rows, so variant
// selection never consumes part of a result set.
func (p *Postgres) probe(ctx context.Context, query string) error {
	rows, err := p.pool.Query(ctx, "SELECT * FROM ("+query+") AS probe LIMIT 0")
	if err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

func pgTableSeq[T any](ctx context.Context, p *Postgres, table string, variants []pgVariant[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		var chosen *pgVariant[T]
		for i := range variants {
			err := p.probe(ctx, variants[i].query)
			if err == nil {
				chosen = &variants[i]
				break
			}
			if pgMissing(err) {
				continue
			}
			yield(zero, &sde.LoadError{Kind: sde.ErrBadRow, Table: table, Cause: err})
			return
		}
		if chosen == nil {
			yield(zero, &sde.LoadError{Kind: sde.ErrMissingTable, Table: table})
			return
		}

		rows, err := p.pool.Query(ctx, chosen.query)
		if err != nil {
			yield(zero, &sde.LoadError{Kind: sde.ErrBadRow, Table: table, Cause: err})
			return
		}
		defer rows.Close()

		for rows.Next() {
			row, err := chosen.scan(rows)
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

// Regions yields the regions table.
func (p *Postgres) Regions(ctx context.Context) iter.Seq2[sde.RegionRow, error] {
	return pgTableSeq(ctx, p, "regions", []pgVariant[sde.RegionRow]{
		{
			query: `SELECT id, name, COALESCE(description, '') FROM regions ORDER BY id`,
			scan: func(rows pgx.Rows) (r sde.RegionRow, err error) {
				err = rows.Scan(&r.ID, &r.Name, &r.Description)
				return
			},
		},
		{
			query: `SELECT id, name FROM regions ORDER BY id`,
			scan: func(rows pgx.Rows) (r sde.RegionRow, err error) {
				err = rows.Scan(&r.ID, &r.Name)
				return
			},
		},
	})
}

// Constellations yields the constellations table.
func (p *Postgres) Constellations(ctx context.Context) iter.Seq2[sde.ConstellationRow, error] {
	return pgTableSeq(ctx, p, "constellations", []pgVariant[sde.ConstellationRow]{
		{
			query: `SELECT id, name, region_id FROM constellations ORDER BY id`,
			scan: func(rows pgx.Rows) (c sde.ConstellationRow, err error) {
				err = rows.Scan(&c.ID, &c.Name, &c.RegionID)
				return
			},
		},
	})
}

// Systems yields the solar_systems table.
func (p *Postgres) Systems(ctx context.Context) iter.Seq2[sde.SystemRow, error] {
	scan := func(rows pgx.Rows) (r sde.SystemRow, err error) {
		err = rows.Scan(&r.ID, &r.Name, &r.X, &r.Y, &r.Z, &r.Security, &r.ConstellationID)
		return
	}
	return pgTableSeq(ctx, p, "solar_systems", []pgVariant[sde.SystemRow]{
		{query: `SELECT id, name, x, y, z, security, constellation_id FROM solar_systems ORDER BY id`, scan: scan},
		{query: `SELECT id, name, x, y, z, security_status, constellation_id FROM solar_systems ORDER BY id`, scan: scan},
	})
}

// Connections yields the jumps table, falling back to stargates naming.
func (p *Postgres) Connections(ctx context.Context) iter.Seq2[sde.ConnectionRow, error] {
	withFlag := func(rows pgx.Rows) (c sde.ConnectionRow, err error) {
		err = rows.Scan(&c.FromID, &c.ToID, &c.OneWay)
		return
	}
	withoutFlag := func(rows pgx.Rows) (c sde.ConnectionRow, err error) {
		err = rows.Scan(&c.FromID, &c.ToID)
		return
	}
	return pgTableSeq(ctx, p, "jumps", []pgVariant[sde.ConnectionRow]{
		{query: `SELECT from_id, to_id, COALESCE(one_way, FALSE) FROM jumps ORDER BY from_id, to_id`, scan: withFlag},
		{query: `SELECT from_id, to_id FROM jumps ORDER BY from_id, to_id`, scan: withoutFlag},
		{query: `SELECT from_id, to_id, COALESCE(one_way, FALSE) FROM stargates ORDER BY from_id, to_id`, scan: withFlag},
		{query: `SELECT from_id, to_id FROM stargates ORDER BY from_id, to_id`, scan: withoutFlag},
	})
}
