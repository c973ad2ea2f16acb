package sde

// Row shapes yielded by a RowSource. These mirror the snapshot's
// relational columns one-to-one; entity structs with resolved
// cross-references live in internal/graph.

// RegionRow is one row of the regions table.
type RegionRow struct {
	ID          int32
	Name        string
	Description string // optional column, empty when absent
}

// ConstellationRow is one row of the constellations table.
type ConstellationRow struct {
	ID       int32
	Name     string
	RegionID int32
}

// SystemRow is one row of the solar_systems table. Coordinates are raw
// snapshot values; the loader applies the configured scale factor.
type SystemRow struct {
	ID              int32
	Name            string
	X, Y, Z         float64
	Security        float64
	ConstellationID int32
}

// ConnectionRow is one row of the jumps/stargates table.
type ConnectionRow struct {
	FromID int32
	ToID   int32
	// OneWay marks a link traversable only From→To. Sources without the
	// column leave it false.
	OneWay bool
}
