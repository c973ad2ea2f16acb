package graph

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Point3 is a 3D coordinate in scaled snapshot units.
type Point3 struct {
	X, Y, Z float64
}

// Dist returns the Euclidean distance to q.
func (p Point3) Dist(q Point3) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Box is an axis-aligned bounding volume with inclusive bounds.
type Box struct {
	Min, Max Point3
}

// Contains reports whether p falls inside the box.
func (b Box) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// normalized returns the box with min/max swapped where needed, so
// callers may pass corners in any order.
func (b Box) normalized() Box {
	if b.Min.X > b.Max.X {
		b.Min.X, b.Max.X = b.Max.X, b.Min.X
	}
	if b.Min.Y > b.Max.Y {
		b.Min.Y, b.Max.Y = b.Max.Y, b.Min.Y
	}
	if b.Min.Z > b.Max.Z {
		b.Min.Z, b.Max.Z = b.Max.Z, b.Min.Z
	}
	return b
}

// Region is a loaded region. Constellations is sorted ascending.
type Region struct {
	ID             int32
	Name           string
	Description    string
	Constellations []int32
}

// Constellation is a loaded constellation. Systems is sorted ascending.
type Constellation struct {
	ID       int32
	Name     string
	RegionID int32
	Systems  []int32
}

// SolarSystem is a loaded solar system. Connections are not embedded;
// they live in the universe's adjacency index, keyed by system ID.
type SolarSystem struct {
	ID              int32
	Name            string
	Coords          Point3
	Security        float64
	ConstellationID int32
}

// Connection is one validated link between two loaded systems.
type Connection struct {
	From, To int32
	OneWay   bool
}

// Universe is the immutable, fully cross-referenced snapshot graph.
// Everything is built in one pass by Build; readers need no locking.
type Universe struct {
	regions        map[int32]*Region
	constellations map[int32]*Constellation
	systems        map[int32]*SolarSystem

	// adj maps system ID to its neighbor IDs, sorted ascending. The
	// sort order makes traversal tie-breaks deterministic.
	adj map[int32][]int32

	// Sorted ID slices for deterministic iteration and search order.
	regionIDs        []int32
	constellationIDs []int32
	systemIDs        []int32

	// systemRegion is the derived system→region back-reference.
	systemRegion map[int32]int32

	// Lowercase exact-name dictionaries.
	regionByName        map[string]int32
	constellationByName map[string]int32
	systemByName        map[string]int32

	// extents holds the coordinate bounding box of each region's systems.
	extents map[int32]Box

	grid  *grid
	paths *pathCache

	directed        bool
	connectionCount int
}

// BuildInput is the validated entity set produced by the loader.
type BuildInput struct {
	Regions        map[int32]*Region
	Constellations map[int32]*Constellation
	Systems        map[int32]*SolarSystem
	Connections    []Connection
}

// BuildOptions tunes index construction.
type BuildOptions struct {
	// Directed keeps connections as given; otherwise every connection
	// without the OneWay flag is mirrored.
	Directed bool
	// GridCellSize is the spatial cell edge length; zero picks a default.
	GridCellSize float64
	// PathCacheSize bounds the shortest-path cache; zero picks a default.
	PathCacheSize int
}

const (
	defaultGridCellSize  = 5.0
	defaultPathCacheSize = 4096
)

// Build assembles all indices in one pass. It assumes the loader already
// validated referential integrity; Build never fails and the result is
// immutable from here on.
func Build(in BuildInput, opts BuildOptions) *Universe {
	cell := opts.GridCellSize
	if cell <= 0 {
		cell = defaultGridCellSize
	}
	cacheSize := opts.PathCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultPathCacheSize
	}

	u := &Universe{
		regions:             in.Regions,
		constellations:      in.Constellations,
		systems:             in.Systems,
		adj:                 make(map[int32][]int32, len(in.Systems)),
		systemRegion:        make(map[int32]int32, len(in.Systems)),
		regionByName:        make(map[string]int32, len(in.Regions)),
		constellationByName: make(map[string]int32, len(in.Constellations)),
		systemByName:        make(map[string]int32, len(in.Systems)),
		extents:             make(map[int32]Box, len(in.Regions)),
		grid:                newGrid(cell),
		paths:               newPathCache(cacheSize),
		directed:            opts.Directed,
		connectionCount:     len(in.Connections),
	}

	for id, r := range in.Regions {
		u.regionIDs = append(u.regionIDs, id)
		u.regionByName[strings.ToLower(r.Name)] = id
	}
	slices.Sort(u.regionIDs)

	for id, c := range in.Constellations {
		u.constellationIDs = append(u.constellationIDs, id)
		u.constellationByName[strings.ToLower(c.Name)] = id
		if r := in.Regions[c.RegionID]; r != nil {
			r.Constellations = append(r.Constellations, id)
		}
	}
	slices.Sort(u.constellationIDs)
	for _, r := range in.Regions {
		slices.Sort(r.Constellations)
	}

	for id, s := range in.Systems {
		u.systemIDs = append(u.systemIDs, id)
		u.systemByName[strings.ToLower(s.Name)] = id
		if c := in.Constellations[s.ConstellationID]; c != nil {
			c.Systems = append(c.Systems, id)
			u.systemRegion[id] = c.RegionID
		}
		u.grid.insert(id, s.Coords)
		u.growExtent(u.systemRegion[id], s.Coords)
	}
	slices.Sort(u.systemIDs)
	for _, c := range in.Constellations {
		slices.Sort(c.Systems)
	}

	for _, conn := range in.Connections {
		u.adj[conn.From] = append(u.adj[conn.From], conn.To)
		if !opts.Directed && !conn.OneWay {
			u.adj[conn.To] = append(u.adj[conn.To], conn.From)
		}
	}
	for id, neighbors := range u.adj {
		slices.Sort(neighbors)
		u.adj[id] = slices.Compact(neighbors)
	}

	return u
}

func (u *Universe) growExtent(regionID int32, p Point3) {
	box, ok := u.extents[regionID]
	if !ok {
		u.extents[regionID] = Box{Min: p, Max: p}
		return
	}
	box.Min.X = math.Min(box.Min.X, p.X)
	box.Min.Y = math.Min(box.Min.Y, p.Y)
	box.Min.Z = math.Min(box.Min.Z, p.Z)
	box.Max.X = math.Max(box.Max.X, p.X)
	box.Max.Y = math.Max(box.Max.Y, p.Y)
	box.Max.Z = math.Max(box.Max.Z, p.Z)
	u.extents[regionID] = box
}

// Region returns the region with the given ID.
func (u *Universe) Region(id int32) (*Region, error) {
	r, ok := u.regions[id]
	if !ok {
		return nil, fmt.Errorf("region %d: %w", id, ErrNotFound)
	}
	return r, nil
}

// Constellation returns the constellation with the given ID.
func (u *Universe) Constellation(id int32) (*Constellation, error) {
	c, ok := u.constellations[id]
	if !ok {
		return nil, fmt.Errorf("constellation %d: %w", id, ErrNotFound)
	}
	return c, nil
}

// System returns the solar system with the given ID.
func (u *Universe) System(id int32) (*SolarSystem, error) {
	s, ok := u.systems[id]
	if !ok {
		return nil, fmt.Errorf("system %d: %w", id, ErrNotFound)
	}
	return s, nil
}

// Neighbors returns the IDs directly connected to the given system,
// sorted ascending. A system with no connections yields an empty slice.
func (u *Universe) Neighbors(id int32) ([]int32, error) {
	if _, ok := u.systems[id]; !ok {
		return nil, fmt.Errorf("system %d: %w", id, ErrNotFound)
	}
	return slices.Clone(u.adj[id]), nil
}

// SystemRegionID returns the region a system belongs to, derived through
// its constellation.
func (u *Universe) SystemRegionID(id int32) (int32, error) {
	regionID, ok := u.systemRegion[id]
	if !ok {
		return 0, fmt.Errorf("system %d: %w", id, ErrNotFound)
	}
	return regionID, nil
}

// RegionExtent returns the bounding box of all system coordinates in a
// region, for map framing.
func (u *Universe) RegionExtent(id int32) (Box, error) {
	if _, ok := u.regions[id]; !ok {
		return Box{}, fmt.Errorf("region %d: %w", id, ErrNotFound)
	}
	box, ok := u.extents[id]
	if !ok {
		return Box{}, fmt.Errorf("region %d has no systems: %w", id, ErrNotFound)
	}
	return box, nil
}

// RegionIDByName returns the region with the given exact name,
// case-insensitively.
func (u *Universe) RegionIDByName(name string) (int32, bool) {
	id, ok := u.regionByName[strings.ToLower(name)]
	return id, ok
}

// ConstellationIDByName returns the constellation with the given exact
// name, case-insensitively.
func (u *Universe) ConstellationIDByName(name string) (int32, bool) {
	id, ok := u.constellationByName[strings.ToLower(name)]
	return id, ok
}

// SystemIDByName returns the system with the given exact name,
// case-insensitively.
func (u *Universe) SystemIDByName(name string) (int32, bool) {
	id, ok := u.systemByName[strings.ToLower(name)]
	return id, ok
}

// RegionCount returns the number of loaded regions.
func (u *Universe) RegionCount() int { return len(u.regions) }

// ConstellationCount returns the number of loaded constellations.
func (u *Universe) ConstellationCount() int { return len(u.constellations) }

// SystemCount returns the number of loaded systems.
func (u *Universe) SystemCount() int { return len(u.systems) }

// ConnectionCount returns the number of loaded connection rows.
func (u *Universe) ConnectionCount() int { return u.connectionCount }

// Directed reports whether connections were inserted as stored rather
// than mirrored.
func (u *Universe) Directed() bool { return u.directed }
