package graph

import (
	"math"
	"slices"
)

// grid is a uniform hash grid over system coordinates. Systems hash into
// fixed-size cubic cells; a bounding-box query touches only the cells the
// box overlaps, so viewport lookups stay far below a full scan.
type grid struct {
	cell   float64
	cells  map[cellKey][]int32
	points map[int32]Point3
}

type cellKey struct {
	x, y, z int32
}

func newGrid(cell float64) *grid {
	return &grid{
		cell:   cell,
		cells:  make(map[cellKey][]int32),
		points: make(map[int32]Point3),
	}
}

func (g *grid) keyFor(p Point3) cellKey {
	return cellKey{
		x: g.cellCoord(p.X),
		y: g.cellCoord(p.Y),
		z: g.cellCoord(p.Z),
	}
}

// cellCoord saturates at the int32 range. Converting an out-of-range
// float to int32 is implementation-defined, and an overflowed key would
// make a huge box miss every cell; clamped corners cover the whole grid
// instead.
func (g *grid) cellCoord(v float64) int32 {
	f := math.Floor(v / g.cell)
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(f)
}

func (g *grid) insert(id int32, p Point3) {
	k := g.keyFor(p)
	g.cells[k] = append(g.cells[k], id)
	g.points[id] = p
}

// search returns the IDs of all points inside b, sorted ascending.
func (g *grid) search(b Box) []int32 {
	lo := g.keyFor(b.Min)
	hi := g.keyFor(b.Max)

	var out []int32
	appendMatches := func(ids []int32) {
		for _, id := range ids {
			if b.Contains(g.points[id]) {
				out = append(out, id)
			}
		}
	}

	// A huge box can cover more candidate cells than exist; walking the
	// occupied cells is cheaper then.
	nx := int64(hi.x) - int64(lo.x) + 1
	ny := int64(hi.y) - int64(lo.y) + 1
	nz := int64(hi.z) - int64(lo.z) + 1
	if span, overflow := cellSpan(nx, ny, nz); overflow || span > int64(len(g.cells)) {
		for k, ids := range g.cells {
			if k.x < lo.x || k.x > hi.x || k.y < lo.y || k.y > hi.y || k.z < lo.z || k.z > hi.z {
				continue
			}
			appendMatches(ids)
		}
	} else {
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				for z := lo.z; z <= hi.z; z++ {
					appendMatches(g.cells[cellKey{x, y, z}])
				}
			}
		}
	}

	slices.Sort(out)
	return out
}

func cellSpan(nx, ny, nz int64) (int64, bool) {
	const limit = int64(1) << 40
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return 0, true
	}
	if nx > limit/ny {
		return 0, true
	}
	span := nx * ny
	if span > limit/nz {
		return 0, true
	}
	return span * nz, false
}

// SystemsInBounds returns all systems whose coordinates fall inside the
// box, sorted ascending by ID. Corners may be given in any order.
func (u *Universe) SystemsInBounds(b Box) []int32 {
	return u.grid.search(b.normalized())
}
