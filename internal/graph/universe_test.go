package graph

import (
	"errors"
	"slices"
	"testing"
)

// testSystem is a shorthand fixture row.
type testSystem struct {
	id       int32
	name     string
	x, y, z  float64
	security float64
}

// makeUniverse builds a universe with one region and one constellation
// holding all the given systems.
func makeUniverse(t *testing.T, systems []testSystem, conns []Connection, opts BuildOptions) *Universe {
	t.Helper()

	regions := map[int32]*Region{
		1: {ID: 1, Name: "Domain", Description: "Amarr core space"},
	}
	constellations := map[int32]*Constellation{
		10: {ID: 10, Name: "Throne Worlds", RegionID: 1},
	}
	systemMap := make(map[int32]*SolarSystem, len(systems))
	for _, s := range systems {
		systemMap[s.id] = &SolarSystem{
			ID:              s.id,
			Name:            s.name,
			Coords:          Point3{X: s.x, Y: s.y, Z: s.z},
			Security:        s.security,
			ConstellationID: 10,
		}
	}
	return Build(BuildInput{
		Regions:        regions,
		Constellations: constellations,
		Systems:        systemMap,
		Connections:    conns,
	}, opts)
}

func lineUniverse(t *testing.T) *Universe {
	// 100 - 101 - 102, plus isolated 103.
	return makeUniverse(t, []testSystem{
		{100, "Amarr", 0, 0, 0, 1.0},
		{101, "Ashab", 10, 0, 0, 0.9},
		{102, "Sarum Prime", 20, 0, 0, 0.9},
		{103, "Far Away", 100, 100, 100, 0.1},
	}, []Connection{
		{From: 100, To: 101},
		{From: 101, To: 102},
	}, BuildOptions{})
}

func TestUniverse_Lookups(t *testing.T) {
	u := lineUniverse(t)

	r, err := u.Region(1)
	if err != nil {
		t.Fatalf("Region(1) error = %v", err)
	}
	if r.Name != "Domain" {
		t.Errorf("Region(1).Name = %q, want Domain", r.Name)
	}

	c, err := u.Constellation(10)
	if err != nil {
		t.Fatalf("Constellation(10) error = %v", err)
	}
	if c.RegionID != 1 {
		t.Errorf("Constellation(10).RegionID = %d, want 1", c.RegionID)
	}
	if !slices.Equal(c.Systems, []int32{100, 101, 102, 103}) {
		t.Errorf("Constellation(10).Systems = %v, want sorted [100..103]", c.Systems)
	}

	s, err := u.System(100)
	if err != nil {
		t.Fatalf("System(100) error = %v", err)
	}
	if s.Name != "Amarr" || s.Security != 1.0 {
		t.Errorf("System(100) = %+v", s)
	}
}

func TestUniverse_NotFound(t *testing.T) {
	u := lineUniverse(t)

	if _, err := u.Region(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Region(999) error = %v, want ErrNotFound", err)
	}
	if _, err := u.Constellation(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Constellation(999) error = %v, want ErrNotFound", err)
	}
	if _, err := u.System(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("System(999) error = %v, want ErrNotFound", err)
	}
	if _, err := u.Neighbors(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Neighbors(999) error = %v, want ErrNotFound", err)
	}
}

func TestUniverse_NeighborsSortedAndDeduped(t *testing.T) {
	u := makeUniverse(t, []testSystem{
		{100, "A", 0, 0, 0, 1},
		{101, "B", 1, 0, 0, 1},
		{102, "C", 2, 0, 0, 1},
	}, []Connection{
		// Duplicate link rows collapse; neighbor order is by ID.
		{From: 100, To: 102},
		{From: 100, To: 101},
		{From: 101, To: 100},
	}, BuildOptions{})

	neighbors, err := u.Neighbors(100)
	if err != nil {
		t.Fatalf("Neighbors(100) error = %v", err)
	}
	if !slices.Equal(neighbors, []int32{101, 102}) {
		t.Errorf("Neighbors(100) = %v, want [101 102]", neighbors)
	}
}

func TestUniverse_NeighborsEmptyNotError(t *testing.T) {
	u := lineUniverse(t)
	neighbors, err := u.Neighbors(103)
	if err != nil {
		t.Fatalf("Neighbors(103) error = %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("Neighbors(103) = %v, want empty", neighbors)
	}
}

func TestUniverse_NameDictionaries(t *testing.T) {
	u := lineUniverse(t)

	if id, ok := u.SystemIDByName("amarr"); !ok || id != 100 {
		t.Errorf("SystemIDByName(amarr) = %d, %v", id, ok)
	}
	if id, ok := u.RegionIDByName("DOMAIN"); !ok || id != 1 {
		t.Errorf("RegionIDByName(DOMAIN) = %d, %v", id, ok)
	}
	if id, ok := u.ConstellationIDByName("Throne Worlds"); !ok || id != 10 {
		t.Errorf("ConstellationIDByName = %d, %v", id, ok)
	}
	if _, ok := u.SystemIDByName("nowhere"); ok {
		t.Error("SystemIDByName(nowhere) unexpectedly found")
	}
}

func TestUniverse_RegionExtent(t *testing.T) {
	u := lineUniverse(t)

	box, err := u.RegionExtent(1)
	if err != nil {
		t.Fatalf("RegionExtent(1) error = %v", err)
	}
	want := Box{Min: Point3{0, 0, 0}, Max: Point3{100, 100, 100}}
	if box != want {
		t.Errorf("RegionExtent(1) = %+v, want %+v", box, want)
	}

	if _, err := u.RegionExtent(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("RegionExtent(999) error = %v, want ErrNotFound", err)
	}
}

func TestUniverse_SystemRegionID(t *testing.T) {
	u := lineUniverse(t)
	regionID, err := u.SystemRegionID(102)
	if err != nil {
		t.Fatalf("SystemRegionID(102) error = %v", err)
	}
	if regionID != 1 {
		t.Errorf("SystemRegionID(102) = %d, want 1", regionID)
	}
}
