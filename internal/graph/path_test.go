package graph

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestShortestPath_SelfIsZeroLength(t *testing.T) {
	u := lineUniverse(t)

	for _, mode := range []WeightMode{Hops, Distance} {
		p, err := u.ShortestPath(100, 100, mode)
		if err != nil {
			t.Fatalf("ShortestPath(100, 100, %v) error = %v", mode, err)
		}
		if p.Jumps != 0 || p.Distance != 0 || !slices.Equal(p.Systems, []int32{100}) {
			t.Errorf("ShortestPath(100, 100, %v) = %+v, want zero-length", mode, p)
		}
	}
}

func TestShortestPath_SingleJump(t *testing.T) {
	u := lineUniverse(t)

	p, err := u.ShortestPath(100, 101, Hops)
	if err != nil {
		t.Fatalf("ShortestPath error = %v", err)
	}
	if p.Jumps != 1 || !slices.Equal(p.Systems, []int32{100, 101}) {
		t.Errorf("ShortestPath(100, 101) = %+v, want one jump", p)
	}
	if math.Abs(p.Distance-10) > 1e-9 {
		t.Errorf("Distance = %g, want 10", p.Distance)
	}
}

func TestShortestPath_Line(t *testing.T) {
	u := lineUniverse(t)

	p, err := u.ShortestPath(100, 102, Hops)
	if err != nil {
		t.Fatalf("ShortestPath error = %v", err)
	}
	if !slices.Equal(p.Systems, []int32{100, 101, 102}) {
		t.Errorf("Systems = %v, want [100 101 102]", p.Systems)
	}
	if p.Jumps != 2 {
		t.Errorf("Jumps = %d, want 2", p.Jumps)
	}
}

func TestShortestPath_Unreachable(t *testing.T) {
	u := lineUniverse(t)

	for _, mode := range []WeightMode{Hops, Distance} {
		_, err := u.ShortestPath(100, 103, mode)
		if !errors.Is(err, ErrUnreachable) {
			t.Errorf("ShortestPath(100, 103, %v) error = %v, want ErrUnreachable", mode, err)
		}
	}
}

func TestShortestPath_UnknownSystem(t *testing.T) {
	u := lineUniverse(t)
	if _, err := u.ShortestPath(100, 999, Hops); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := u.ShortestPath(999, 100, Hops); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// TestShortestPath_HopTieBreak pins the deterministic choice between two
// equal-hop routes through a diamond: the lower-ID middle system wins.
func TestShortestPath_HopTieBreak(t *testing.T) {
	u := makeUniverse(t, []testSystem{
		{100, "A", 0, 0, 0, 1},
		{101, "B", 1, 1, 0, 1},
		{102, "C", 1, -1, 0, 1},
		{103, "D", 2, 0, 0, 1},
	}, []Connection{
		{From: 100, To: 101},
		{From: 100, To: 102},
		{From: 101, To: 103},
		{From: 102, To: 103},
	}, BuildOptions{})

	for i := 0; i < 5; i++ {
		p, err := u.ShortestPath(100, 103, Hops)
		if err != nil {
			t.Fatalf("ShortestPath error = %v", err)
		}
		if !slices.Equal(p.Systems, []int32{100, 101, 103}) {
			t.Fatalf("Systems = %v, want deterministic [100 101 103]", p.Systems)
		}
	}
}

// TestShortestPath_ModesDiffer uses a short-hop long-distance detour:
// hop mode routes through the far waypoint, distance mode walks the
// chain of close systems.
func TestShortestPath_ModesDiffer(t *testing.T) {
	u := makeUniverse(t, []testSystem{
		{100, "A", 0, 0, 0, 1},
		{101, "B", 1, 0, 0, 1},
		{102, "C", 2, 0, 0, 1},
		{103, "D", 3, 0, 0, 1},
		{110, "Waypoint", 0, 100, 0, 1},
	}, []Connection{
		{From: 100, To: 101},
		{From: 101, To: 102},
		{From: 102, To: 103},
		{From: 100, To: 110},
		{From: 110, To: 103},
	}, BuildOptions{})

	hops, err := u.ShortestPath(100, 103, Hops)
	if err != nil {
		t.Fatalf("ShortestPath(hops) error = %v", err)
	}
	if hops.Jumps != 2 || !slices.Equal(hops.Systems, []int32{100, 110, 103}) {
		t.Errorf("hops path = %+v, want via 110", hops)
	}

	dist, err := u.ShortestPath(100, 103, Distance)
	if err != nil {
		t.Fatalf("ShortestPath(distance) error = %v", err)
	}
	if !slices.Equal(dist.Systems, []int32{100, 101, 102, 103}) {
		t.Errorf("distance path = %v, want [100 101 102 103]", dist.Systems)
	}
	if math.Abs(dist.Distance-3) > 1e-9 {
		t.Errorf("distance = %g, want 3", dist.Distance)
	}
}

func TestShortestPath_CacheIsStable(t *testing.T) {
	u := lineUniverse(t)

	first, err := u.ShortestPath(100, 102, Hops)
	if err != nil {
		t.Fatalf("ShortestPath error = %v", err)
	}
	// Mutating a returned path must not corrupt later results.
	first.Systems[0] = 9999

	second, err := u.ShortestPath(100, 102, Hops)
	if err != nil {
		t.Fatalf("ShortestPath error = %v", err)
	}
	if !slices.Equal(second.Systems, []int32{100, 101, 102}) {
		t.Errorf("cached Systems = %v, want [100 101 102]", second.Systems)
	}
}

func TestShortestPath_RespectsOneWay(t *testing.T) {
	u := makeUniverse(t, []testSystem{
		{100, "A", 0, 0, 0, 1},
		{101, "B", 1, 0, 0, 1},
	}, []Connection{
		{From: 100, To: 101, OneWay: true},
	}, BuildOptions{})

	if _, err := u.ShortestPath(100, 101, Hops); err != nil {
		t.Errorf("forward route error = %v", err)
	}
	if _, err := u.ShortestPath(101, 100, Hops); !errors.Is(err, ErrUnreachable) {
		t.Errorf("reverse route error = %v, want ErrUnreachable", err)
	}
}

func TestSystemsWithinJumps(t *testing.T) {
	u := lineUniverse(t)

	got, err := u.SystemsWithinJumps(100, 1)
	if err != nil {
		t.Fatalf("SystemsWithinJumps error = %v", err)
	}
	want := map[int32]int{100: 0, 101: 1}
	if len(got) != len(want) {
		t.Fatalf("SystemsWithinJumps = %v, want %v", got, want)
	}
	for id, dist := range want {
		if got[id] != dist {
			t.Errorf("distance[%d] = %d, want %d", id, got[id], dist)
		}
	}

	if _, err := u.SystemsWithinJumps(999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("SystemsWithinJumps(999) error = %v, want ErrNotFound", err)
	}
}
