package graph

import (
	"container/heap"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// WeightMode selects the shortest-path metric.
type WeightMode int

const (
	// Hops minimizes the number of jumps.
	Hops WeightMode = iota
	// Distance minimizes summed Euclidean distance between systems.
	Distance
)

func (m WeightMode) String() string {
	if m == Distance {
		return "distance"
	}
	return "hops"
}

// Path is a traversal between two systems. Systems includes both
// endpoints; a path from a system to itself has one entry and zero jumps.
type Path struct {
	Systems  []int32
	Jumps    int
	Distance float64
}

type pathKey struct {
	from, to int32
	mode     WeightMode
}

// pathCache is a bounded cache of shortest-path results. It belongs to
// one Universe, so a snapshot swap drops it wholesale.
type pathCache struct {
	lru *lru.Cache[pathKey, Path]
}

func newPathCache(size int) *pathCache {
	cache, err := lru.New[pathKey, Path](size)
	if err != nil {
		// Only reachable with size <= 0, which Build clamps.
		panic(fmt.Sprintf("path cache: %v", err))
	}
	return &pathCache{lru: cache}
}

// ShortestPath finds the cheapest route between two loaded systems.
// Hop-count ties resolve toward lower-ID predecessors, so results are
// stable across calls. Returns ErrUnreachable when no route exists.
func (u *Universe) ShortestPath(from, to int32, mode WeightMode) (Path, error) {
	if _, ok := u.systems[from]; !ok {
		return Path{}, fmt.Errorf("system %d: %w", from, ErrNotFound)
	}
	if _, ok := u.systems[to]; !ok {
		return Path{}, fmt.Errorf("system %d: %w", to, ErrNotFound)
	}
	if from == to {
		return Path{Systems: []int32{from}}, nil
	}

	key := pathKey{from: from, to: to, mode: mode}
	if p, ok := u.paths.lru.Get(key); ok {
		p.Systems = slices.Clone(p.Systems)
		return p, nil
	}

	var (
		parent map[int32]int32
		found  bool
	)
	switch mode {
	case Distance:
		parent, found = u.dijkstra(from, to)
	default:
		parent, found = u.bfs(from, to)
	}
	if !found {
		return Path{}, fmt.Errorf("no route from %d to %d: %w", from, to, ErrUnreachable)
	}

	p := u.reconstruct(from, to, parent)
	u.paths.lru.Add(key, p)
	p.Systems = slices.Clone(p.Systems)
	return p, nil
}

// bfs walks the adjacency in sorted-neighbor order, so the first parent
// recorded for a node is the lowest-ID predecessor at minimal depth.
func (u *Universe) bfs(from, to int32) (map[int32]int32, bool) {
	parent := map[int32]int32{from: from}
	queue := []int32{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			return parent, true
		}
		for _, neighbor := range u.adj[current] {
			if _, seen := parent[neighbor]; seen {
				continue
			}
			parent[neighbor] = current
			queue = append(queue, neighbor)
		}
	}
	return nil, false
}

func (u *Universe) dijkstra(from, to int32) (map[int32]int32, bool) {
	dist := map[int32]float64{from: 0}
	parent := map[int32]int32{from: from}
	done := make(map[int32]bool)

	pq := &priorityQueue{{systemID: from}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if item.systemID == to {
			return parent, true
		}
		if done[item.systemID] {
			continue
		}
		done[item.systemID] = true

		here := u.systems[item.systemID].Coords
		for _, neighbor := range u.adj[item.systemID] {
			if done[neighbor] {
				continue
			}
			nd := item.dist + here.Dist(u.systems[neighbor].Coords)
			if d, ok := dist[neighbor]; !ok || nd < d {
				dist[neighbor] = nd
				parent[neighbor] = item.systemID
				heap.Push(pq, pqItem{systemID: neighbor, dist: nd})
			}
		}
	}
	return nil, false
}

func (u *Universe) reconstruct(from, to int32, parent map[int32]int32) Path {
	var rev []int32
	for at := to; ; at = parent[at] {
		rev = append(rev, at)
		if at == from {
			break
		}
	}
	systems := make([]int32, len(rev))
	for i, id := range rev {
		systems[len(rev)-1-i] = id
	}

	p := Path{Systems: systems, Jumps: len(systems) - 1}
	for i := 1; i < len(systems); i++ {
		p.Distance += u.systems[systems[i-1]].Coords.Dist(u.systems[systems[i]].Coords)
	}
	return p
}

// SystemsWithinJumps returns every system reachable from origin in at
// most maxJumps, mapped to its jump distance. Origin maps to 0.
func (u *Universe) SystemsWithinJumps(origin int32, maxJumps int) (map[int32]int, error) {
	if _, ok := u.systems[origin]; !ok {
		return nil, fmt.Errorf("system %d: %w", origin, ErrNotFound)
	}

	result := map[int32]int{origin: 0}
	queue := []int32{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		dist := result[current]
		if dist >= maxJumps {
			continue
		}
		for _, neighbor := range u.adj[current] {
			if _, visited := result[neighbor]; !visited {
				result[neighbor] = dist + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return result, nil
}

// Priority queue for Dijkstra. Equal distances order by ID so pops are
// deterministic.
type pqItem struct {
	systemID int32
	dist     float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist == pq[j].dist {
		return pq[i].systemID < pq[j].systemID
	}
	return pq[i].dist < pq[j].dist
}
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
