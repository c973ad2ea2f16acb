package graph

import (
	"iter"
	"strings"
)

// EntityKind tags a search match. The entity set is closed: the snapshot
// schema defines exactly these three named types.
type EntityKind int

const (
	KindRegion EntityKind = iota
	KindConstellation
	KindSystem
)

func (k EntityKind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindConstellation:
		return "constellation"
	case KindSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Scope restricts a name search to one entity type.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeRegions
	ScopeConstellations
	ScopeSystems
)

// ParseScope maps a scope name to its Scope. Empty means ScopeAll.
func ParseScope(s string) (Scope, bool) {
	switch strings.ToLower(s) {
	case "", "all":
		return ScopeAll, true
	case "region", "regions":
		return ScopeRegions, true
	case "constellation", "constellations":
		return ScopeConstellations, true
	case "system", "systems":
		return ScopeSystems, true
	default:
		return ScopeAll, false
	}
}

// Match is one name-search hit.
type Match struct {
	Kind EntityKind
	ID   int32
	Name string
}

// Search returns a case-insensitive substring search over entity names.
// The sequence is finite, ordered by ID within each kind (regions, then
// constellations, then systems), and restartable: every range over it
// runs the search afresh.
func (u *Universe) Search(substring string, scope Scope) iter.Seq[Match] {
	needle := strings.ToLower(substring)
	return func(yield func(Match) bool) {
		if scope == ScopeAll || scope == ScopeRegions {
			for _, id := range u.regionIDs {
				r := u.regions[id]
				if strings.Contains(strings.ToLower(r.Name), needle) {
					if !yield(Match{Kind: KindRegion, ID: id, Name: r.Name}) {
						return
					}
				}
			}
		}
		if scope == ScopeAll || scope == ScopeConstellations {
			for _, id := range u.constellationIDs {
				c := u.constellations[id]
				if strings.Contains(strings.ToLower(c.Name), needle) {
					if !yield(Match{Kind: KindConstellation, ID: id, Name: c.Name}) {
						return
					}
				}
			}
		}
		if scope == ScopeAll || scope == ScopeSystems {
			for _, id := range u.systemIDs {
				s := u.systems[id]
				if strings.Contains(strings.ToLower(s.Name), needle) {
					if !yield(Match{Kind: KindSystem, ID: id, Name: s.Name}) {
						return
					}
				}
			}
		}
	}
}
