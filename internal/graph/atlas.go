package graph

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Atlas holds the current universe and manages snapshot replacement.
// It has exactly two states: unloaded (no successful load yet, queries
// fail with ErrNotReady) and loaded. A successful reload swaps the whole
// graph with one atomic pointer store; readers in flight keep the old
// universe, new callers see the new one, and nobody observes a partial
// build. There is no way back to unloaded short of process exit.
type Atlas struct {
	current atomic.Pointer[Universe]
	group   singleflight.Group
}

// NewAtlas returns an Atlas in the unloaded state.
func NewAtlas() *Atlas {
	return &Atlas{}
}

// Current returns the loaded universe, or ErrNotReady before the first
// successful load.
func (a *Atlas) Current() (*Universe, error) {
	u := a.current.Load()
	if u == nil {
		return nil, ErrNotReady
	}
	return u, nil
}

// Ready reports whether a universe has been loaded.
func (a *Atlas) Ready() bool {
	return a.current.Load() != nil
}

// Swap installs a fully built universe.
func (a *Atlas) Swap(u *Universe) {
	a.current.Store(u)
}

// Reload runs load and, on success, atomically installs the result. On
// failure the previous universe (if any) stays visible untouched.
// Concurrent calls coalesce into a single load. The load itself runs
// detached from ctx's cancellation: coalesced followers share one load,
// and the first caller hanging up must not fail the rest.
func (a *Atlas) Reload(ctx context.Context, load func(context.Context) (*Universe, error)) (*Universe, error) {
	v, err, _ := a.group.Do("reload", func() (interface{}, error) {
		u, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		a.Swap(u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Universe), nil
}
