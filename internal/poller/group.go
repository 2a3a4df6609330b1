package poller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runnable is the type-erased view of a Source used by Group.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
	Revalidate()
}

// Group runs independent sources side by side. Sources never coordinate;
// the group only shares their lifetime.
type Group struct {
	sources []Runnable
}

func NewGroup(sources ...Runnable) *Group {
	return &Group{sources: sources}
}

func (g *Group) Add(r Runnable) { g.sources = append(g.sources, r) }

func (g *Group) Sources() []Runnable { return g.sources }

// Run blocks until ctx is done and every source has stopped.
func (g *Group) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, src := range g.sources {
		eg.Go(func() error { return src.Run(egCtx) })
	}
	return eg.Wait()
}

// RevalidateAll asks every source to fetch now.
func (g *Group) RevalidateAll() {
	for _, src := range g.sources {
		src.Revalidate()
	}
}
