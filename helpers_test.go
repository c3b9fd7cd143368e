package sapling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder collects hook and event names in call order.
type recorder struct {
	calls []string
}

func (r *recorder) add(s string) { r.calls = append(r.calls, s) }

// probe is a node that records its hooks and can be told to fail them.
type probe struct {
	NodeBase
	rec         *recorder
	failInit    error
	failDestroy error
}

func (p *probe) OnInit(context.Context) error {
	if p.rec != nil {
		p.rec.add("init " + p.Path())
	}
	return p.failInit
}

func (p *probe) OnReady() {
	if p.rec != nil {
		p.rec.add("ready " + p.Path())
	}
}

func (p *probe) OnDestroy(context.Context) error {
	if p.rec != nil {
		p.rec.add("destroy " + p.Path())
	}
	return p.failDestroy
}

func probeClass(name string, rec *recorder, deps ...Dependency) *Class {
	cfg := ClassConfig{Name: name}
	if len(deps) > 0 {
		cfg.Tree = func() []Dependency { return deps }
	}
	return NewClass(cfg, func() Node { return &probe{rec: rec} })
}

// spawn loads c, creates an instance named name and inits it.
func spawn(t *testing.T, r *Registry, c *Class, name string) *probe {
	t.Helper()
	ctx := context.Background()
	_, err := r.Load(ctx, c)
	require.NoError(t, err)
	p, err := New[*probe](r, c)
	require.NoError(t, err)
	if name != "" {
		require.NoError(t, p.SetName(name))
	}
	ok, err := p.Init(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	return p
}

// names returns the names of the nodes in seq order.
func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.AsNode().Name()
	}
	return out
}
