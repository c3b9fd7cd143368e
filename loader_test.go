package sapling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Load ---

func TestLoadLeaf(t *testing.T) {
	r := NewRegistry()
	var loads atomic.Int32
	leaf := NewClass(ClassConfig{
		Name: "Leaf",
		OnLoad: func(context.Context, *Registry, *Class) error {
			loads.Add(1)
			return nil
		},
	}, nil)

	assert.True(t, r.IsUnloaded(leaf))
	ok, err := r.Load(t.Context(), leaf)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.IsLoaded(leaf))
	assert.False(t, r.IsUnloaded(leaf))

	ok, err = r.Load(t.Context(), leaf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 1, loads.Load())
}

func TestLoadNilClass(t *testing.T) {
	_, err := NewRegistry().Load(t.Context(), nil)
	var sc *StructuralConstraintError
	assert.True(t, errors.As(err, &sc))
}

func TestLoadDependenciesFirst(t *testing.T) {
	r := NewRegistry()
	var mu sync.Mutex
	var order []string
	hook := func(_ context.Context, _ *Registry, c *Class) error {
		mu.Lock()
		order = append(order, c.Name())
		mu.Unlock()
		return nil
	}
	leaf := NewClass(ClassConfig{Name: "leaf", OnLoad: hook}, nil)
	mid := NewClass(ClassConfig{Name: "mid", OnLoad: hook,
		Tree: func() []Dependency { return []Dependency{Dep("l", leaf)} }}, nil)
	top := NewClass(ClassConfig{Name: "top", OnLoad: hook,
		Tree: func() []Dependency { return []Dependency{Dep("m", mid), Dep("l1", leaf), Dep("l2", leaf)} }}, nil)

	_, err := r.Load(t.Context(), top)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf", "mid", "top"}, order)
	assert.True(t, r.IsLoaded(leaf))
	assert.True(t, r.IsLoaded(mid))
}

func TestLoadConcurrentRunsOnce(t *testing.T) {
	r := NewRegistry()
	var hooks atomic.Int32
	release := make(chan struct{})
	c := NewClass(ClassConfig{
		Name: "slow",
		OnLoad: func(context.Context, *Registry, *Class) error {
			hooks.Add(1)
			<-release
			return nil
		},
	}, nil)

	const n = 16
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.Load(context.Background(), c)
			assert.NoError(t, err)
			results[i] = ok
		}()
	}
	close(release)
	wg.Wait()

	trues := 0
	for _, ok := range results {
		if ok {
			trues++
		}
	}
	assert.Equal(t, 1, trues)
	assert.EqualValues(t, 1, hooks.Load())
	assert.True(t, r.IsLoaded(c))
}

func TestLoadHookFailureLeavesUnloaded(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	fail := true
	c := NewClass(ClassConfig{
		Name: "flaky",
		OnLoad: func(context.Context, *Registry, *Class) error {
			if fail {
				return boom
			}
			return nil
		},
	}, nil)

	_, err := r.Load(t.Context(), c)
	var he *HookError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "load", he.Phase)
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.IsLoaded(c))

	fail = false
	ok, err := r.Load(t.Context(), c)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadCycleFails(t *testing.T) {
	r := NewRegistry()
	var a, b *Class
	a = NewClass(ClassConfig{Name: "A", Tree: func() []Dependency { return []Dependency{Dep("b", b)} }}, nil)
	b = NewClass(ClassConfig{Name: "B", Tree: func() []Dependency { return []Dependency{Dep("a", a)} }}, nil)

	_, err := r.Load(t.Context(), a)
	var ce *CyclicDependencyError
	assert.True(t, errors.As(err, &ce))
	assert.False(t, r.IsLoaded(a))
	assert.False(t, r.IsLoaded(b))
}

func TestLoadEventListeners(t *testing.T) {
	r := NewRegistry()
	c := NewClass(ClassConfig{Name: "c"}, nil)
	var seen atomic.Pointer[Class]
	r.ClassEvents(c).Load.On(func(_ context.Context, k *Class) error {
		assert.False(t, r.IsLoaded(k))
		seen.Store(k)
		return nil
	})
	_, err := r.Load(t.Context(), c)
	require.NoError(t, err)
	assert.Same(t, c, seen.Load())
}

func TestLoadEventListenerError(t *testing.T) {
	r := NewRegistry()
	c := NewClass(ClassConfig{Name: "c"}, nil)
	r.ClassEvents(c).Load.On(func(context.Context, *Class) error { return errors.New("nope") })
	_, err := r.Load(t.Context(), c)
	var he *HookError
	assert.True(t, errors.As(err, &he))
	assert.False(t, r.IsLoaded(c))
}

// --- Unload ---

func TestUnloadCascadesToDependencies(t *testing.T) {
	r := NewRegistry()
	leaf := NewClass(ClassConfig{Name: "leaf"}, nil)
	branch := NewClass(ClassConfig{Name: "branch",
		Tree: func() []Dependency { return []Dependency{Dep("a", leaf)} }}, nil)

	_, err := r.Load(t.Context(), branch)
	require.NoError(t, err)

	var unloads atomic.Int32
	r.ClassEvents(branch).Unload.On(func(context.Context, *Class) error {
		unloads.Add(1)
		return nil
	})

	ok, err := r.Unload(t.Context(), branch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.IsUnloaded(branch))
	assert.True(t, r.IsUnloaded(leaf))
	assert.EqualValues(t, 1, unloads.Load())
	assert.Zero(t, r.ClassEvents(branch).Unload.Len())

	ok, err = r.Unload(t.Context(), branch)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnloadCustomHook(t *testing.T) {
	r := NewRegistry()
	leaf := NewClass(ClassConfig{Name: "leaf"}, nil)
	branch := NewClass(ClassConfig{
		Name:     "branch",
		Tree:     func() []Dependency { return []Dependency{Dep("a", leaf)} },
		OnUnload: func(context.Context, *Registry, *Class) error { return nil },
	}, nil)

	_, err := r.Load(t.Context(), branch)
	require.NoError(t, err)
	_, err = r.Unload(t.Context(), branch)
	require.NoError(t, err)
	assert.True(t, r.IsUnloaded(branch))
	assert.True(t, r.IsLoaded(leaf), "custom hook keeps dependencies loaded")
}

func TestUnloadNotLoaded(t *testing.T) {
	r := NewRegistry()
	ok, err := r.Unload(t.Context(), NewClass(ClassConfig{}, nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnloadedClassBlocksLifecycle(t *testing.T) {
	r := NewRegistry()
	c := probeClass("c", nil)
	p := spawn(t, r, c, "p")
	_, err := r.Unload(t.Context(), c)
	require.NoError(t, err)

	assert.False(t, p.IsLoaded())
	_, err = r.New(c)
	var le *LifecycleOrderError
	assert.True(t, errors.As(err, &le))
}
