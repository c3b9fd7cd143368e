package sapling

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLog routes the package logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	SetDebugMode(true)
	t.Cleanup(func() { SetDebugMode(false) })
	buf := captureLog(t)

	r := NewRegistry()
	c := probeClass("c", nil)
	cur := spawn(t, r, c, "n0")
	for i := 1; i <= debugMaxTreeDepth; i++ {
		kid := spawn(t, r, c, fmt.Sprintf("n%d", i))
		require.NoError(t, cur.AddChild(kid, "", End))
		cur = kid
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "tree depth exceeds threshold"))
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	SetDebugMode(true)
	t.Cleanup(func() { SetDebugMode(false) })
	buf := captureLog(t)

	r := NewRegistry()
	c := NewClass(ClassConfig{Name: "c"}, nil)
	_, err := r.Load(t.Context(), c)
	require.NoError(t, err)
	newInited := func(name string) Node {
		n, err := r.New(c)
		require.NoError(t, err)
		require.NoError(t, n.AsNode().SetName(name))
		_, err = n.AsNode().Init(t.Context())
		require.NoError(t, err)
		return n
	}

	parent := newInited("parent").AsNode()
	for i := range debugMaxChildCount + 1 {
		require.NoError(t, parent.AddChild(newInited(fmt.Sprintf("k%d", i)), "", End))
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "too many children"))
}

func TestDebugMode_OffIsSilent(t *testing.T) {
	buf := captureLog(t)
	r := NewRegistry()
	c := probeClass("c", nil)
	cur := spawn(t, r, c, "n0")
	for i := 1; i <= debugMaxTreeDepth+2; i++ {
		kid := spawn(t, r, c, fmt.Sprintf("n%d", i))
		require.NoError(t, cur.AddChild(kid, "", End))
		cur = kid
	}
	assert.NotContains(t, buf.String(), "threshold")
}
