package dag

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	id   string
	deps []string
}

func (n testNode) NodeID() string     { return n.id }
func (n testNode) NodeDeps() []string { return n.deps }

func node(id string, deps ...string) testNode {
	return testNode{id: id, deps: deps}
}

func TestNew_DetectsCycles(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		nodes    []testNode
		wantPath []string
	}{
		"three node cycle": {
			nodes:    []testNode{node("A", "B"), node("B", "C"), node("C", "A")},
			wantPath: []string{"A", "B", "C", "A"},
		},
		"self dependency": {
			nodes:    []testNode{node("A", "A")},
			wantPath: []string{"A", "A"},
		},
		"cycle behind an acyclic prefix": {
			nodes:    []testNode{node("root", "X"), node("X", "Y"), node("Y", "Z"), node("Z", "X")},
			wantPath: []string{"X", "Y", "Z", "X"},
		},
		"two node cycle": {
			nodes:    []testNode{node("lint", "format"), node("format", "lint")},
			wantPath: []string{"lint", "format", "lint"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := New("task", tt.nodes)
			require.Error(t, err)

			var cycleErr *CycleError
			require.True(t, errors.As(err, &cycleErr), "expected CycleError, got %T", err)
			assert.Equal(t, tt.wantPath, cycleErr.Path)
			assert.Equal(t, tt.wantPath[0], cycleErr.Path[len(cycleErr.Path)-1], "cycle must close on its first node")
		})
	}
}

func TestNew_MissingDependency(t *testing.T) {
	t.Parallel()

	_, err := New("stage", []testNode{node("lint"), node("test", "lint", "build")})
	require.Error(t, err)

	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "test", missing.Owner)
	assert.Equal(t, "build", missing.Dependency)
	assert.Contains(t, err.Error(), `stage "test"`)
	assert.Contains(t, err.Error(), `"build"`)
}

func TestNew_MissingDependencyReportedBeforeCycle(t *testing.T) {
	t.Parallel()

	_, err := New("task", []testNode{node("A", "B"), node("B", "A", "ghost")})
	var missing *MissingDependencyError
	assert.True(t, errors.As(err, &missing))
}

func TestNew_DuplicateNode(t *testing.T) {
	t.Parallel()

	_, err := New("task", []testNode{node("lint"), node("lint")})
	var dup *DuplicateNodeError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "lint", dup.ID)
}

func TestGraph_NodeLookup(t *testing.T) {
	t.Parallel()

	g, err := New("task", []testNode{node("a"), node("b", "a")})
	require.NoError(t, err)

	n, ok := g.Node("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, n.NodeDeps())

	_, ok = g.Node("zzz")
	assert.False(t, ok)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, "task", g.Kind())
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()

	err := &CycleError{Kind: "task", Path: []string{"A", "B", "A"}}
	assert.Equal(t, "circular task dependency: A -> B -> A", err.Error())
	assert.Equal(t, "circular stage dependency detected", (&CycleError{Kind: "stage"}).Error())
}

func TestBlockedError_Message(t *testing.T) {
	t.Parallel()

	err := &BlockedError{Kind: "stage", Node: "test", FailedDependency: "lint"}
	assert.Equal(t, `stage "test" is blocked by failed stage "lint"`, err.Error())
	assert.Contains(t, (&BlockedError{Kind: "stage", Node: "test"}).Error(), "cannot be satisfied")
}

// randomDAG builds an acyclic graph: node i may only depend on nodes declared
// after it, so declaration order differs from dependency order.
func randomDAG(r *rand.Rand, size int) []testNode {
	nodes := make([]testNode, size)
	for i := range nodes {
		nodes[i].id = fmt.Sprintf("n%d", i)
		for j := i + 1; j < size; j++ {
			if r.Intn(4) == 0 {
				nodes[i].deps = append(nodes[i].deps, fmt.Sprintf("n%d", j))
			}
		}
	}
	return nodes
}

func TestGraph_WavesRespectDependencies(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		nodes := randomDAG(r, 1+r.Intn(12))
		g, err := New("task", nodes)
		require.NoError(t, err)

		waves, err := g.Waves(true)
		require.NoError(t, err)

		waveOf := make(map[string]int)
		total := 0
		for i, wave := range waves {
			require.NotEmpty(t, wave)
			for _, n := range wave {
				waveOf[n.id] = i
				total++
			}
		}
		require.Equal(t, len(nodes), total, "every node placed exactly once")

		for _, n := range nodes {
			for _, dep := range n.deps {
				assert.Less(t, waveOf[dep], waveOf[n.id], "dependency %s of %s must be in an earlier wave", dep, n.id)
			}
		}
	}
}

func TestGraph_Waves(t *testing.T) {
	t.Parallel()

	nodes := []testNode{
		node("test", "lint", "build"),
		node("format"),
		node("lint", "format"),
		node("build"),
		node("docs"),
	}
	g, err := New("task", nodes)
	require.NoError(t, err)

	tests := map[string]struct {
		parallel bool
		want     [][]string
	}{
		"parallel groups by readiness": {
			parallel: true,
			want:     [][]string{{"format", "build", "docs"}, {"lint"}, {"test"}},
		},
		"sequential keeps declaration order": {
			parallel: false,
			want:     [][]string{{"test"}, {"format"}, {"lint"}, {"build"}, {"docs"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			waves, err := g.Waves(tt.parallel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, waveIDs(waves))
		})
	}
}

func TestGraph_WavesDeterministic(t *testing.T) {
	t.Parallel()

	nodes := []testNode{node("c"), node("a"), node("b"), node("d", "a", "c")}
	g, err := New("task", nodes)
	require.NoError(t, err)

	first, err := g.Waves(true)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := g.Waves(true)
		require.NoError(t, err)
		assert.Equal(t, waveIDs(first), waveIDs(again))
	}
	assert.Equal(t, [][]string{{"c", "a", "b"}, {"d"}}, waveIDs(first))
}

func TestGraph_EmptyWaves(t *testing.T) {
	t.Parallel()

	g, err := New[testNode]("task", nil)
	require.NoError(t, err)
	waves, err := g.Waves(true)
	require.NoError(t, err)
	assert.Empty(t, waves)
}

func TestGraph_Ready(t *testing.T) {
	t.Parallel()

	g, err := New("stage", []testNode{node("fmt"), node("lint", "fmt"), node("test", "fmt", "lint"), node("docs")})
	require.NoError(t, err)

	pending := map[string]bool{"lint": true, "test": true, "docs": true}
	done := map[string]bool{"fmt": true}

	ready := g.Ready(pending, func(_ testNode, dep string) bool { return done[dep] })
	assert.Equal(t, []string{"lint", "docs"}, ids(ready))

	none := g.Ready(pending, func(n testNode, _ string) bool { return false })
	assert.Equal(t, []string{"docs"}, ids(none), "nodes without dependencies are always ready")
}

func waveIDs(waves [][]testNode) [][]string {
	out := make([][]string, len(waves))
	for i, w := range waves {
		out[i] = ids(w)
	}
	return out
}

func ids(nodes []testNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}
