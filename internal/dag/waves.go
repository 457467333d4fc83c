package dag

import "fmt"

// Waves groups nodes for execution. Every node's dependencies sit in strictly
// earlier waves.
//
// With parallel false each node forms its own wave in declaration order.
// With parallel true each wave is the set of not-yet-placed nodes whose
// dependencies are all placed; ties keep declaration order.
func (g *Graph[N]) Waves(parallel bool) ([][]N, error) {
	if !parallel {
		waves := make([][]N, 0, len(g.nodes))
		for _, n := range g.nodes {
			waves = append(waves, []N{n})
		}
		return waves, nil
	}

	placed := make(map[string]bool, len(g.nodes))
	var waves [][]N

	for len(placed) < len(g.nodes) {
		var wave []N
		for _, n := range g.nodes {
			if placed[n.NodeID()] {
				continue
			}
			if allPlaced(n.NodeDeps(), placed) {
				wave = append(wave, n)
			}
		}
		if len(wave) == 0 {
			return nil, fmt.Errorf("computing %s waves: %w", g.kind, ErrNoProgress)
		}
		for _, n := range wave {
			placed[n.NodeID()] = true
		}
		waves = append(waves, wave)
	}

	return waves, nil
}

func allPlaced(deps []string, placed map[string]bool) bool {
	for _, dep := range deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}

// Ready returns the pending nodes whose every dependency satisfies the
// predicate, in declaration order. satisfied receives the candidate node and
// one of its dependency identifiers.
func (g *Graph[N]) Ready(pending map[string]bool, satisfied func(node N, dep string) bool) []N {
	var ready []N
	for _, n := range g.nodes {
		if !pending[n.NodeID()] {
			continue
		}
		ok := true
		for _, dep := range n.NodeDeps() {
			if !satisfied(n, dep) {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, n)
		}
	}
	return ready
}

// Kind returns the node type label used in errors.
func (g *Graph[N]) Kind() string {
	return g.kind
}
