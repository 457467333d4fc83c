package dag

// Node is a vertex of a dependency graph.
type Node interface {
	NodeID() string
	NodeDeps() []string
}

// Graph is a validated, acyclic dependency graph that preserves declaration order.
type Graph[N Node] struct {
	kind  string
	nodes []N
	index map[string]int
}

// New validates nodes and builds a Graph. kind names the node type in errors.
// Checks run in order: duplicate identifiers, missing dependencies, cycles.
func New[N Node](kind string, nodes []N) (*Graph[N], error) {
	g := &Graph[N]{kind: kind, nodes: nodes, index: make(map[string]int, len(nodes))}

	for i, n := range nodes {
		if _, exists := g.index[n.NodeID()]; exists {
			return nil, &DuplicateNodeError{Kind: kind, ID: n.NodeID()}
		}
		g.index[n.NodeID()] = i
	}

	if err := g.validateDependencies(); err != nil {
		return nil, err
	}
	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

// Nodes returns the nodes in declaration order.
func (g *Graph[N]) Nodes() []N {
	return g.nodes
}

// Node returns the node with the given identifier.
func (g *Graph[N]) Node(id string) (N, bool) {
	i, ok := g.index[id]
	if !ok {
		var zero N
		return zero, false
	}
	return g.nodes[i], true
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int {
	return len(g.nodes)
}

// validateDependencies checks that every depends-on reference names a node.
func (g *Graph[N]) validateDependencies() error {
	for _, n := range g.nodes {
		for _, dep := range n.NodeDeps() {
			if _, ok := g.index[dep]; !ok {
				return &MissingDependencyError{Kind: g.kind, Owner: n.NodeID(), Dependency: dep}
			}
		}
	}
	return nil
}

// detectCycles runs a depth-first search from every node in declaration order.
func (g *Graph[N]) detectCycles() error {
	visited := make(map[string]bool, len(g.nodes))
	recStack := make(map[string]bool, len(g.nodes))

	for _, n := range g.nodes {
		if visited[n.NodeID()] {
			continue
		}
		if cycle := g.detectCycleDFS(n.NodeID(), visited, recStack, nil); cycle != nil {
			return &CycleError{Kind: g.kind, Path: cycle}
		}
	}
	return nil
}

// detectCycleDFS performs depth-first search for cycle detection.
func (g *Graph[N]) detectCycleDFS(id string, visited, recStack map[string]bool, path []string) []string {
	visited[id] = true
	recStack[id] = true
	path = append(path, id)

	node := g.nodes[g.index[id]]
	for _, depID := range node.NodeDeps() {
		if !visited[depID] {
			if cycle := g.detectCycleDFS(depID, visited, recStack, path); cycle != nil {
				return cycle
			}
		} else if recStack[depID] {
			return buildCyclePath(path, depID)
		}
	}

	recStack[id] = false
	return nil
}

// buildCyclePath slices the DFS path from the first occurrence of the
// repeated node and appends the repeat.
func buildCyclePath(path []string, cycleStart string) []string {
	for i, id := range path {
		if id == cycleStart {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return append(cycle, cycleStart)
		}
	}
	return append(append([]string(nil), path...), cycleStart)
}
