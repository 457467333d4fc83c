package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProgress signals that wave computation found no ready node although
// nodes remained. Validation rules this out, so seeing it is a bug.
var ErrNoProgress = errors.New("no ready nodes while nodes remain")

// CycleError represents a cycle detected in node dependencies.
type CycleError struct {
	// Kind names the node type ("task" or "stage").
	Kind string
	// Path starts at the first repeated node and ends with its repeat.
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular %s dependency detected", e.Kind)
	}
	return fmt.Sprintf("circular %s dependency: %s", e.Kind, strings.Join(e.Path, " -> "))
}

// MissingDependencyError represents a reference to a node that doesn't exist.
type MissingDependencyError struct {
	Kind string
	// Owner is the node declaring the dependency.
	Owner string
	// Dependency is the referenced identifier that doesn't exist.
	Dependency string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s %q depends on non-existent %s %q", e.Kind, e.Owner, e.Kind, e.Dependency)
}

// DuplicateNodeError represents two nodes sharing an identifier.
type DuplicateNodeError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.ID)
}

// BlockedError reports a scheduling loop that cannot make progress because a
// pending node depends on a node that failed.
type BlockedError struct {
	Kind string
	// Node is the pending node that cannot start.
	Node string
	// FailedDependency is the failed node blocking it. Empty when no failed
	// dependency could be identified.
	FailedDependency string
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	if e.FailedDependency == "" {
		return fmt.Sprintf("%s %q is blocked: dependencies cannot be satisfied", e.Kind, e.Node)
	}
	return fmt.Sprintf("%s %q is blocked by failed %s %q", e.Kind, e.Node, e.Kind, e.FailedDependency)
}
