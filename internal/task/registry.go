package task

import (
	"errors"
	"fmt"
)

// ErrDuplicateTask is returned when two tasks share an identifier.
var ErrDuplicateTask = errors.New("duplicate task id")

// Entry pairs a registered task with the descriptor captured at registration.
type Entry struct {
	Task       Task
	Descriptor Descriptor
}

// Registry is an immutable, identifier-keyed collection of tasks.
// It is built once at startup and is safe for unrestricted concurrent reads.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry validates and indexes tasks. Registration order is preserved.
func NewRegistry(tasks ...Task) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(tasks))}
	for _, t := range tasks {
		d := t.Descriptor().clone()
		if d.ID == "" {
			return nil, fmt.Errorf("registering task %q: empty id", d.Name)
		}
		if _, exists := r.entries[d.ID]; exists {
			return nil, fmt.Errorf("registering task %q: %w", d.ID, ErrDuplicateTask)
		}
		if d.SupportsFix {
			if _, ok := t.(Fixer); !ok {
				return nil, fmt.Errorf("registering task %q: supports fix but has no fix operation", d.ID)
			}
		}
		if d.FixSafety == "" {
			d.FixSafety = SafetySafe
		}
		if d.Name == "" {
			d.Name = d.ID
		}
		r.entries[d.ID] = Entry{Task: t, Descriptor: d}
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// Lookup returns the entry registered under id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	e.Descriptor = e.Descriptor.clone()
	return e, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// IDs returns registered identifiers in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		e, _ := r.Lookup(id)
		out = append(out, e)
	}
	return out
}

// Fixable returns the entries whose tasks support fixing, in registration order.
func (r *Registry) Fixable() []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Descriptor.SupportsFix {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.order)
}
