package task

import "sync"

// FixedFiles records the files rewritten by fixes during one run. Methods are
// safe for concurrent use and on a nil receiver.
type FixedFiles struct {
	mu    sync.Mutex
	files map[string]bool
}

// Add marks paths as rewritten.
func (f *FixedFiles) Add(paths ...string) {
	if f == nil || len(paths) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = make(map[string]bool, len(paths))
	}
	for _, p := range paths {
		f.files[p] = true
	}
}

// Contains reports whether path was rewritten.
func (f *FixedFiles) Contains(path string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path]
}
