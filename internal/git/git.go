// Package git is gatehook's version-control collaborator. It implements
// task.VCS over go-git. Every operation holds the repository mutex, so
// concurrently running tasks can share one Repository.
package git

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// Repository is a mutex-guarded handle to one repository root.
type Repository struct {
	mu     sync.Mutex
	repo   *git.Repository
	root   string
	logger *zap.Logger
}

// Open locates the repository containing path, walking up to the directory
// holding .git. An empty path means the working directory.
func Open(path string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	logger.Debug("repository opened", zap.String("root", root))
	return &Repository{repo: repo, root: root, logger: logger}, nil
}

// Root returns the absolute worktree root.
func (r *Repository) Root() string {
	return r.root
}

// IsRepository reports whether the handle is backed by a repository.
func (r *Repository) IsRepository() bool {
	return r != nil && r.repo != nil
}

// StagedFiles returns the paths whose index entry differs from HEAD, with
// their one-letter staging code (A, M, D, R, C, U), sorted by path.
func (r *Repository) StagedFiles() ([]StagedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, err := r.status()
	if err != nil {
		return nil, err
	}

	var files []StagedFile
	for path, s := range status {
		if s.Staging == git.Unmodified || s.Staging == git.Untracked {
			continue
		}
		files = append(files, StagedFile{Path: path, Status: string(rune(s.Staging))})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	r.logger.Debug("staged files", zap.Int("count", len(files)))
	return files, nil
}

// StagedContent returns the content recorded in the index for path.
func (r *Repository) StagedContent(path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("reading index: %w", err)
	}
	entry, err := idx.Entry(path)
	if err != nil {
		return "", fmt.Errorf("looking up %s in index: %w", path, err)
	}
	blob, err := r.repo.BlobObject(entry.Hash)
	if err != nil {
		return "", fmt.Errorf("reading blob for %s: %w", path, err)
	}
	rd, err := blob.Reader()
	if err != nil {
		return "", fmt.Errorf("opening blob for %s: %w", path, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("reading blob for %s: %w", path, err)
	}
	return string(data), nil
}

// ChangedFilesSince returns the files added or modified between the merge
// base of baseRef and HEAD. baseRef is resolved as given, then as a branch
// of origin. Deleted files are left out.
func (r *Repository) ChangedFilesSince(baseRef string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	base, err := r.resolveCommit(baseRef)
	if err != nil {
		return nil, err
	}
	headRef, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}
	head, err := r.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}

	if bases, err := head.MergeBase(base); err == nil && len(bases) > 0 {
		base = bases[0]
	}

	baseTree, err := base.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading base tree: %w", err)
	}
	headTree, err := head.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD tree: %w", err)
	}
	changes, err := baseTree.Diff(headTree)
	if err != nil {
		return nil, fmt.Errorf("diffing %s..HEAD: %w", baseRef, err)
	}

	var files []string
	for _, ch := range changes {
		if ch.To.Name == "" {
			continue
		}
		files = append(files, ch.To.Name)
	}
	sort.Strings(files)
	r.logger.Debug("changed files",
		zap.String("base", baseRef),
		zap.String("merge_base", base.Hash.String()),
		zap.Int("count", len(files)))
	return files, nil
}

func (r *Repository) resolveCommit(ref string) (*object.Commit, error) {
	var lastErr error
	for _, rev := range []string{ref, "origin/" + ref} {
		hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			lastErr = err
			continue
		}
		commit, err := r.repo.CommitObject(*hash)
		if err != nil {
			return nil, fmt.Errorf("reading commit %s: %w", rev, err)
		}
		return commit, nil
	}
	return nil, fmt.Errorf("resolving base ref %q: %w", ref, lastErr)
}

// WorkingTreeChanges returns tracked files modified in the index or the
// working tree, excluding deletions, sorted by path.
func (r *Repository) WorkingTreeChanges() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, err := r.status()
	if err != nil {
		return nil, err
	}

	var files []string
	for path, s := range status {
		if s.Staging == git.Untracked || s.Worktree == git.Deleted || s.Staging == git.Deleted {
			continue
		}
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// TrackedFiles returns every path in the index.
func (r *Repository) TrackedFiles() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	files := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		files = append(files, e.Name)
	}
	sort.Strings(files)
	return files, nil
}

// Restage adds paths to the index in one locked batch.
func (r *Repository) Restage(paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	var errs []error
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			errs = append(errs, fmt.Errorf("adding %s: %w", p, err))
		}
	}
	r.logger.Debug("restaged files", zap.Int("count", len(paths)), zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}

// CurrentBranch returns the checked-out branch, or "" for a detached HEAD.
func (r *Repository) CurrentBranch() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

func (r *Repository) status() (git.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}
	return status, nil
}
