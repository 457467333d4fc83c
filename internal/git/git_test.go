package git

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepo is a throwaway repository in a temp dir.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, path)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
}

func (r *testRepo) add(paths ...string) {
	r.t.Helper()
	for _, p := range paths {
		_, err := r.wt.Add(p)
		require.NoError(r.t, err)
	}
}

func (r *testRepo) commit(msg string) plumbing.Hash {
	r.t.Helper()
	h, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
	return h
}

func (r *testRepo) open() *Repository {
	r.t.Helper()
	repo, err := Open(r.dir, nil)
	require.NoError(r.t, err)
	return repo
}

// seed commits a.txt and keep.txt on the initial branch.
func (r *testRepo) seed() {
	r.t.Helper()
	r.write("a.txt", "one\n")
	r.write("keep.txt", "keep\n")
	r.add("a.txt", "keep.txt")
	r.commit("initial")
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	tr.write("sub/dir/x.txt", "x")

	repo, err := Open(filepath.Join(tr.dir, "sub", "dir"), nil)
	require.NoError(t, err)
	assert.True(t, repo.IsRepository())

	want, err := filepath.EvalSymlinks(tr.dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(repo.Root())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Open(t.TempDir(), nil)
	assert.Error(t, err)

	var nilRepo *Repository
	assert.False(t, nilRepo.IsRepository())
}

func TestStagedFiles(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	tr.write("a.txt", "two\n")
	tr.write("b.txt", "new\n")
	tr.write("untracked.txt", "?")
	tr.add("a.txt", "b.txt")

	files, err := tr.open().StagedFiles()
	require.NoError(t, err)
	assert.Equal(t, []StagedFile{
		{Path: "a.txt", Status: "M"},
		{Path: "b.txt", Status: "A"},
	}, files)
}

func TestStagedContent(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	tr.write("a.txt", "staged\n")
	tr.add("a.txt")
	tr.write("a.txt", "working tree\n")

	repo := tr.open()
	content, err := repo.StagedContent("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "staged\n", content)

	_, err = repo.StagedContent("missing.txt")
	assert.Error(t, err)
}

func TestChangedFilesSince(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	head, err := tr.repo.Head()
	require.NoError(t, err)
	base := head.Name().Short()

	require.NoError(t, tr.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}))
	tr.write("feature.go", "package f\n")
	tr.write("a.txt", "changed\n")
	tr.add("feature.go", "a.txt")
	_, err = tr.wt.Remove("keep.txt")
	require.NoError(t, err)
	tr.commit("feature work")

	repo := tr.open()
	files, err := repo.ChangedFilesSince(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "feature.go"}, files)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)

	_, err = repo.ChangedFilesSince("no-such-branch")
	assert.Error(t, err)
}

func TestWorkingTreeChangesAndTrackedFiles(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	tr.write("a.txt", "edited\n")
	tr.write("staged.txt", "s\n")
	tr.add("staged.txt")
	tr.write("untracked.txt", "u\n")
	require.NoError(t, os.Remove(filepath.Join(tr.dir, "keep.txt")))

	repo := tr.open()
	diff, err := repo.WorkingTreeChanges()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "staged.txt"}, diff)

	tracked, err := repo.TrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "keep.txt", "staged.txt"}, tracked)
}

func TestRestage(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	tr.write("a.txt", "fixed\n")
	tr.write("keep.txt", "fixed too\n")

	repo := tr.open()
	staged, err := repo.StagedFiles()
	require.NoError(t, err)
	assert.Empty(t, staged)

	require.NoError(t, repo.Restage([]string{"a.txt", "keep.txt"}))

	staged, err = repo.StagedFiles()
	require.NoError(t, err)
	assert.Len(t, staged, 2)
	content, err := repo.StagedContent("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "fixed\n", content)
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.seed()
	tr.write("a.txt", "two\n")
	tr.add("a.txt")
	repo := tr.open()

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for range 10 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := repo.StagedFiles()
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := repo.StagedContent("a.txt")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := repo.TrackedFiles()
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
