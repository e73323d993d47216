package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// fakeRepo is an in-memory repository implementing interfaces.GitClient. Only mutating calls
// are recorded in ops; failOn injects an error for a recorded op.
type fakeRepo struct {
	branches    map[string]string
	head        string
	tags        map[string]string
	remotes     []string
	dirty       bool
	unavailable error

	// parents is the commit graph; seed commits have no parents
	parents map[string][]string

	next   int
	ops    []string
	pushed []string
	merges []string
	failOn map[string]error
}

type repoState struct {
	Branches map[string]string
	Head     string
	Tags     map[string]string
}

// newFakeRepo returns a clean repository: main=c1, develop=c2, feature-x=c3, on feature-x
func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		branches: map[string]string{
			"main":      "c1",
			"develop":   "c2",
			"feature-x": "c3",
		},
		head:   "feature-x",
		tags:    map[string]string{},
		parents: map[string][]string{},
		next:    3,
		failOn:  map[string]error{},
	}
}

func (f *fakeRepo) snapshot() repoState {
	return repoState{
		Branches: maps.Clone(f.branches),
		Head:     f.head,
		Tags:     maps.Clone(f.tags),
	}
}

func (f *fakeRepo) record(op string) error {
	f.ops = append(f.ops, op)
	if err, ok := f.failOn[op]; ok {
		return err
	}
	return nil
}

func (f *fakeRepo) newCommit(parents ...string) string {
	f.next++
	commit := fmt.Sprintf("c%d", f.next)
	f.parents[commit] = parents
	return commit
}

func (f *fakeRepo) resolve(ref string) (string, error) {
	if ref == "HEAD" {
		ref = f.head
	}
	if c, ok := f.branches[ref]; ok {
		return c, nil
	}
	if c, ok := f.tags[ref]; ok {
		return c, nil
	}
	if strings.HasPrefix(ref, "c") {
		return ref, nil
	}
	return "", fmt.Errorf("unknown ref %q", ref)
}

func (f *fakeRepo) Available(ctx context.Context) error {
	return f.unavailable
}

func (f *fakeRepo) HasUncommittedChanges(ctx context.Context) (bool, error) {
	return f.dirty, nil
}

func (f *fakeRepo) CurrentBranch(ctx context.Context) (string, error) {
	return f.head, nil
}

func (f *fakeRepo) RevParse(ctx context.Context, ref string) (string, error) {
	return f.resolve(ref)
}

func (f *fakeRepo) Checkout(ctx context.Context, branch string) error {
	if err := f.record("checkout " + branch); err != nil {
		return err
	}
	if _, ok := f.branches[branch]; !ok {
		return fmt.Errorf("pathspec %q did not match", branch)
	}
	f.head = branch
	return nil
}

func (f *fakeRepo) FastForwardSource(ctx context.Context, branch string) (string, error) {
	if len(f.remotes) == 0 {
		return "", nil
	}
	return f.remotes[0], nil
}

func (f *fakeRepo) Pull(ctx context.Context, branch string) error {
	return f.record("pull " + branch)
}

func (f *fakeRepo) IsAncestor(ctx context.Context, ancestor, ref string) (bool, error) {
	target, err := f.resolve(ancestor)
	if err != nil {
		return false, err
	}
	start, err := f.resolve(ref)
	if err != nil {
		return false, err
	}

	stack := []string{start}
	for len(stack) > 0 {
		commit := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if commit == target {
			return true, nil
		}
		stack = append(stack, f.parents[commit]...)
	}
	return false, nil
}

func (f *fakeRepo) Merge(ctx context.Context, branch, message string) error {
	if err := f.record("merge " + branch); err != nil {
		return err
	}
	f.branches[f.head] = f.newCommit(f.branches[f.head], f.branches[branch])
	f.merges = append(f.merges, branch+"->"+f.head)
	return nil
}

func (f *fakeRepo) Add(ctx context.Context, paths ...string) error {
	return f.record("add " + strings.Join(paths, " "))
}

func (f *fakeRepo) Commit(ctx context.Context, message string) error {
	if err := f.record("commit"); err != nil {
		return err
	}
	f.branches[f.head] = f.newCommit(f.branches[f.head])
	return nil
}

func (f *fakeRepo) Amend(ctx context.Context) error {
	if err := f.record("amend"); err != nil {
		return err
	}
	f.branches[f.head] = f.newCommit(f.parents[f.branches[f.head]]...)
	return nil
}

func (f *fakeRepo) Tags(ctx context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(f.tags)), nil
}

func (f *fakeRepo) TagsAt(ctx context.Context, ref string) ([]string, error) {
	commit, err := f.resolve(ref)
	if err != nil {
		return nil, err
	}
	var out []string
	for name, c := range f.tags {
		if c == commit {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (f *fakeRepo) CreateTag(ctx context.Context, name, message string) error {
	if err := f.record("tag " + name); err != nil {
		return err
	}
	if _, ok := f.tags[name]; ok {
		return errors.New("tag already exists")
	}
	f.tags[name] = f.branches[f.head]
	return nil
}

func (f *fakeRepo) DeleteTag(ctx context.Context, name string) error {
	if err := f.record("delete-tag " + name); err != nil {
		return err
	}
	delete(f.tags, name)
	return nil
}

func (f *fakeRepo) ResetHard(ctx context.Context, commit string) error {
	if err := f.record("reset " + f.head + " " + commit); err != nil {
		return err
	}
	f.branches[f.head] = commit
	return nil
}

func (f *fakeRepo) Remotes(ctx context.Context) ([]string, error) {
	return f.remotes, nil
}

func (f *fakeRepo) Push(ctx context.Context, remote, ref string) error {
	if err := f.record("push " + remote + " " + ref); err != nil {
		return err
	}
	f.pushed = append(f.pushed, ref)
	return nil
}

// fakeVersions reports files as changed until the version they already carry matches
type fakeVersions struct {
	current string
	files   []string
	dryRun  bool
	err     error
	calls   int
}

func (v *fakeVersions) Update(ctx context.Context, version string) ([]string, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	if v.current == version {
		return nil, nil
	}
	if !v.dryRun {
		v.current = version
	}
	return v.files, nil
}

func newFakeVersions() *fakeVersions {
	return &fakeVersions{
		current: "1.0.0",
		files:   []string{"lib/version.sh", "package.json"},
	}
}
