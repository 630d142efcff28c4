package ops_test

import (
	"context"
	"iter"
	"time"

	"github.com/epage/git-branch-stash/internal/graph"
)

// commitAt builds a minimal commit fixture with the given id, tree and
// summary, timestamped n seconds after the epoch.
func commitAt(id, tree, summary string, n int64) graph.Commit {
	return graph.Commit{
		ID:      graph.Hash(id),
		TreeID:  graph.Hash(tree),
		Summary: summary,
		Time:    time.Unix(n, 0),
	}
}

// fakeRepo is a hand-written stand-in for [ops.Repo], backed by a fixed
// linear or branching history supplied by the test.
type fakeRepo struct {
	// commits maps every commit id to its full record.
	commits map[graph.Hash]graph.Commit
	// parent maps a commit id to the id it was built on, for CommitsFrom
	// to walk backward through.
	parent map[graph.Hash]graph.Hash
	// bases maps (a, b) pairs to the MergeBase result, keyed by "a/b".
	bases map[string]graph.Hash
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		commits: make(map[graph.Hash]graph.Commit),
		parent:  make(map[graph.Hash]graph.Hash),
		bases:   make(map[string]graph.Hash),
	}
}

func (r *fakeRepo) add(c graph.Commit, parent graph.Hash) *fakeRepo {
	r.commits[c.ID] = c
	if !parent.IsZero() {
		r.parent[c.ID] = parent
	}
	return r
}

func (r *fakeRepo) setMergeBase(a, b, base graph.Hash) *fakeRepo {
	r.bases[string(a)+"/"+string(b)] = base
	return r
}

func (r *fakeRepo) MergeBase(_ context.Context, a, b graph.Hash) (graph.Hash, bool, error) {
	if base, ok := r.bases[string(a)+"/"+string(b)]; ok {
		return base, true, nil
	}
	if base, ok := r.bases[string(b)+"/"+string(a)]; ok {
		return base, true, nil
	}
	return "", false, nil
}

func (r *fakeRepo) CommitsFrom(_ context.Context, id graph.Hash) iter.Seq2[graph.Commit, error] {
	return func(yield func(graph.Commit, error) bool) {
		for {
			c, ok := r.commits[id]
			if !ok {
				return
			}
			if !yield(c, nil) {
				return
			}
			next, ok := r.parent[id]
			if !ok {
				return
			}
			id = next
		}
	}
}

// fakeBranches is a hand-written stand-in for [ops.Branches].
type fakeBranches struct {
	branches []graph.Branch
}

func newFakeBranches(branches ...graph.Branch) *fakeBranches {
	return &fakeBranches{branches: branches}
}

func (b *fakeBranches) All() iter.Seq[graph.Branch] {
	return func(yield func(graph.Branch) bool) {
		for _, br := range b.branches {
			if !yield(br) {
				return
			}
		}
	}
}

func (b *fakeBranches) ContainsOID(id graph.Hash) bool {
	for _, br := range b.branches {
		if br.ID == id {
			return true
		}
	}
	return false
}

func (b *fakeBranches) OIDs() iter.Seq[graph.Hash] {
	return func(yield func(graph.Hash) bool) {
		for _, br := range b.branches {
			if !yield(br.ID) {
				return
			}
		}
	}
}
