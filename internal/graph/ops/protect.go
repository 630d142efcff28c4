package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/must"
	"go.abhg.dev/container/ring"
)

// ProtectBranches seeds protection from the known upstream branches: every
// commit reachable from a protected branch's tip back to the graph's root
// is marked [graph.Protected].
//
// For each protected branch, the remote tip (PushID) is preferred over the
// local tip (ID) when both are set, since the remote is the shared,
// immutable view of the branch. Branches whose tip is not a descendant of
// the graph's root are ignored: they have nothing to do with this graph.
func ProtectBranches(ctx context.Context, g *graph.Graph, repo Repo, protected Branches) error {
	rootID := g.RootID()

	seen := make(map[graph.Hash]struct{})
	for b := range protected.All() {
		tip := b.ID
		if !b.PushID.IsZero() {
			tip = b.PushID
		}
		if _, ok := seen[tip]; ok {
			continue
		}
		seen[tip] = struct{}{}

		base, ok, err := repo.MergeBase(ctx, rootID, tip)
		if err != nil {
			return fmt.Errorf("merge-base(%s, %s): %w", rootID, tip, err)
		}
		if !ok || base != rootID {
			continue // branch is unrelated to this graph
		}

		for commit, err := range repo.CommitsFrom(ctx, tip) {
			if err != nil {
				return fmt.Errorf("walk history from %s: %w", tip, err)
			}

			if n, ok := g.Get(commit.ID); ok {
				if n.Action.IsProtected() {
					break // already protected from here back; short-circuit
				}
				n.Action = graph.Protected
			}
			if commit.ID == rootID {
				break
			}
		}
	}

	return nil
}

// protectedFrontier walks the graph breadth-first starting at the root,
// following only [graph.Protected] edges, and invokes visit for every
// direct, unprotected child of a protected node. visit returns whether the
// child ended up protected, in which case traversal continues into it.
func protectedFrontier(g *graph.Graph, visit func(parentID, childID graph.Hash) (becameProtected bool)) {
	var queue ring.Q[graph.Hash]
	if g.Root().Action.IsProtected() {
		queue.Push(g.RootID())
	}

	for !queue.Empty() {
		currentID := queue.Pop()
		current := g.MustGet(currentID)

		for _, childID := range current.ChildIDs() {
			child := g.MustGet(childID)
			if child.Action.IsProtected() {
				queue.Push(childID)
				continue
			}

			if visit(currentID, childID) {
				queue.Push(childID)
			}
		}
	}
}

// ProtectLargeBranches walks the unprotected subtrees hanging off the
// protected frontier and protects any subtree whose longest unbranched run
// exceeds max edges before a named branch is seen. It returns the names of
// branches swept up this way.
//
// A node that already carries a branch halts the depth count along that
// path, so short feature sequences are left alone even under a low max.
func ProtectLargeBranches(g *graph.Graph, max int) []string {
	var large []string
	protectedFrontier(g, func(_, childID graph.Hash) bool {
		return protectIfLarge(g, childID, 0, max, &large)
	})
	return large
}

func protectIfLarge(g *graph.Graph, id graph.Hash, depth, max int, large *[]string) bool {
	n := g.MustGet(id)

	switch {
	case len(n.Branches) > 0:
		return false

	case depth <= max:
		var needsProtection bool
		for _, childID := range n.ChildIDs() {
			if protectIfLarge(g, childID, depth+1, max, large) {
				needsProtection = true
			}
		}
		if needsProtection {
			n.Action = graph.Protected
		}
		return needsProtection

	default:
		markSubtreeProtected(g, id, large)
		return true
	}
}

// markSubtreeProtected marks id and its descendants as Protected, down to
// and including the first node on each path that carries a branch, and
// records that node's branch names into names. Descendants past that node
// are left as they are.
func markSubtreeProtected(g *graph.Graph, id graph.Hash, names *[]string) {
	var queue ring.Q[graph.Hash]
	queue.Push(id)
	for !queue.Empty() {
		currentID := queue.Pop()
		current := g.MustGet(currentID)
		current.Action = graph.Protected

		if len(current.Branches) == 0 {
			for _, childID := range current.ChildIDs() {
				queue.Push(childID)
			}
		} else {
			*names = append(*names, current.BranchNames()...)
		}
	}
}

// ProtectOldBranches protects any unprotected subtree hanging off the
// protected frontier whose every commit is no more recent than cutoff. It
// returns the names of branches swept up this way.
func ProtectOldBranches(g *graph.Graph, cutoff time.Time) []string {
	var old []string
	protectedFrontier(g, func(_, childID graph.Hash) bool {
		if isSubtreeOld(g, childID, cutoff) {
			markSubtreeProtected(g, childID, &old)
		}
		// Unlike ProtectLargeBranches, newly protected subtrees are not
		// re-queued: markSubtreeProtected already walked them down to
		// their branches, and anything past a branch point is left for
		// a later pass.
		return false
	})
	return old
}

// isSubtreeOld reports whether every commit in the subtree rooted at id
// was made at or before cutoff.
func isSubtreeOld(g *graph.Graph, id graph.Hash, cutoff time.Time) bool {
	n := g.MustGet(id)
	if n.Commit.Time.After(cutoff) {
		return false
	}
	for _, childID := range n.ChildIDs() {
		if !isSubtreeOld(g, childID, cutoff) {
			return false
		}
	}
	return true
}

// TrimOldBranches removes (rather than merely protecting) any unprotected
// subtree hanging off the protected frontier whose every commit is no more
// recent than cutoff. It returns the names of branches the removed
// subtrees contained, in breadth-first order.
func TrimOldBranches(g *graph.Graph, cutoff time.Time) []string {
	var old []string
	protectedFrontier(g, func(parentID, childID graph.Hash) bool {
		if !isSubtreeOld(g, childID, cutoff) {
			return false
		}

		removed, err := g.RemoveChild(parentID, childID)
		must.Bef(err == nil, "trim old branches: %v", err)
		old = append(old, removed.BranchNames()...)
		return false // the subtree is gone, nothing left to descend into
	})
	return old
}

// ProtectForeignBranches protects any unprotected subtree hanging off the
// protected frontier that contains no commit authored or committed by
// user. It returns the names of branches swept up this way.
func ProtectForeignBranches(g *graph.Graph, user string) []string {
	var foreign []string
	protectedFrontier(g, func(_, childID graph.Hash) bool {
		if !isPersonalSubtree(g, childID, user) {
			markSubtreeProtected(g, childID, &foreign)
		}
		return false
	})
	return foreign
}

func isPersonalSubtree(g *graph.Graph, id graph.Hash, user string) bool {
	n := g.MustGet(id)
	if n.Commit.Author == user || n.Commit.Committer == user {
		return true
	}
	for _, childID := range n.ChildIDs() {
		if isPersonalSubtree(g, childID, user) {
			return true
		}
	}
	return false
}
