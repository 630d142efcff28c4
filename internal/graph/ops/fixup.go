package ops

import (
	"slices"

	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/must"
	"go.abhg.dev/container/ring"
)

// FixupEffect controls how the [Fixup] pass treats fixup commits.
type FixupEffect int

const (
	// FixupIgnore skips the fixup pass entirely.
	FixupIgnore FixupEffect = iota

	// FixupMove relocates fixup commits to sit immediately after their
	// target, without changing how they'll be replayed.
	FixupMove

	// FixupSquash additionally marks relocated fixup commits
	// [graph.Squash], so they fold into their target when the script
	// runs instead of becoming their own commit.
	FixupSquash
)

// Fixup folds fixup commits (as created by `git commit --fixup`) into
// their target commit. With [FixupIgnore] it does nothing.
//
// It walks the unprotected, non-deleted subtrees hanging off the
// protected frontier and, within each, relocates every fixup commit to
// sit immediately after the commit it targets. A fixup whose target was
// never found in its subtree is spliced in on its own, between the
// subtree's root and the root's base, so it is not silently dropped.
func Fixup(g *graph.Graph, effect FixupEffect) {
	if effect == FixupIgnore {
		return
	}

	var queue ring.Q[graph.Hash]
	if g.Root().Action.IsProtected() {
		queue.Push(g.RootID())
	}

	for !queue.Empty() {
		currentID := queue.Pop()
		current := g.MustGet(currentID)

		for _, childID := range current.ChildIDs() {
			child := g.MustGet(childID)
			if child.Action.IsProtected() || child.Action.IsDelete() {
				queue.Push(childID)
				continue
			}
			fixupBranch(g, currentID, childID, effect)
		}
	}
}

func fixupBranch(g *graph.Graph, baseID, nodeID graph.Hash, effect FixupEffect) {
	outstanding := make(map[string][]graph.Hash)

	node := g.MustGet(nodeID)
	for _, childID := range node.ChildIDs() {
		fixupNode(g, nodeID, childID, effect, outstanding)
	}

	if len(outstanding) == 0 {
		return
	}

	if ids, ok := outstanding[node.Commit.Summary]; ok {
		delete(outstanding, node.Commit.Summary)
		if effect == FixupSquash {
			markSquash(g, ids)
		}
		spliceAfter(g, nodeID, ids)
	}

	must.NotBef(g.MustGet(nodeID).Action.IsProtected(),
		"fixup produced an unexpected protected node for base %q", baseID)

	keys := mapKeys(outstanding)
	slices.Sort(keys)

	current := nodeID
	for _, summary := range keys {
		current = spliceBetween(g, baseID, current, outstanding[summary])
	}
}

func fixupNode(g *graph.Graph, baseID, nodeID graph.Hash, effect FixupEffect, outstanding map[string][]graph.Hash) {
	node := g.MustGet(nodeID)
	for _, childID := range node.ChildIDs() {
		fixupNode(g, nodeID, childID, effect, outstanding)
	}

	must.NotBef(node.Action.IsProtected(), "fixup must not run on a protected node")
	must.NotBef(node.Action.IsDelete(), "fixup must not run on a deleted node")

	if target, ok := node.Commit.FixupSummary(); ok {
		outstanding[target] = append(outstanding[target], nodeID)

		children, branches := node.Children, node.Branches
		node.Children = make(map[graph.Hash]struct{})
		node.Branches = nil

		base := g.MustGet(baseID)
		must.NotBef(base.Action.IsProtected(), "fixup base must not be protected")
		must.NotBef(base.Action.IsDelete(), "fixup base must not be deleted")
		base.RemoveChild(nodeID)
		for childID := range children {
			base.AddChild(childID)
		}
		base.Branches = append(base.Branches, branches...)
		return
	}

	if ids, ok := outstanding[node.Commit.Summary]; ok {
		delete(outstanding, node.Commit.Summary)
		if effect == FixupSquash {
			markSquash(g, ids)
		}
		spliceAfter(g, nodeID, ids)
	}
}

func markSquash(g *graph.Graph, ids []graph.Hash) {
	for _, id := range ids {
		n := g.MustGet(id)
		must.Bef(n.Action.IsPick(), "fixup commit %q must start out as Pick", id)
		n.Action = graph.Squash
	}
}

// spliceAfter inserts the chain of fixupIDs immediately after nodeID. The
// last node in the chain inherits nodeID's former children and branches.
func spliceAfter(g *graph.Graph, nodeID graph.Hash, fixupIDs []graph.Hash) {
	if len(fixupIDs) == 0 {
		return
	}

	node := g.MustGet(nodeID)
	children, branches := node.Children, node.Branches
	node.Children = make(map[graph.Hash]struct{})
	node.Branches = nil

	lastID := nodeID
	for i := len(fixupIDs) - 1; i >= 0; i-- {
		last := g.MustGet(lastID)
		last.AddChild(fixupIDs[i])
		lastID = fixupIDs[i]
	}

	last := g.MustGet(lastID)
	must.Bef(len(last.Children) == 0, "splice-after: chain tail %q already has children", lastID)
	must.Bef(len(last.Branches) == 0, "splice-after: chain tail %q already has branches", lastID)
	last.Children = children
	last.Branches = branches
}

// spliceBetween inserts the chain of nodeIDs on the edge parentID ->
// childID, and returns the new id directly below parentID.
func spliceBetween(g *graph.Graph, parentID, childID graph.Hash, nodeIDs []graph.Hash) graph.Hash {
	newChildID := childID
	for _, id := range nodeIDs {
		node := g.MustGet(id)
		must.Bef(len(node.Children) == 0, "splice-between: node %q already has children", id)
		node.AddChild(newChildID)
		newChildID = id
	}

	parent := g.MustGet(parentID)
	parent.RemoveChild(childID)
	parent.AddChild(newChildID)
	return newChildID
}

func mapKeys(m map[string][]graph.Hash) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
