package ops

import (
	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/must"
	"go.abhg.dev/container/ring"
)

type dropFrontierEntry struct {
	protectedID    graph.Hash
	protectedTrees map[graph.Hash]struct{}
}

// DropByTreeID detects branches that have already been merged into a
// protected line, possibly via squash, and marks them [graph.Delete].
//
// A squash-merge changes a commit's id (and usually its message) but not
// necessarily its tree: if an unprotected branch's tip has the same
// tree_id as some commit already on the protected path leading to it, the
// branch's content already landed upstream and the branch (plus every
// commit back to the protected frontier) is redundant.
//
// Only the first named branch on each stack is evaluated; branches deeper
// in the same stack are left for a later pass after their base is
// resolved. A branch whose tip looks like a revert is never dropped: the
// heuristic can't tell a genuine revert from a tree that merely matches by
// coincidence, so it bails out to avoid losing data.
func DropByTreeID(g *graph.Graph) {
	var queue ring.Q[dropFrontierEntry]
	if g.Root().Action.IsProtected() {
		queue.Push(dropFrontierEntry{protectedID: g.RootID(), protectedTrees: map[graph.Hash]struct{}{}})
	}

	for !queue.Empty() {
		entry := queue.Pop()
		node := g.MustGet(entry.protectedID)

		trees := make(map[graph.Hash]struct{}, len(entry.protectedTrees)+1)
		for t := range entry.protectedTrees {
			trees[t] = struct{}{}
		}
		trees[node.Commit.TreeID] = struct{}{}

		for _, childID := range node.ChildIDs() {
			child := g.MustGet(childID)
			if child.Action.IsProtected() {
				queue.Push(dropFrontierEntry{protectedID: childID, protectedTrees: trees})
				continue
			}
			dropFirstBranchByTreeID(g, childID, nil, trees)
		}
	}
}

func dropFirstBranchByTreeID(g *graph.Graph, id graph.Hash, branchChain []graph.Hash, protectedTrees map[graph.Hash]struct{}) {
	branchChain = append(branchChain, id)

	node := g.MustGet(id)
	must.NotBef(node.Action.IsProtected(), "drop-by-tree-id must only run on unprotected nodes")

	if node.Commit.RevertSummary() {
		return
	}

	if len(node.Branches) > 0 {
		if _, ok := protectedTrees[node.Commit.TreeID]; ok {
			for _, branchID := range branchChain {
				g.MustGet(branchID).Action = graph.Delete
			}
		}
		return
	}

	for _, childID := range node.ChildIDs() {
		dropFirstBranchByTreeID(g, childID, branchChain, protectedTrees)
	}
}
