package ops

import (
	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/must"
	"go.abhg.dev/container/ring"
)

// RebaseBranches moves every non-protected subtree hanging off the
// protected frontier so that it becomes a direct child of newBaseID
// instead.
//
// Precondition: [ProtectBranches] has already run, and newBaseID names an
// existing, protected node. After this pass, every rewritable commit is a
// flat set of subtrees rooted at newBaseID; relative order among siblings
// is whatever the Graph's child set iteration yields.
func RebaseBranches(g *graph.Graph, newBaseID graph.Hash) {
	newBase, ok := g.Get(newBaseID)
	must.Bef(ok, "rebase onto %q: node does not exist", newBaseID)

	var queue ring.Q[graph.Hash]
	if g.Root().Action.IsProtected() {
		queue.Push(g.RootID())
	}

	for !queue.Empty() {
		currentID := queue.Pop()
		current := g.MustGet(currentID)

		var rebaseable []graph.Hash
		for _, childID := range current.ChildIDs() {
			child := g.MustGet(childID)
			if child.Action.IsProtected() {
				queue.Push(childID)
				continue
			}
			rebaseable = append(rebaseable, childID)
		}

		for _, childID := range rebaseable {
			current.RemoveChild(childID)
			newBase.AddChild(childID)
		}
	}
}
