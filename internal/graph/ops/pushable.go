package ops

import (
	"cmp"
	"fmt"

	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/logging"
	"go.abhg.dev/container/ring"
)

// Pushable decides, for the first branch on each unprotected stack, whether
// it is ready to be pushed, recording the result on [graph.Node.Pushable].
// Deeper branches in the same stack are left alone: their turn comes once
// their base has actually been pushed, which this pass cannot know in
// advance.
//
// A branch is not pushable if the path from the protected frontier to it
// passes through a commit that looks like a work in progress, or if it
// already matches what was last pushed. Either reason is logged at debug
// level through log, which may be nil.
func Pushable(g *graph.Graph, log *logging.Logger) {
	log = cmp.Or(log, logging.Nop())

	var queue ring.Q[pushableEntry]
	if g.Root().Action.IsProtected() {
		queue.Push(pushableEntry{id: g.RootID()})
	}

	for !queue.Empty() {
		entry := queue.Pop()
		node := g.MustGet(entry.id)

		for _, childID := range node.ChildIDs() {
			child := g.MustGet(childID)
			if child.Action.IsProtected() {
				queue.Push(pushableEntry{id: childID, cause: entry.cause})
				continue
			}
			pushFirstBranch(g, childID, entry.cause, log)
		}
	}
}

type pushableEntry struct {
	id    graph.Hash
	cause *string
}

// pushFirstBranch walks down an unprotected run until it finds a commit
// carrying a branch, decides that branch's pushability, and stops: it never
// recurses past the branch it evaluates.
func pushFirstBranch(g *graph.Graph, id graph.Hash, cause *string, log *logging.Logger) {
	node := g.MustGet(id)

	if cause == nil && node.Commit.WIPSummary() {
		reason := fmt.Sprintf("commit %s looks like a work in progress", node.Commit.ID)
		cause = &reason
	}

	if len(node.Branches) > 0 {
		branch := node.Branches[0]
		switch {
		case cause != nil:
			log.Debugf("%s is not pushable: %s", branch.Name, *cause)
		// Deviation from the original's on-the-wire behavior: the
		// original re-checks "already pushed" at every unprotected node
		// along the path, including branchless ones, where it is
		// vacuously true. This only evaluates it once a branch actually
		// exists to compare against, since there is nothing to check
		// "already pushed" against before that point.
		case branch.Pushed():
			log.Debugf("%s is not pushable: already up to date", branch.Name)
		default:
			node.Pushable = true
		}
		return
	}

	for _, childID := range node.ChildIDs() {
		pushFirstBranch(g, childID, cause, log)
	}
}
