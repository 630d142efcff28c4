package vcsgit

import (
	"context"
	"fmt"

	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/must"
)

// BuildGraph loads rootID and every commit reachable from tips but not
// from rootID, and assembles them into a [graph.Graph] rooted at rootID.
// This is the "external loader" the transformation passes assume already
// ran: it has no opinion about protection, rebasing, or scripts, only
// about faithfully reproducing the repository's ancestry as a Graph.
func BuildGraph(ctx context.Context, repo *Repository, rootID graph.Hash, tips []graph.Hash) (*graph.Graph, error) {
	rootCommit, err := repo.showCommit(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("load root %s: %w", rootID, err)
	}
	g := graph.New(rootCommit)

	pending := make(map[graph.Hash]historyRecord)
	for rec, err := range repo.history(ctx, tips, rootID) {
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		pending[rec.ID] = rec
	}

	added := map[graph.Hash]bool{rootID: true}
	for len(pending) > 0 {
		progressed := false
		for id, rec := range pending {
			if !parentsSatisfied(rec, pending, added, rootID) {
				continue
			}

			firstParent, ok := firstAddedParent(rec, added)
			must.Bef(ok, "commit %q has no addable parent", id)
			g.AddNode(firstParent, rec.Commit)
			for _, p := range rec.Parents {
				if p != firstParent && added[p] {
					g.MustGet(p).AddChild(id)
				}
			}

			added[id] = true
			delete(pending, id)
			progressed = true
		}
		must.Bef(progressed, "commit history is not a DAG reachable from the chosen root")
	}

	return g, nil
}

// parentsSatisfied reports whether every parent of rec that this loader is
// tracking has already been added to the graph. A parent the loader never
// saw (outside the range between rootID and the requested tips) is treated
// as already satisfied: its edge simply isn't representable.
func parentsSatisfied(rec historyRecord, pending map[graph.Hash]historyRecord, added map[graph.Hash]bool, rootID graph.Hash) bool {
	for _, p := range rec.Parents {
		if added[p] {
			continue
		}
		if _, tracked := pending[p]; tracked {
			return false
		}
	}
	return true
}

func firstAddedParent(rec historyRecord, added map[graph.Hash]bool) (graph.Hash, bool) {
	for _, p := range rec.Parents {
		if added[p] {
			return p, true
		}
	}
	return "", false
}
