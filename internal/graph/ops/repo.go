// Package ops implements the commit-graph transformation passes: the
// protect/rebase/fixup/drop/pushable family that annotate and restructure a
// [graph.Graph], and the script builder that linearizes the result into an
// ordered, side-effect-free [Script].
//
// Passes are pure functions over the graph (see the package-level pass
// functions below) and are meant to run in the fixed order documented on
// each function's doc comment: ProtectBranches, the heuristic protect
// passes, TrimOldBranches, RebaseBranches, DropByTreeID, Fixup, Pushable,
// and finally ToScript. Later passes assume invariants established by
// earlier ones; reordering them requires re-checking those invariants.
package ops

import (
	"context"
	"iter"

	"github.com/epage/git-branch-stash/internal/graph"
)

// Repo is the narrow slice of version-control queries the passes need.
// Implementations talk to the real repository; the core never performs
// I/O itself.
type Repo interface {
	// MergeBase reports the deepest common ancestor of a and b. ok is
	// false if the commits share no ancestry.
	MergeBase(ctx context.Context, a, b graph.Hash) (id graph.Hash, ok bool, err error)

	// CommitsFrom walks commit history starting at id and moving toward
	// the root, yielding each commit in turn (id included, in the first
	// position).
	CommitsFrom(ctx context.Context, id graph.Hash) iter.Seq2[graph.Commit, error]
}

// Branches is the narrow view of tracked branches the passes need.
type Branches interface {
	// All iterates every branch known to the capability.
	All() iter.Seq[graph.Branch]

	// ContainsOID reports whether any branch points at id.
	ContainsOID(id graph.Hash) bool

	// OIDs iterates the commit ids that branches point at.
	OIDs() iter.Seq[graph.Hash]
}
