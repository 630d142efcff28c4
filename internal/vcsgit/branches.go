package vcsgit

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/epage/git-branch-stash/internal/graph"
)

const refFormat = "%(refname:short)" + fieldSep + "%(objectname)" + fieldSep + "%(upstream:objectname)"

// Branches is a snapshot of a repository's local branches and their
// upstream tracking state, loaded once per run.
type Branches struct {
	byName map[string]graph.Branch
	byOID  map[graph.Hash][]string
}

// LoadBranches enumerates every local branch in r in a single
// `git for-each-ref` invocation.
func LoadBranches(ctx context.Context, r *Repository) (*Branches, error) {
	b := &Branches{
		byName: make(map[string]graph.Branch),
		byOID:  make(map[graph.Hash][]string),
	}

	cmd := r.cmd(ctx, "for-each-ref", "--format="+refFormat, "refs/heads/")
	for line, err := range cmd.Lines() {
		if err != nil {
			return nil, fmt.Errorf("for-each-ref: %w", err)
		}
		if len(line) == 0 {
			continue
		}

		fields := strings.Split(string(line), fieldSep)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed ref record: %q", line)
		}

		branch := graph.Branch{
			Name:   fields[0],
			ID:     graph.Hash(fields[1]),
			PushID: graph.Hash(fields[2]),
		}
		b.byName[branch.Name] = branch
		b.byOID[branch.ID] = append(b.byOID[branch.ID], branch.Name)
	}

	return b, nil
}

// All iterates every branch, in no particular order.
func (b *Branches) All() iter.Seq[graph.Branch] {
	return func(yield func(graph.Branch) bool) {
		for _, branch := range b.byName {
			if !yield(branch) {
				return
			}
		}
	}
}

// ContainsOID reports whether any branch points at id.
func (b *Branches) ContainsOID(id graph.Hash) bool {
	return len(b.byOID[id]) > 0
}

// OIDs iterates the distinct commit ids that branches point at.
func (b *Branches) OIDs() iter.Seq[graph.Hash] {
	return func(yield func(graph.Hash) bool) {
		for id := range b.byOID {
			if !yield(id) {
				return
			}
		}
	}
}
