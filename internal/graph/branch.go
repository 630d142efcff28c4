package graph

// Branch is an immutable named reference to a commit.
type Branch struct {
	// Name of the branch, e.g. "feature/foo".
	Name string

	// ID is the commit hash the local branch currently points at.
	ID Hash

	// PushID is the commit hash the remote tracking ref currently holds,
	// if the branch has one. It is the zero Hash if the branch has never
	// been pushed.
	PushID Hash
}

// Pushed reports whether the remote already has this branch's current tip.
func (b Branch) Pushed() bool {
	return !b.PushID.IsZero() && b.PushID == b.ID
}
