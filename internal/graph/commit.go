package graph

import (
	"regexp"
	"strings"
	"time"
)

// Hash identifies a commit or tree object by its content hash.
type Hash string

// IsZero reports whether h is the empty hash.
func (h Hash) IsZero() bool { return h == "" }

func (h Hash) String() string { return string(h) }

// Commit is an immutable snapshot of a single commit's metadata, as loaded
// from the version control system. Commits are never mutated once they are
// placed in a [Node]; passes that need to change a commit's identity (for
// example, [Action] Squash) record that intent on the Node instead.
type Commit struct {
	// ID is the commit hash, unique within a Graph.
	ID Hash

	// TreeID is the hash of the tree this commit records. Two commits
	// with equal TreeID represent identical file-state.
	TreeID Hash

	// Summary is the first line of the commit message.
	Summary string

	// Time is the commit's authoring timestamp.
	Time time.Time

	// Author and Committer are optional identity strings, typically
	// "Name <email>". Either may be empty if unknown.
	Author, Committer string
}

var wipPrefixes = []string{
	"wip:", "wip ", "[wip]", "fixup!", "squash!",
}

// WIPSummary reports whether the commit's summary marks it as a
// work-in-progress commit not ready to be shared.
func (c Commit) WIPSummary() bool {
	s := strings.ToLower(strings.TrimSpace(c.Summary))
	for _, prefix := range wipPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

var fixupPattern = regexp.MustCompile(`^fixup!\s+(.+)$`)

// FixupSummary reports the target commit's summary if this commit is a
// fixup marker (as created by `git commit --fixup`), and whether one was
// found.
func (c Commit) FixupSummary() (target string, ok bool) {
	m := fixupPattern.FindStringSubmatch(strings.TrimSpace(c.Summary))
	if m == nil {
		return "", false
	}
	return m[1], true
}

var revertPattern = regexp.MustCompile(`(?i)^revert\b`)

// RevertSummary reports whether the commit's summary looks like a revert of
// another commit. Detection is heuristic: it inspects the summary text
// only, and makes no attempt to verify the revert semantically.
func (c Commit) RevertSummary() bool {
	return revertPattern.MatchString(strings.TrimSpace(c.Summary))
}
