// Package vcsgit implements [ops.Repo] and [ops.Branches] against a real
// Git checkout, using the Git CLI with a library-like interface. All
// shell-to-Git interactions the core needs should go through this package.
package vcsgit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/logging"
	"github.com/epage/git-branch-stash/internal/xec"
)

// fieldSep and recordSep delimit the fields and records of the custom
// format strings used to bulk-extract commit metadata in a single process
// invocation, mirroring git's own internal use of the ASCII unit/record
// separator bytes to avoid collisions with commit message content.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

const logFormat = "%H" + fieldSep + "%T" + fieldSep + "%at" + fieldSep +
	"%an <%ae>" + fieldSep + "%cn <%ce>" + fieldSep + "%s" + recordSep

// Repository is a Git working tree, accessed by shelling out to the git
// binary found on PATH.
type Repository struct {
	dir string
	log *logging.Logger
}

// Open returns a Repository rooted at dir, which must already be a Git
// working tree or bare repository. It fails fast if no git binary is on
// PATH, rather than letting the first real command surface that as an
// opaque exec error.
func Open(dir string, log *logging.Logger) (*Repository, error) {
	if _, err := xec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Repository{dir: dir, log: log}, nil
}

func (r *Repository) cmd(ctx context.Context, args ...string) *xec.Cmd {
	return xec.Command(ctx, r.log, "git", args...).WithDir(r.dir)
}

// MergeBase reports the deepest common ancestor of a and b. A non-zero git
// exit is treated as "no common ancestor" rather than an error, since that
// is the only condition under which merge-base fails against two commits
// that both resolve.
func (r *Repository) MergeBase(ctx context.Context, a, b graph.Hash) (graph.Hash, bool, error) {
	out, err := r.cmd(ctx, "merge-base", string(a), string(b)).OutputChomp()
	if err != nil {
		var exitErr *xec.ExitError
		if errors.As(err, &exitErr) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	return graph.Hash(out), true, nil
}

// ResolveCommit resolves a commit-ish (branch name, tag, abbreviated hash,
// HEAD~3, ...) to its full commit hash.
func (r *Repository) ResolveCommit(ctx context.Context, ref string) (graph.Hash, error) {
	out, err := r.cmd(ctx, "rev-parse", "--verify", "--quiet", "--end-of-options", ref+"^{commit}").OutputChomp()
	if err != nil {
		var exitErr *xec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("rev-parse %s: not a valid commit-ish", ref)
		}
		return "", fmt.Errorf("rev-parse %s: %w", ref, err)
	}
	return graph.Hash(out), nil
}

func splitRecordSep(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, recordSep[0]); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseLogRecord(rec []byte) (graph.Commit, error) {
	fields := strings.Split(strings.TrimPrefix(string(rec), "\n"), fieldSep)
	if len(fields) != 6 {
		return graph.Commit{}, fmt.Errorf("malformed commit record: %q", rec)
	}

	sec, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return graph.Commit{}, fmt.Errorf("parse commit time %q: %w", fields[2], err)
	}

	return graph.Commit{
		ID:        graph.Hash(fields[0]),
		TreeID:    graph.Hash(fields[1]),
		Time:      time.Unix(sec, 0).UTC(),
		Author:    fields[3],
		Committer: fields[4],
		Summary:   fields[5],
	}, nil
}

const historyFormat = "%H" + fieldSep + "%T" + fieldSep + "%P" + fieldSep + "%at" + fieldSep +
	"%an <%ae>" + fieldSep + "%cn <%ce>" + fieldSep + "%s" + recordSep

// historyRecord is a commit plus its parent ids, used only while assembling
// a [graph.Graph]; [graph.Commit] itself carries no parent links, since the
// Graph records ancestry as child edges on the owning Node instead.
type historyRecord struct {
	graph.Commit
	Parents []graph.Hash
}

func parseHistoryRecord(rec []byte) (historyRecord, error) {
	fields := strings.Split(strings.TrimPrefix(string(rec), "\n"), fieldSep)
	if len(fields) != 7 {
		return historyRecord{}, fmt.Errorf("malformed history record: %q", rec)
	}

	sec, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return historyRecord{}, fmt.Errorf("parse commit time %q: %w", fields[3], err)
	}

	var parents []graph.Hash
	if fields[2] != "" {
		for _, p := range strings.Fields(fields[2]) {
			parents = append(parents, graph.Hash(p))
		}
	}

	return historyRecord{
		Commit: graph.Commit{
			ID:        graph.Hash(fields[0]),
			TreeID:    graph.Hash(fields[1]),
			Time:      time.Unix(sec, 0).UTC(),
			Author:    fields[4],
			Committer: fields[5],
			Summary:   fields[6],
		},
		Parents: parents,
	}, nil
}

// history yields every commit reachable from tips but not from rootID
// (rootID itself excluded), in a single `git log` invocation.
func (r *Repository) history(ctx context.Context, tips []graph.Hash, rootID graph.Hash) iter.Seq2[historyRecord, error] {
	args := []string{"log", "--format=" + historyFormat}
	for _, t := range tips {
		args = append(args, string(t))
	}
	args = append(args, "--not", string(rootID))
	cmd := r.cmd(ctx, args...)

	return func(yield func(historyRecord, error) bool) {
		for rec, err := range cmd.Scan(splitRecordSep) {
			if err != nil {
				yield(historyRecord{}, fmt.Errorf("git log: %w", err))
				return
			}
			if len(bytes.TrimSpace(rec)) == 0 {
				continue
			}
			h, err := parseHistoryRecord(rec)
			if err != nil {
				if !yield(historyRecord{}, err) {
					return
				}
				continue
			}
			if !yield(h, nil) {
				return
			}
		}
	}
}

// showCommit loads the single commit metadata record for id.
func (r *Repository) showCommit(ctx context.Context, id graph.Hash) (graph.Commit, error) {
	out, err := r.cmd(ctx, "show", "-s", "--format="+historyFormat, string(id)).Output()
	if err != nil {
		return graph.Commit{}, fmt.Errorf("git show %s: %w", id, err)
	}
	rec, err := parseHistoryRecord(bytes.TrimSuffix(out, []byte(recordSep+"\n")))
	if err != nil {
		return graph.Commit{}, err
	}
	return rec.Commit, nil
}

// CommitsFrom walks history starting at id, moving toward the root, in a
// single `git log` invocation rather than one process per commit.
func (r *Repository) CommitsFrom(ctx context.Context, id graph.Hash) iter.Seq2[graph.Commit, error] {
	cmd := r.cmd(ctx, "log", "--format="+logFormat, string(id))
	return func(yield func(graph.Commit, error) bool) {
		for rec, err := range cmd.Scan(splitRecordSep) {
			if err != nil {
				yield(graph.Commit{}, fmt.Errorf("git log: %w", err))
				return
			}
			if len(bytes.TrimSpace(rec)) == 0 {
				continue
			}
			c, err := parseLogRecord(rec)
			if err != nil {
				if !yield(graph.Commit{}, err) {
					return
				}
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}
