package ops

import "github.com/epage/git-branch-stash/internal/graph"

// CommandKind identifies the operation a [Command] asks an executor to
// perform. The executor itself (talking to a real working tree) is outside
// this package's scope; ToScript only decides the ordered list of steps.
type CommandKind int

const (
	// SwitchCommit moves the working tree directly onto an existing,
	// already-realized commit. Used to re-enter protected history and to
	// return to a fork point rooted in protected history, since that
	// commit id is known ahead of time.
	SwitchCommit CommandKind = iota

	// SwitchMark returns the working tree to a position previously saved
	// with RegisterMark. Used at fork points whose commit only comes
	// into existence once the script runs, so there is no id to switch
	// to directly.
	SwitchMark

	// RegisterMark saves the current working-tree position under the
	// originating node's id, for a later SwitchMark.
	RegisterMark

	// CherryPick replays the named commit's changes on top of the
	// current position as a new commit.
	CherryPick

	// Squash replays the named commit's changes on top of the current
	// position, folded into the commit that preceded it rather than
	// becoming its own commit.
	Squash

	// CreateBranch points Branch at the current position.
	CreateBranch

	// DeleteBranch removes Branch.
	DeleteBranch
)

// String renders the kind's name, chiefly for test output and logging.
func (k CommandKind) String() string {
	switch k {
	case SwitchCommit:
		return "SwitchCommit"
	case SwitchMark:
		return "SwitchMark"
	case RegisterMark:
		return "RegisterMark"
	case CherryPick:
		return "CherryPick"
	case Squash:
		return "Squash"
	case CreateBranch:
		return "CreateBranch"
	case DeleteBranch:
		return "DeleteBranch"
	default:
		return "Unknown"
	}
}

// Command is a single step of a [Script]. ID is meaningful for every kind
// except CreateBranch/DeleteBranch, which use Branch instead. For
// RegisterMark/SwitchMark, ID is the id of the node that introduced the
// fork, not necessarily a real commit in the repository.
type Command struct {
	Kind   CommandKind
	ID     graph.Hash
	Branch string
}

// Script is an ordered, side-effect-free plan for rebuilding one line of
// history. Dependents are the stacks that fork off the end of Commands;
// each one is independent of its siblings once the position they share has
// been reached, so they may be replayed in any order (or in parallel).
type Script struct {
	Commands   []Command
	Dependents []*Script
}

// Empty reports whether s contributes nothing: no commands and no
// dependents. Callers building a Script tree should skip attaching an
// empty child rather than keep it around as a no-op.
func (s *Script) Empty() bool {
	return s == nil || (len(s.Commands) == 0 && len(s.Dependents) == 0)
}

// ToScript linearizes g, which must already have been through the rest of
// the pass pipeline, into a [Script] ready to hand to an executor.
//
// It runs two separate phases, matching the two distinct jobs the
// protected frontier and everything past it have to do. The top level is
// a BFS over the protected spine that emits no commands of its own:
// protected nodes are pure passageways, since their commits already exist
// and need no script to recreate them. The moment a protected node's child
// leaves protected history, [nodeToScript] takes over for that subtree,
// and the resulting dependent is prefixed with a single SwitchCommit back
// to the protected parent. Every such handoff becomes a sibling of every
// other at the very top, so a fork anywhere in the protected frontier
// starts its dependents independently rather than nesting one under
// another's redundant SwitchCommit chain.
func ToScript(g *graph.Graph) *Script {
	script := &Script{}

	var queue []graph.Hash
	if g.Root().Action.IsProtected() {
		queue = append(queue, g.RootID())
	}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		for _, childID := range g.MustGet(parentID).ChildIDs() {
			child := g.MustGet(childID)
			if child.Action.IsProtected() {
				queue = append(queue, childID)
				continue
			}

			dependent := nodeToScript(g, childID)
			if dependent == nil {
				continue
			}
			dependent.Commands = append([]Command{{Kind: SwitchCommit, ID: parentID}}, dependent.Commands...)
			script.Dependents = append(script.Dependents, dependent)
		}
	}

	return script
}

// nodeToScript emits the commands for id itself, then folds in whatever
// its descendants contribute. It returns nil, the "absent" script of
// spec §4.9, when id and everything beneath it contributes nothing.
func nodeToScript(g *graph.Graph, id graph.Hash) *Script {
	node := g.MustGet(id)
	s := &Script{}

	switch {
	case node.Action.IsProtected():
		if dependents := nodeDependents(g, node); len(dependents) > 0 {
			s.Commands = append(s.Commands, Command{Kind: SwitchCommit, ID: id})
			// Protected commits already exist; SwitchCommit can return
			// here directly at any time, so carrying branches never
			// forces a transaction boundary here. One is still drawn
			// when there is more than one dependent.
			extendDependents(s, id, dependents, false)
		}

	case node.Action.IsDelete():
		for _, b := range node.Branches {
			s.Commands = append(s.Commands, Command{Kind: DeleteBranch, Branch: b.Name})
		}
		extendDependents(s, id, nodeDependents(g, node), len(node.Branches) > 0)

	case node.Action.IsSquash():
		s.Commands = append(s.Commands, Command{Kind: Squash, ID: id})
		for _, b := range node.Branches {
			s.Commands = append(s.Commands, Command{Kind: CreateBranch, Branch: b.Name})
		}
		extendDependents(s, id, nodeDependents(g, node), len(node.Branches) > 0)

	default: // Pick
		s.Commands = append(s.Commands, Command{Kind: CherryPick, ID: id})
		for _, b := range node.Branches {
			s.Commands = append(s.Commands, Command{Kind: CreateBranch, Branch: b.Name})
		}
		extendDependents(s, id, nodeDependents(g, node), len(node.Branches) > 0)
	}

	if s.Empty() {
		return nil
	}
	return s
}

// nodeDependents collects the non-empty scripts contributed by each of
// node's children.
func nodeDependents(g *graph.Graph, node *graph.Node) []*Script {
	var deps []*Script
	for _, childID := range node.ChildIDs() {
		if child := nodeToScript(g, childID); child != nil {
			deps = append(deps, child)
		}
	}
	return deps
}

// extendDependents decides whether dependents are inlined into s or split
// off as separate, mark-guarded dependent scripts, and appends
// accordingly.
//
// A transaction boundary is drawn when forceBoundary is set (id carries
// branches) or there is more than one dependent: each dependent then
// becomes its own script, prefixed with a SwitchMark(id) that returns the
// working tree to id's position, framed by a RegisterMark(id) in s. A lone
// dependent with no forced boundary is inlined directly into s instead,
// with no mark overhead at all.
func extendDependents(s *Script, id graph.Hash, dependents []*Script, forceBoundary bool) {
	if len(dependents) == 0 {
		return
	}

	if !forceBoundary && len(dependents) == 1 {
		dep := dependents[0]
		s.Commands = append(s.Commands, dep.Commands...)
		s.Dependents = append(s.Dependents, dep.Dependents...)
		return
	}

	s.Commands = append(s.Commands, Command{Kind: RegisterMark, ID: id})
	for _, dep := range dependents {
		dep.Commands = append([]Command{{Kind: SwitchMark, ID: id}}, dep.Commands...)
	}
	s.Dependents = append(s.Dependents, dependents...)
}
