package graph

import (
	"fmt"
	"slices"

	"github.com/epage/git-branch-stash/internal/must"
)

// Graph is the in-memory commit DAG that the transformation passes operate
// on. It is the sole owner of every [Node]; node-to-node edges are
// expressed purely as [Hash] ids resolved back through the Graph.
//
// Invariants maintained across every exported mutation:
//
//  1. Every id referenced by any node's Children exists in the Graph (or
//     has just been extracted as part of a returned subtree).
//  2. The graph is acyclic and every node is reachable from Root by
//     forward edges.
//
// Graph is not safe for concurrent use; the core is single-threaded by
// design (see the package-level discussion of concurrency in the
// specification this module implements).
type Graph struct {
	rootID Hash
	nodes  map[Hash]*Node
}

// New creates a Graph whose root is the given commit. The root is the
// common base all other commits in the graph descend from; it carries no
// parent edges from within the graph.
func New(root Commit) *Graph {
	g := &Graph{
		rootID: root.ID,
		nodes:  make(map[Hash]*Node),
	}
	g.nodes[root.ID] = newNode(root)
	return g
}

// RootID returns the commit id of the graph's distinguished base.
func (g *Graph) RootID() Hash {
	return g.rootID
}

// Root returns the node at the graph's distinguished base.
func (g *Graph) Root() *Node {
	n, ok := g.nodes[g.rootID]
	must.Bef(ok, "root node %q missing from graph", g.rootID)
	return n
}

// Get returns the node for id, or false if no such node exists.
func (g *Graph) Get(id Hash) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// MustGet returns the node for id, panicking if it does not exist. Passes
// use this after already having established (for example, by iterating a
// parent's Children) that id must be present; a miss indicates a broken
// graph invariant, not a recoverable condition.
func (g *Graph) MustGet(id Hash) *Node {
	n, ok := g.nodes[id]
	must.Bef(ok, "node %q does not exist in graph", id)
	return n
}

// Len reports the number of nodes currently stored in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddNode inserts a new node for commit into the graph, linked as a child
// of parent. It panics if parent does not exist or commit.ID is already
// present.
func (g *Graph) AddNode(parent Hash, commit Commit) {
	must.NotBef(commit.ID.IsZero(), "cannot add a node with a zero hash")
	_, exists := g.nodes[commit.ID]
	must.NotBef(exists, "node %q already exists in graph", commit.ID)

	p := g.MustGet(parent)
	g.nodes[commit.ID] = newNode(commit)
	p.AddChild(commit.ID)
}

// RemoveChild detaches childID from parentID's child set and extracts the
// subtree rooted at childID out of the store entirely: childID and every
// node reachable from it are removed from g and returned as an owned,
// read-only [Subtree].
//
// It returns an error if parentID or childID do not exist, or if
// parentID does not have childID as a direct child.
func (g *Graph) RemoveChild(parentID, childID Hash) (*Subtree, error) {
	parent, ok := g.nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("remove child: parent %q does not exist", parentID)
	}
	if !parent.HasChild(childID) {
		return nil, fmt.Errorf("remove child: %q is not a child of %q", childID, parentID)
	}

	parent.RemoveChild(childID)

	extracted := make(map[Hash]*Node)
	queue := []Hash{childID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, already := extracted[id]; already {
			continue
		}
		n, ok := g.nodes[id]
		must.Bef(ok, "extracting subtree: %q missing from graph", id)
		extracted[id] = n
		delete(g.nodes, id)
		queue = append(queue, n.ChildIDs()...)
	}

	return &Subtree{rootID: childID, nodes: extracted}, nil
}

// Topo returns every node id reachable from the root, ordered so that a
// parent always precedes its children. Ids with no further dependency
// between them keep the stable, lexicographic order established below,
// so the result is deterministic for a given graph (§5's ordering
// guarantee).
func (g *Graph) Topo() []Hash {
	ids := make([]Hash, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	parents := make(map[Hash][]Hash, len(g.nodes))
	for _, id := range ids {
		for _, child := range g.nodes[id].ChildIDs() {
			parents[child] = append(parents[child], id)
		}
	}

	topo := make([]Hash, 0, len(ids))
	visited := make(map[Hash]struct{}, len(ids))
	var visit func(Hash)
	visit = func(id Hash) {
		if _, ok := visited[id]; ok {
			return
		}
		visited[id] = struct{}{}
		for _, p := range parents[id] {
			visit(p)
		}
		topo = append(topo, id)
	}
	for _, id := range ids {
		visit(id)
	}

	must.BeEqualf(len(ids), len(topo), "topological sort of the commit graph dropped a node")
	return topo
}

// Subtree is an owned, read-only snapshot of a portion of a Graph that was
// extracted via [Graph.RemoveChild]. Callers are expected to query it (for
// example, for the branch names it contained) and then discard it; no node
// in a Subtree is ever resurrected into a Graph.
type Subtree struct {
	rootID Hash
	nodes  map[Hash]*Node
}

// RootID returns the commit id at the root of the extracted subtree.
func (s *Subtree) RootID() Hash {
	return s.rootID
}

// BreadthFirst visits the subtree's root, then its children in breadth
// order, calling visit with each node in turn.
func (s *Subtree) BreadthFirst(visit func(*Node)) {
	queue := []Hash{s.rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, ok := s.nodes[id]
		must.Bef(ok, "subtree missing node %q", id)
		visit(n)
		queue = append(queue, n.ChildIDs()...)
	}
}

// BranchNames returns the names of every branch carried by nodes in the
// subtree, in breadth-first order.
func (s *Subtree) BranchNames() []string {
	var names []string
	s.BreadthFirst(func(n *Node) {
		names = append(names, n.BranchNames()...)
	})
	return names
}
