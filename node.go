package dawg

import (
	"sort"
	"strconv"
	"strings"
)

// Node is a vertex of the word graph. A node is terminal if some
// inserted word ends at it. Outgoing edges are labelled with a single
// grapheme each; labels are unique per node. Once minimization has
// folded equivalent subtrees, a node may be the child of many parents.
type Node struct {
	id       int
	terminal bool
	edges    map[string]*Node

	// number of words reachable from this node, including itself if
	// terminal. Populated by Finish; zero before that.
	count int
}

// nodeFactory hands out nodes with monotonically increasing ids. The
// id is a build-time handle used inside canonical forms; it is never
// reused and is not part of the public API (only Dump prints it).
type nodeFactory struct {
	nextID int
}

func (f *nodeFactory) create() *Node {
	node := &Node{
		id:    f.nextID,
		edges: make(map[string]*Node),
	}
	f.nextID++
	return node
}

// Terminal reports whether an inserted word ends at this node.
func (n *Node) Terminal() bool {
	return n.terminal
}

// Count returns the number of words reachable from this node. It is
// only meaningful on a sealed DAWG.
func (n *Node) Count() int {
	return n.count
}

// Labels returns the labels of the outgoing edges in sorted order.
func (n *Node) Labels() []string {
	labels := make([]string, 0, len(n.edges))
	for label := range n.edges {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Child returns the node the edge with the given label leads to, or
// nil if there is no such edge.
func (n *Node) Child(label string) *Node {
	return n.edges[label]
}

// canonical returns the string that identifies this node's subtree
// shape: the terminal flag followed by (child id, label) pairs for
// every edge. Edges are enumerated sorted by label so that the same
// edge set always produces the same form. Two nodes are equivalent iff
// their canonical forms are equal.
func (n *Node) canonical() string {
	var b strings.Builder
	if n.terminal {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}

	for _, label := range n.Labels() {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(n.edges[label].id))
		b.WriteByte('_')
		b.WriteString(label)
	}

	return b.String()
}

// numReachable computes and caches the number of words reachable from
// this node. The cache makes the walk linear in the number of nodes
// even though minimized nodes are shared by many parents.
func (n *Node) numReachable() int {
	if n.count != 0 {
		return n.count
	}

	count := 0
	if n.terminal {
		count++
	}

	for _, child := range n.edges {
		count += child.numReachable()
	}

	n.count = count
	return count
}
