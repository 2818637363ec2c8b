// Package quadtree is the broad-phase spatial index: an arena of nodes rebuilt
// from scratch every tick, storing indices into a caller-owned body slice.
package quadtree

import (
	"github.com/lixenwraith/quadsim/core"
)

// NoChild marks a node that has not split
const NoChild int32 = -1

// node is one arena slot; children are four consecutive slots starting at first
type node struct {
	bounds core.Rect
	depth  int
	first  int32 // Index of NW child, NoChild if unsplit
	items  []int // Body indices stored at this node
}

// Tree is a quadtree over a fixed rectangle
// Holds no body data; Reset binds it to the slice that indices refer to
type Tree struct {
	bounds     core.Rect
	maxObjects int
	maxDepth   int

	nodes  []node
	bodies []core.Body
}

// New creates a tree over bounds with split threshold maxObjects and depth cap maxDepth
func New(bounds core.Rect, maxObjects, maxDepth int) *Tree {
	if maxObjects < 1 {
		maxObjects = 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	t := &Tree{
		bounds:     bounds,
		maxObjects: maxObjects,
		maxDepth:   maxDepth,
		nodes:      make([]node, 0, 64),
	}
	t.Reset(nil)
	return t
}

// Bounds returns the root rectangle
func (t *Tree) Bounds() core.Rect { return t.bounds }

// Reset discards all nodes and binds the tree to bodies
// Node slots and their item slices are reused to avoid per-tick allocation
func (t *Tree) Reset(bodies []core.Body) {
	t.bodies = bodies
	t.nodes = t.nodes[:0]
	t.alloc(t.bounds, 0)
}

// Build resets the tree and inserts every body in index order
func (t *Tree) Build(bodies []core.Body) {
	t.Reset(bodies)
	for i := range bodies {
		t.Insert(i)
	}
}

// Len returns the number of live nodes
func (t *Tree) Len() int { return len(t.nodes) }

// alloc appends a node slot, recycling the previous tick's item storage
func (t *Tree) alloc(bounds core.Rect, depth int) int32 {
	idx := len(t.nodes)
	if idx < cap(t.nodes) {
		t.nodes = t.nodes[:idx+1]
		n := &t.nodes[idx]
		n.bounds = bounds
		n.depth = depth
		n.first = NoChild
		n.items = n.items[:0]
	} else {
		t.nodes = append(t.nodes, node{bounds: bounds, depth: depth, first: NoChild})
	}
	return int32(idx)
}

// split creates the four children of node ni
func (t *Tree) split(ni int32) {
	bounds, depth := t.nodes[ni].bounds, t.nodes[ni].depth
	first := t.alloc(bounds.Quadrant(core.QuadrantNW), depth+1)
	t.alloc(bounds.Quadrant(core.QuadrantNE), depth+1)
	t.alloc(bounds.Quadrant(core.QuadrantSW), depth+1)
	t.alloc(bounds.Quadrant(core.QuadrantSE), depth+1)
	t.nodes[ni].first = first
}

// quadrant returns the child quadrant fully containing body i at node ni
func (t *Tree) quadrant(ni int32, i int) int {
	b := &t.bodies[i]
	return t.nodes[ni].bounds.QuadrantOf(b.Position, b.Radius)
}

// Insert adds body index i, descending into the single child quadrant that contains it
func (t *Tree) Insert(i int) {
	t.insert(0, i)
}

func (t *Tree) insert(ni int32, i int) {
	if first := t.nodes[ni].first; first != NoChild {
		if q := t.quadrant(ni, i); q != core.QuadrantNone {
			t.insert(first+int32(q), i)
			return
		}
	}

	t.nodes[ni].items = append(t.nodes[ni].items, i)

	if len(t.nodes[ni].items) <= t.maxObjects || t.nodes[ni].depth >= t.maxDepth {
		return
	}

	if t.nodes[ni].first == NoChild {
		t.split(ni)
	}

	// Migrate contained bodies down; straddlers stay here
	first := t.nodes[ni].first
	items := t.nodes[ni].items
	kept := items[:0]
	for _, j := range items {
		if q := t.quadrant(ni, j); q != core.QuadrantNone {
			t.insert(first+int32(q), j)
		} else {
			kept = append(kept, j)
		}
	}
	t.nodes[ni].items = kept
}

// Retrieve appends broad-phase candidates for body i to out and returns it
// Follows the insert path; at the node where the body stops descending the whole
// subtree is collected, then local bodies of every node on the path are appended
// The result includes i itself and may contain false positives
// Order is subtree first, then path locals from the deepest node up to the root;
// collision resolution is first-candidate-wins, so this order decides which pair resolves
func (t *Tree) Retrieve(i int, out []int) []int {
	return t.retrieve(0, i, out)
}

func (t *Tree) retrieve(ni int32, i int, out []int) []int {
	if first := t.nodes[ni].first; first != NoChild {
		if q := t.quadrant(ni, i); q != core.QuadrantNone {
			out = t.retrieve(first+int32(q), i, out)
		} else {
			for c := int32(0); c < 4; c++ {
				out = t.collect(first+c, out)
			}
		}
	}
	return append(out, t.nodes[ni].items...)
}

// collect appends every body stored in the subtree rooted at ni
func (t *Tree) collect(ni int32, out []int) []int {
	if first := t.nodes[ni].first; first != NoChild {
		for c := int32(0); c < 4; c++ {
			out = t.collect(first+c, out)
		}
	}
	return append(out, t.nodes[ni].items...)
}

// Walk visits every live node in arena order
func (t *Tree) Walk(fn func(bounds core.Rect, depth, stored int, leaf bool)) {
	for i := range t.nodes {
		n := &t.nodes[i]
		fn(n.bounds, n.depth, len(n.items), n.first == NoChild)
	}
}

// MaxDepthReached returns the deepest live node depth
func (t *Tree) MaxDepthReached() int {
	deepest := 0
	for i := range t.nodes {
		deepest = max(deepest, t.nodes[i].depth)
	}
	return deepest
}
