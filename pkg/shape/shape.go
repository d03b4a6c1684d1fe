// Package shape groups raw vectorized contours into a forest of
// outer-shape/hole relationships. Nesting alternates meaning with depth:
// even depth bounds material to engrave, odd depth bounds a hole that must
// stay untouched. A hole may again contain solid islands, recursively.
package shape

import (
	"fmt"

	"pcblaser/pkg/geom"
)

// NoParent marks a root contour in parent hint slices and in Node.Parent.
const NoParent = -1

// Node is one contour in the forest. Parent and Children are indices into
// the owning Forest's Nodes arena, never pointers, so the structure stays
// acyclic and copyable.
type Node struct {
	Contour  geom.Contour
	Parent   int
	Children []int
	Depth    int
}

// Hole reports whether the node bounds a region the laser must not enter.
func (n *Node) Hole() bool {
	return n.Depth%2 == 1
}

// Forest owns all nodes. Roots lists the indices of top-level shapes in
// input order.
type Forest struct {
	Nodes []Node
	Roots []int
}

// Walk visits every node in preorder (a shape before its descendants),
// following input order among siblings.
func (f *Forest) Walk(visit func(idx int, n *Node)) {
	var rec func(int)
	rec = func(i int) {
		visit(i, &f.Nodes[i])
		for _, c := range f.Nodes[i].Children {
			rec(c)
		}
	}
	for _, r := range f.Roots {
		rec(r)
	}
}

// Build assembles the forest from the vectorizer's flat contour list.
// parents carries the vectorizer's immediate-parent relation (NoParent for
// roots); pass nil to infer nesting by containment instead, choosing the
// smallest enclosing contour and breaking area ties by input order.
//
// Contours with fewer than 3 points and contours whose parent relation
// cannot be resolved are dropped, each reported as a warning. Warnings
// never abort the run.
func Build(contours []geom.Contour, parents []int) (*Forest, []error) {
	var warns []error

	// Input index -> arena index, or -1 for dropped contours.
	arena := make([]int, len(contours))
	f := &Forest{}
	for i, c := range contours {
		if len(c) < 3 {
			arena[i] = -1
			warns = append(warns, fmt.Errorf("contour %d: only %d points, dropped", i, len(c)))
			continue
		}
		arena[i] = len(f.Nodes)
		f.Nodes = append(f.Nodes, Node{Contour: c, Parent: NoParent})
	}

	if parents == nil {
		parents = inferParents(contours, arena)
	} else if len(parents) != len(contours) {
		// A malformed relation is unresolvable for every contour.
		return &Forest{}, append(warns, fmt.Errorf("parent relation has %d entries for %d contours", len(parents), len(contours)))
	}

	// Drops cascade: a contour whose parent was dropped is itself
	// unresolvable, regardless of input order, so iterate to a fixpoint
	// before assigning any parent index.
	for changed := true; changed; {
		changed = false
		for i, pi := range parents {
			if arena[i] < 0 || pi == NoParent {
				continue
			}
			if pi < 0 || pi >= len(contours) || pi == i || arena[pi] < 0 {
				f.Nodes[arena[i]].Contour = nil
				arena[i] = -1
				warns = append(warns, fmt.Errorf("contour %d: unresolvable parent %d, dropped", i, pi))
				changed = true
			}
		}
	}
	for i, pi := range parents {
		if ni := arena[i]; ni >= 0 && pi != NoParent {
			f.Nodes[ni].Parent = arena[pi]
		}
	}

	// Attach children in input order and assign depths. A cycle in the
	// supplied relation leaves its members without a defined depth; they
	// are dropped rather than guessed at.
	for i := range f.Nodes {
		if f.Nodes[i].Contour == nil {
			continue
		}
		if p := f.Nodes[i].Parent; p == NoParent {
			f.Roots = append(f.Roots, i)
		} else {
			f.Nodes[p].Children = append(f.Nodes[p].Children, i)
		}
	}
	seen := make([]bool, len(f.Nodes))
	var depth func(i, d int)
	depth = func(i, d int) {
		seen[i] = true
		f.Nodes[i].Depth = d
		for _, c := range f.Nodes[i].Children {
			depth(c, d+1)
		}
	}
	for _, r := range f.Roots {
		depth(r, 0)
	}
	for i := range f.Nodes {
		if !seen[i] && f.Nodes[i].Contour != nil {
			f.Nodes[i].Contour = nil
			f.Nodes[i].Children = nil
			warns = append(warns, fmt.Errorf("contour in parent cycle at node %d, dropped", i))
		}
	}
	return f, warns
}

// inferParents derives the immediate-parent relation by point-in-polygon
// tests: a contour's parent is the smallest-area contour containing its
// first point, with ties going to the earlier contour in vectorizer order.
func inferParents(contours []geom.Contour, arena []int) []int {
	parents := make([]int, len(contours))
	for i := range parents {
		parents[i] = NoParent
	}
	for i, c := range contours {
		if arena[i] < 0 {
			continue
		}
		probe := c[0]
		best, bestArea := NoParent, 0.0
		for j, enc := range contours {
			if j == i || arena[j] < 0 {
				continue
			}
			if !enc.Contains(probe) {
				continue
			}
			// Strict less keeps the earlier contour on equal area,
			// since j ascends in vectorizer order.
			a := enc.Area()
			if best == NoParent || a < bestArea {
				best, bestArea = j, a
			}
		}
		parents[i] = best
	}
	return parents
}
