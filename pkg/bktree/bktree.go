// Package bktree implements a Burkhard-Keller tree for bounded edit-distance
// lookup over a set of strings.
package bktree

import (
	"sort"

	"github.com/Ramsey-B/fern/pkg/similarity"
)

// DistanceFunc is a metric over strings.
type DistanceFunc func(a, b string) int

type edge struct {
	dist  int
	child int32
}

type node struct {
	term     string
	children []edge
}

// Tree is a BK-tree whose nodes live in a single slice and refer to each
// other by index. A Tree must not be modified once it is shared; concurrent
// Search calls are safe.
type Tree struct {
	nodes    []node
	distance DistanceFunc
}

// Match is a term found within the search radius.
type Match struct {
	Term     string
	Distance int
}

// New creates an empty tree using edit distance. A nil distance uses
// similarity.LevenshteinDistance.
func New(distance DistanceFunc) *Tree {
	if distance == nil {
		distance = similarity.LevenshteinDistance
	}
	return &Tree{distance: distance}
}

// Len returns the number of distinct terms in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Add inserts term. Adding a term that is already present is a no-op.
func (t *Tree) Add(term string) {
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, node{term: term})
		return
	}

	cur := int32(0)
	for {
		d := t.distance(term, t.nodes[cur].term)
		if d == 0 {
			return
		}
		next := int32(-1)
		for _, e := range t.nodes[cur].children {
			if e.dist == d {
				next = e.child
				break
			}
		}
		if next < 0 {
			t.nodes = append(t.nodes, node{term: term})
			idx := int32(len(t.nodes) - 1)
			t.nodes[cur].children = append(t.nodes[cur].children, edge{dist: d, child: idx})
			return
		}
		cur = next
	}
}

// Search returns every term within maxDist of term, ordered by distance
// and then by term.
func (t *Tree) Search(term string, maxDist int) []Match {
	if len(t.nodes) == 0 || maxDist < 0 {
		return nil
	}

	var out []Match
	stack := []int32{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[idx]
		d := t.distance(term, n.term)
		if d <= maxDist {
			out = append(out, Match{Term: n.term, Distance: d})
		}
		lo, hi := d-maxDist, d+maxDist
		for _, e := range n.children {
			if e.dist >= lo && e.dist <= hi {
				stack = append(stack, e.child)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Term < out[j].Term
	})
	return out
}
