package parallel

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/utkarsh5026/forkpool/pool"
)

var (
	// ErrInvalidVertex is returned when an edge names a vertex outside [0, Vertices).
	ErrInvalidVertex = errors.New("parallel: edge endpoint out of range")

	// ErrInvalidWeight is returned for NaN edge weights, which have no order.
	ErrInvalidWeight = errors.New("parallel: edge weight is NaN")
)

// Edge is an undirected weighted edge between vertices U and V.
type Edge struct {
	U, V   int
	Weight float64
}

// Graph is an undirected weighted graph on vertices 0..Vertices-1.
// Parallel edges are allowed; self-loops are ignored.
type Graph struct {
	Vertices int
	Edges    []Edge
}

// Forest is a minimum spanning forest: one minimum spanning tree per
// connected component.
type Forest struct {
	// Edges holds indices into Graph.Edges, in ascending order.
	Edges []int
	// Weight is the sum of the selected edge weights.
	Weight float64
	// Components is the number of trees, counting isolated vertices.
	Components int
}

// noEdge marks a component with no outgoing edge in the current round.
const noEdge = -1

// SpanningForest computes the minimum spanning forest of g with Borůvka's
// algorithm. Each round finds, in parallel, the cheapest edge leaving every
// component and contracts along all of them; the number of components at
// least halves per round.
//
// Edges are totally ordered by (Weight, index), so ties never form cycles and
// the result is the same on every pool size.
func SpanningForest(s pool.Scope, g Graph) (Forest, error) {
	if err := validate(g); err != nil {
		return Forest{}, err
	}

	n := g.Vertices
	dsu := newDisjointSet(n)
	forest := Forest{Components: n}
	comp := make([]int, n)
	grain := max(len(g.Edges)/(4*s.Pool().Size()), DefaultGrain)

	for forest.Components > 1 {
		For(s, 0, n, DefaultGrain, func(v int) {
			comp[v] = dsu.root(v)
		})

		best := cheapestEdges(s, g.Edges, comp, n, grain)

		added := 0
		for c, e := range best {
			if e == noEdge || comp[c] != c {
				continue
			}
			edge := g.Edges[e]
			if dsu.union(edge.U, edge.V) {
				forest.Edges = append(forest.Edges, e)
				forest.Weight += edge.Weight
				forest.Components--
				added++
			}
		}

		if added == 0 {
			break
		}
	}

	slices.Sort(forest.Edges)
	return forest, nil
}

// cheapestEdges returns, for every component root c, the index of the
// lightest edge with exactly one endpoint in c, or noEdge.
func cheapestEdges(s pool.Scope, edges []Edge, comp []int, n, grain int) []int {
	type span struct{ lo, hi int }

	spans := make([]span, 0, len(edges)/grain+1)
	for lo := 0; lo < len(edges); lo += grain {
		spans = append(spans, span{lo, min(lo+grain, len(edges))})
	}

	lighter := func(a, b int) bool {
		if b == noEdge {
			return a != noEdge
		}
		if a == noEdge {
			return false
		}
		if edges[a].Weight != edges[b].Weight {
			return edges[a].Weight < edges[b].Weight
		}
		return a < b
	}

	return MapReduce(s, spans,
		func(sp span) []int {
			best := make([]int, n)
			for i := range best {
				best[i] = noEdge
			}
			for i := sp.lo; i < sp.hi; i++ {
				cu, cv := comp[edges[i].U], comp[edges[i].V]
				if cu == cv {
					continue
				}
				if lighter(i, best[cu]) {
					best[cu] = i
				}
				if lighter(i, best[cv]) {
					best[cv] = i
				}
			}
			return best
		},
		nil,
		func(a, b []int) []int {
			if a == nil {
				return b
			}
			if b == nil {
				return a
			}
			for i := range a {
				if lighter(b[i], a[i]) {
					a[i] = b[i]
				}
			}
			return a
		},
		1,
	)
}

func validate(g Graph) error {
	if g.Vertices < 0 {
		return fmt.Errorf("%w: negative vertex count %d", ErrInvalidVertex, g.Vertices)
	}
	for i, e := range g.Edges {
		if e.U < 0 || e.U >= g.Vertices || e.V < 0 || e.V >= g.Vertices {
			return fmt.Errorf("%w: edge %d (%d, %d) with %d vertices", ErrInvalidVertex, i, e.U, e.V, g.Vertices)
		}
		if math.IsNaN(e.Weight) {
			return fmt.Errorf("%w: edge %d", ErrInvalidWeight, i)
		}
	}
	return nil
}

// disjointSet is union-find with path halving and union by size. It is used
// only between parallel phases, never concurrently with writes.
type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{parent: make([]int, n), size: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
		d.size[i] = 1
	}
	return d
}

// root finds the representative of v without modifying the structure, so it
// is safe to call from many goroutines at once.
func (d *disjointSet) root(v int) int {
	for d.parent[v] != v {
		v = d.parent[v]
	}
	return v
}

func (d *disjointSet) find(v int) int {
	for d.parent[v] != v {
		d.parent[v] = d.parent[d.parent[v]]
		v = d.parent[v]
	}
	return v
}

// union merges the sets of a and b and reports whether they were distinct.
func (d *disjointSet) union(a, b int) bool {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return false
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	return true
}
