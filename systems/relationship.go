package systems

// pairKey identifies an unordered entity pair. Storing each edge once
// under its canonical order makes symmetry structural: the A→B and B→A
// weights cannot diverge.
type pairKey struct {
	lo, hi uint32
}

func keyOf(a, b uint32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// RelationshipGraph is the sparse symmetric weighted social-affinity graph.
// Weights stay in [-1, 1]; an absent edge reads as 0 (neutral).
type RelationshipGraph struct {
	weights map[pairKey]float32
}

// NewRelationshipGraph returns an empty graph.
func NewRelationshipGraph() *RelationshipGraph {
	return &RelationshipGraph{weights: make(map[pairKey]float32)}
}

// Weight returns the affinity between a and b, 0 if none is stored.
func (g *RelationshipGraph) Weight(a, b uint32) float32 {
	if a == b {
		return 0
	}
	return g.weights[keyOf(a, b)]
}

// Adjust adds delta to the pair's weight, clamped to [-1, 1]. The change
// is symmetric by construction.
func (g *RelationshipGraph) Adjust(a, b uint32, delta float32) {
	if a == b {
		return
	}
	k := keyOf(a, b)
	g.weights[k] = clampUnit(g.weights[k] + delta)
}

// Set stores an explicit weight for the pair, clamped to [-1, 1].
func (g *RelationshipGraph) Set(a, b uint32, w float32) {
	if a == b {
		return
	}
	g.weights[keyOf(a, b)] = clampUnit(w)
}

// Len returns the number of stored edges.
func (g *RelationshipGraph) Len() int {
	return len(g.weights)
}

// Reset drops every edge.
func (g *RelationshipGraph) Reset() {
	g.weights = make(map[pairKey]float32)
}

// Edge is one stored relationship, reported with A < B.
type Edge struct {
	A, B   uint32
	Weight float32
}

// Edges returns every stored edge. Order is unspecified.
func (g *RelationshipGraph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.weights))
	for k, w := range g.weights {
		edges = append(edges, Edge{A: k.lo, B: k.hi, Weight: w})
	}
	return edges
}
