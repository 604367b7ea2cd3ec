package genotype

import (
	"fmt"
	"math/rand"
)

// Kind is the tagged node type. Start and Processing nodes carry exactly one
// outgoing edge, Judgment nodes at least two plus the interval boundaries the
// judgment branches on.
type Kind int

const (
	Start Kind = iota
	Judgment
	Processing
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Judgment:
		return "judgment"
	case Processing:
		return "processing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StartID marks the start node, which lives outside the inner list and can
// therefore never collide with an inner index.
const StartID = -1

// Node is one node of a GNP graph. Edges are indices into the owning
// network's inner list, never pointers; the invariant inner[i].ID == i holds
// outside transient rewrites during delete.
type Node struct {
	ID       int
	Kind     Kind
	Function int

	Edges      []int
	Boundaries []float64

	// Fractal judgment layout: Edges has exactly K^D entries and Boundaries
	// derive from ProductionRule through FractalLengths.
	ProductionRule []float64
	K, D           int

	Used bool
}

// NewNode fixes identity, kind and function. Edges and boundaries are set by
// the initializers below.
func NewNode(id int, kind Kind, function int) Node {
	return Node{ID: id, Kind: kind, Function: function}
}

// SetEdges initializes the outgoing edges for a network of n inner nodes.
// Start and Processing nodes get one uniformly random non-self successor.
// Judgment nodes get a shuffled candidate list truncated to k edges, or to a
// uniformly random count in [2, n-1] when k is 0.
func (nd *Node) SetEdges(rng *rand.Rand, n, k int) error {
	switch nd.Kind {
	case Start, Processing:
		if n < 2 && nd.ID >= 0 && nd.ID < n {
			return fmt.Errorf("node %d: no non-self successor in %d nodes", nd.ID, n)
		}
		r := rng.Intn(n)
		for r == nd.ID {
			r = rng.Intn(n)
		}
		nd.Edges = []int{r}
		return nil
	case Judgment:
		candidates := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if i != nd.ID {
				candidates = append(candidates, i)
			}
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		count := k
		if count == 0 {
			if n < 3 {
				return fmt.Errorf("node %d: judgment edges need at least 3 nodes, got %d", nd.ID, n)
			}
			count = 2 + rng.Intn(n-2)
		}
		if count < 2 || count > len(candidates) {
			return fmt.Errorf("node %d: edge count %d outside [2, %d]", nd.ID, count, len(candidates))
		}
		nd.Edges = candidates[:count:count]
		return nil
	default:
		return fmt.Errorf("node %d: unknown kind %v", nd.ID, nd.Kind)
	}
}

// SetBoundaries lays out len(Edges)+1 ascending boundaries over the feature
// range. A nil lengths slice yields equal-width intervals; otherwise interval
// i spans (maxF-minF)*lengths[i] and lengths must sum to 1.
func (nd *Node) SetBoundaries(minF, maxF float64, lengths []float64) error {
	if maxF <= minF {
		return fmt.Errorf("node %d: empty feature range [%v, %v]", nd.ID, minF, maxF)
	}
	edgeCount := len(nd.Edges)
	if edgeCount == 0 {
		return fmt.Errorf("node %d: boundaries before edges", nd.ID)
	}
	if lengths != nil && len(lengths) != edgeCount {
		return fmt.Errorf("node %d: %d lengths for %d edges", nd.ID, len(lengths), edgeCount)
	}

	boundaries := make([]float64, edgeCount+1)
	boundaries[0] = minF
	if lengths == nil {
		span := (maxF - minF) / float64(edgeCount)
		for i := 1; i < edgeCount; i++ {
			boundaries[i] = minF + span*float64(i)
		}
	} else {
		span := maxF - minF
		for i := 1; i < edgeCount; i++ {
			boundaries[i] = boundaries[i-1] + span*lengths[i-1]
		}
	}
	boundaries[edgeCount] = maxF
	nd.Boundaries = boundaries
	return nil
}

// Judge maps a feature value to an edge index by binary search over the
// ascending boundaries. Values outside the range clamp to the first or last
// edge.
func (nd *Node) Judge(v float64) int {
	boundaries := nd.Boundaries
	if v <= boundaries[0] {
		return 0
	}
	if v >= boundaries[len(boundaries)-1] {
		return len(nd.Edges) - 1
	}
	lo, hi := 0, len(nd.Edges)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		switch {
		case v >= boundaries[mid] && v < boundaries[mid+1]:
			return mid
		case v < boundaries[mid]:
			hi = mid - 1
		default:
			lo = mid + 1
		}
	}
	return -1
}

// EdgeMutation replaces each outgoing edge independently with probability p by
// a random inner index that is neither the node itself nor the current target.
// The edge count is preserved. Networks of fewer than 3 nodes offer no
// alternative target and are left untouched.
func (nd *Node) EdgeMutation(rng *rand.Rand, p float64, n int) {
	if n < 3 {
		return
	}
	for i, current := range nd.Edges {
		if rng.Float64() >= p {
			continue
		}
		nd.Edges[i] = nd.ChangeEdge(rng, n, current)
	}
}

// ChangeEdge rejection-samples a successor in [0, n) that is neither the node
// itself nor current. Callers must guarantee at least one such index exists.
func (nd *Node) ChangeEdge(rng *rand.Rand, n, current int) int {
	for {
		r := rng.Intn(n)
		if r != nd.ID && r != current {
			return r
		}
	}
}

// BoundaryMutationUniform resamples each inner boundary with probability p
// uniformly from the open interval between its neighbors. The first and last
// boundaries stay fixed.
func (nd *Node) BoundaryMutationUniform(rng *rand.Rand, p float64) {
	for i := 1; i < len(nd.Boundaries)-1; i++ {
		if rng.Float64() >= p {
			continue
		}
		lo, hi := nd.Boundaries[i-1], nd.Boundaries[i+1]
		nd.Boundaries[i] = lo + rng.Float64()*(hi-lo)
	}
}

// BoundaryMutationNormal resamples each inner boundary with probability p from
// N(mu, (sigma*mu)^2) where mu is the current boundary. Draws outside the open
// interval between the neighbors are rejected and the boundary kept. The
// multiplicative sigma*mu scaling couples mutation strength to boundary
// magnitude; around zero-valued boundaries the effective sigma collapses.
func (nd *Node) BoundaryMutationNormal(rng *rand.Rand, p, sigma float64) {
	for i := 1; i < len(nd.Boundaries)-1; i++ {
		if rng.Float64() >= p {
			continue
		}
		mu := nd.Boundaries[i]
		draw := rng.NormFloat64()*sigma*mu + mu
		if draw > nd.Boundaries[i-1] && draw < nd.Boundaries[i+1] {
			nd.Boundaries[i] = draw
		}
	}
}

// BoundaryMutationFractal perturbs the inner production-rule entries with
// uniform-between-neighbors sampling and, if anything changed, regenerates the
// boundaries from the new rule over the node's feature range.
func (nd *Node) BoundaryMutationFractal(rng *rand.Rand, p, minF, maxF float64) error {
	if len(nd.ProductionRule) < 3 {
		return fmt.Errorf("node %d: production rule too short for mutation", nd.ID)
	}
	changed := false
	for i := 1; i < len(nd.ProductionRule)-1; i++ {
		if rng.Float64() >= p {
			continue
		}
		lo, hi := nd.ProductionRule[i-1], nd.ProductionRule[i+1]
		nd.ProductionRule[i] = lo + rng.Float64()*(hi-lo)
		changed = true
	}
	if !changed {
		return nil
	}
	lengths := FractalLengths(nd.D, SortAndDistance(nd.ProductionRule))
	return nd.SetBoundaries(minF, maxF, lengths)
}
