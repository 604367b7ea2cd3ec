package genotype

import (
	"fmt"
	"math"
	"math/rand"
)

// InvalidDecision is the sentinel pushed for a sample whose judgment loop
// exceeded the depth cap. Callers computing custom fitness must filter it.
const InvalidDecision = math.MinInt

// LowestFitness marks a network that has not been evaluated yet.
const LowestFitness = -math.MaxFloat64

// Network is one GNP individual: a start node plus an ordered inner list of
// judgment and processing nodes connected by index edges.
type Network struct {
	rng *rand.Rand

	JudgmentCount   int
	JudgmentFuncs   int
	ProcessingCount int
	ProcessingFuncs int
	FractalJudgment bool

	Start Node
	Inner []Node

	Fitness   float64
	Invalid   bool
	Decisions []int

	current      int
	consecutiveP int
}

// NewNetwork builds a random individual with jn judgment nodes at positions
// [0, jn) and pn processing nodes at [jn, jn+pn). In fractal mode judgment
// production rules and boundaries stay unset until the population bootstrap.
func NewNetwork(rng *rand.Rand, jn, jnf, pn, pnf int, fractalJudgment bool) (*Network, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if pn < 1 || pnf < 1 {
		return nil, fmt.Errorf("processing nodes and functions must be >= 1, got %d/%d", pn, pnf)
	}
	if jn < 0 || (jn > 0 && jnf < 1) {
		return nil, fmt.Errorf("judgment functions must be >= 1 when judgment nodes exist")
	}
	n := jn + pn
	if n < 2 {
		return nil, fmt.Errorf("network needs at least 2 inner nodes, got %d", n)
	}
	if jn > 0 && n < 3 {
		return nil, fmt.Errorf("judgment nodes need at least 3 inner nodes, got %d", n)
	}

	net := &Network{
		rng:             rng,
		JudgmentCount:   jn,
		JudgmentFuncs:   jnf,
		ProcessingCount: pn,
		ProcessingFuncs: pnf,
		FractalJudgment: fractalJudgment,
		Fitness:         LowestFitness,
		Inner:           make([]Node, 0, n),
	}

	net.Start = NewNode(StartID, Start, 0)
	if err := net.Start.SetEdges(rng, n, 0); err != nil {
		return nil, err
	}

	for i := 0; i < jn; i++ {
		node := NewNode(i, Judgment, rng.Intn(jnf))
		if fractalJudgment {
			k, d, err := RandomKD(rng, n-1)
			if err != nil {
				return nil, err
			}
			node.K, node.D = k, d
			if err := node.SetEdges(rng, n, intPow(k, d)); err != nil {
				return nil, err
			}
		} else {
			if err := node.SetEdges(rng, n, 0); err != nil {
				return nil, err
			}
		}
		net.Inner = append(net.Inner, node)
	}
	for i := jn; i < n; i++ {
		node := NewNode(i, Processing, rng.Intn(pnf))
		if err := node.SetEdges(rng, n, 0); err != nil {
			return nil, err
		}
		net.Inner = append(net.Inner, node)
	}
	return net, nil
}

// Clone deep-copies the network. The random source is shared, not copied.
func (n *Network) Clone() *Network {
	dup := *n
	dup.Inner = make([]Node, len(n.Inner))
	for i, node := range n.Inner {
		dup.Inner[i] = cloneNode(node)
	}
	dup.Start = cloneNode(n.Start)
	dup.Decisions = append([]int(nil), n.Decisions...)
	return &dup
}

func cloneNode(node Node) Node {
	node.Edges = append([]int(nil), node.Edges...)
	node.Boundaries = append([]float64(nil), node.Boundaries...)
	node.ProductionRule = append([]float64(nil), node.ProductionRule...)
	return node
}

// BeginTraversal resets the per-traversal state: decisions, used flags and
// the cursor, which starts at the start node's single successor. TraversePath
// and the fitness harnesses call this once per batch or episode.
func (n *Network) BeginTraversal() {
	n.Decisions = n.Decisions[:0]
	for i := range n.Inner {
		n.Inner[i].Used = false
	}
	n.current = n.Start.Edges[0]
	n.Inner[n.current].Used = true
	n.consecutiveP = 0
	n.Invalid = false
}

// TraversePath walks the graph over every sample row and records one decision
// per row. The cursor persists across rows; an individual invalidated by the
// depth cap keeps yielding the sentinel for the rest of the batch.
func (n *Network) TraversePath(X [][]float64, dMax int) {
	n.BeginTraversal()
	for _, x := range X {
		if n.Invalid {
			n.Decisions = append(n.Decisions, InvalidDecision)
			continue
		}
		n.Decisions = append(n.Decisions, n.DecisionAndNext(x, dMax))
	}
}

// DecisionAndNext computes the decision for one sample and advances the
// cursor. A processing cursor emits immediately; a judgment cursor follows
// judged edges until it reaches a processing node, bounded by dMax hops.
func (n *Network) DecisionAndNext(x []float64, dMax int) int {
	node := &n.Inner[n.current]
	if node.Kind == Processing {
		decision := node.Function
		n.advance(node.Edges[0])
		return decision
	}

	n.consecutiveP = 0
	depth := 0
	for {
		judging := &n.Inner[n.current]
		v := x[judging.Function]
		next := judging.Edges[judging.Judge(v)]
		n.current = next
		n.Inner[next].Used = true
		depth++
		if depth >= dMax {
			n.Invalid = true
			return InvalidDecision
		}
		if n.Inner[next].Kind == Processing {
			break
		}
	}

	processing := &n.Inner[n.current]
	decision := processing.Function
	n.advance(processing.Edges[0])
	return decision
}

func (n *Network) advance(next int) {
	n.current = next
	n.Inner[next].Used = true
	n.consecutiveP++
}

// ConsecutiveProcessing reports how many processing decisions in a row the
// cursor has emitted since the last judgment.
func (n *Network) ConsecutiveProcessing() int {
	return n.consecutiveP
}

// UsedCount counts the inner nodes visited by the most recent traversal.
func (n *Network) UsedCount() int {
	count := 0
	for i := range n.Inner {
		if n.Inner[i].Used {
			count++
		}
	}
	return count
}

// ChangeFalseEdges redirects every inner edge that points outside the current
// inner range to a valid non-self target. Crossover calls this on the smaller
// parent after a positional swap.
func (n *Network) ChangeFalseEdges() {
	size := len(n.Inner)
	for i := range n.Inner {
		for e, target := range n.Inner[i].Edges {
			if target >= size || target < 0 {
				n.Inner[i].Edges[e] = n.Inner[i].ChangeEdge(n.rng, size, target)
			}
		}
	}
}
