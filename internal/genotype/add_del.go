package genotype

import "fmt"

// AddDelNodes flips a fair coin between growing and shrinking the network by
// exactly one node. Growth requires every inner node to have been used by the
// last traversal; shrinking removes the first unused node while at least two
// nodes are unused. At most one structural change happens per call.
func (n *Network) AddDelNodes(minF, maxF []float64) error {
	add := n.rng.Intn(2) == 0
	return n.addDelNodes(add, minF, maxF)
}

func (n *Network) addDelNodes(add bool, minF, maxF []float64) error {
	if len(minF) < n.JudgmentFuncs || len(maxF) < n.JudgmentFuncs {
		return fmt.Errorf("feature ranges cover %d/%d features, need %d", len(minF), len(maxF), n.JudgmentFuncs)
	}

	pnRatio := float64(n.ProcessingFuncs) / float64(n.ProcessingFuncs+n.JudgmentFuncs)
	usedCount := n.UsedCount()

	for idx := range n.Inner {
		if add && usedCount >= len(n.Inner) {
			if n.rng.Float64() < pnRatio {
				return n.appendProcessingNode()
			}
			return n.appendJudgmentNode(minF, maxF)
		}
		if !add && len(n.Inner)-usedCount > 1 && !n.Inner[idx].Used {
			n.deleteNodeAt(idx)
			return nil
		}
	}
	return nil
}

func (n *Network) appendProcessingNode() error {
	node := NewNode(len(n.Inner), Processing, n.rng.Intn(n.ProcessingFuncs))
	if err := node.SetEdges(n.rng, len(n.Inner), 0); err != nil {
		return err
	}
	n.Inner = append(n.Inner, node)
	n.ProcessingCount++
	return nil
}

func (n *Network) appendJudgmentNode(minF, maxF []float64) error {
	size := len(n.Inner)
	node := NewNode(size, Judgment, n.rng.Intn(n.JudgmentFuncs))
	if n.FractalJudgment {
		k, d, err := RandomKD(n.rng, size)
		if err != nil {
			return err
		}
		node.K, node.D = k, d
		if err := node.SetEdges(n.rng, size, intPow(k, d)); err != nil {
			return err
		}
		node.ProductionRule = RandomCuts(n.rng, k-1)
		lengths := FractalLengths(d, SortAndDistance(node.ProductionRule))
		if err := node.SetBoundaries(minF[node.Function], maxF[node.Function], lengths); err != nil {
			return err
		}
	} else {
		if err := node.SetEdges(n.rng, size, 0); err != nil {
			return err
		}
		if err := node.SetBoundaries(minF[node.Function], maxF[node.Function], nil); err != nil {
			return err
		}
	}
	n.Inner = append(n.Inner, node)
	n.JudgmentCount++
	return nil
}

// deleteNodeAt removes inner node idx: ids above shift down, edges at idx are
// rewired to a fresh valid target, edges above decrement, and the start edge
// decrements when needed (a start-pointed node is always used, so it is never
// the deleted one).
func (n *Network) deleteNodeAt(idx int) {
	kind := n.Inner[idx].Kind
	for i := range n.Inner {
		if n.Inner[i].ID > idx {
			n.Inner[i].ID--
		}
	}

	newSize := len(n.Inner) - 1
	for i := range n.Inner {
		if i == idx {
			continue
		}
		node := &n.Inner[i]
		for e, target := range node.Edges {
			switch {
			case target == idx:
				node.Edges[e] = n.rewireDeletedEdge(node.ID, idx, newSize)
			case target > idx:
				node.Edges[e] = target - 1
			}
		}
	}
	if n.Start.Edges[0] > idx {
		n.Start.Edges[0]--
	}

	if kind == Judgment {
		n.JudgmentCount--
	} else {
		n.ProcessingCount--
	}
	n.Inner = append(n.Inner[:idx], n.Inner[idx+1:]...)
}

// rewireDeletedEdge picks a replacement target in [0, newSize) avoiding the
// owner and the vacated slot. In a network too small to honor both exclusions
// only the self-loop one is kept.
func (n *Network) rewireDeletedEdge(ownerID, idx, newSize int) int {
	available := 0
	for j := 0; j < newSize; j++ {
		if j != ownerID && j != idx {
			available++
		}
	}
	for {
		r := n.rng.Intn(newSize)
		if r == ownerID {
			continue
		}
		if r == idx && available > 0 {
			continue
		}
		return r
	}
}
