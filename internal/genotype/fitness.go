package genotype

import "fmt"

// AccuracyFitness scores the network on a supervised batch as the fraction of
// rows whose decision matches the target. A row that trips the depth cap
// invalidates the individual and pins the fitness to 0. A decision emitted
// after more than penalty consecutive processing hops counts as wrong, which
// keeps pressure on judgment-free loops.
func (n *Network) AccuracyFitness(X [][]float64, y []int, dMax, penalty int) error {
	if len(X) == 0 {
		return fmt.Errorf("empty batch")
	}
	if len(X) != len(y) {
		return fmt.Errorf("batch size mismatch: %d rows, %d targets", len(X), len(y))
	}

	correct := 0
	n.BeginTraversal()
	for i, x := range X {
		decision := n.DecisionAndNext(x, dMax)
		if n.Invalid {
			n.Decisions = append(n.Decisions, InvalidDecision)
			n.Fitness = 0
			return nil
		}
		n.Decisions = append(n.Decisions, decision)
		if n.consecutiveP > penalty {
			continue
		}
		if decision == y[i] {
			correct++
		}
	}
	n.Fitness = float64(correct) / float64(len(X))
	return nil
}
