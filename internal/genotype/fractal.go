package genotype

import (
	"fmt"
	"math/rand"
	"sort"
)

// RandomKD enumerates all pairs (k, d) with k >= 2 and k^d <= n and picks one
// uniformly. For n > 3 the depth must be at least 2 so the resulting edge
// layout is a true multi-level subdivision; for n <= 3 a single level is the
// only option.
func RandomKD(rng *rand.Rand, n int) (int, int, error) {
	if n < 2 {
		return 0, 0, fmt.Errorf("fractal structure needs at least 2 successors, got %d", n)
	}
	minDepth := 2
	if n <= 3 {
		minDepth = 1
	}

	type pair struct{ k, d int }
	var candidates []pair
	for k := 2; k <= n; k++ {
		for d := minDepth; intPow(k, d) <= n; d++ {
			candidates = append(candidates, pair{k, d})
		}
	}
	if len(candidates) == 0 {
		return 0, 0, fmt.Errorf("no (k, d) combination with k^d <= %d", n)
	}
	chosen := candidates[rng.Intn(len(candidates))]
	return chosen.k, chosen.d, nil
}

// RandomCuts returns [0, u_1, ..., u_m, 1] with each u_i drawn uniformly from
// (0, 1). The cut positions are not sorted; SortAndDistance turns them into
// subdivision ratios.
func RandomCuts(rng *rand.Rand, m int) []float64 {
	cuts := make([]float64, 0, m+2)
	cuts = append(cuts, 0)
	for i := 0; i < m; i++ {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		cuts = append(cuts, u)
	}
	cuts = append(cuts, 1)
	return cuts
}

// SortAndDistance sorts a copy of the cut positions ascending and returns the
// consecutive differences. With 0 and 1 as endpoints the result sums to 1.
func SortAndDistance(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	distances := make([]float64, len(sorted)-1)
	for i := 0; i < len(sorted)-1; i++ {
		distances[i] = sorted[i+1] - sorted[i]
	}
	return distances
}

// FractalLengths applies the production rule to the unit interval depth times,
// L-system style: every current length L is replaced by len(parameter) new
// lengths L*parameter[j]. The result has len(parameter)^depth entries and sums
// to 1 when the parameters sum to 1.
func FractalLengths(depth int, parameter []float64) []float64 {
	lengths := []float64{1}
	for i := 0; i < depth; i++ {
		next := make([]float64, 0, len(lengths)*len(parameter))
		for _, length := range lengths {
			for _, ratio := range parameter {
				next = append(next, length*ratio)
			}
		}
		lengths = next
	}
	return lengths
}

func intPow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
