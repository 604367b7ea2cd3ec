package genotype

import (
	"fmt"
	"math/rand"

	"fracnet/internal/model"
)

func kindToModel(k Kind) model.NodeKind {
	switch k {
	case Start:
		return model.KindStart
	case Judgment:
		return model.KindJudgment
	default:
		return model.KindProcessing
	}
}

func kindFromModel(k model.NodeKind) (Kind, error) {
	switch k {
	case model.KindStart:
		return Start, nil
	case model.KindJudgment:
		return Judgment, nil
	case model.KindProcessing:
		return Processing, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", k)
	}
}

// NodeRecord snapshots every node field for serialization.
func NodeRecord(node Node) model.Node {
	return model.Node{
		ID:             node.ID,
		Kind:           kindToModel(node.Kind),
		Function:       node.Function,
		Edges:          append([]int(nil), node.Edges...),
		Boundaries:     append([]float64(nil), node.Boundaries...),
		ProductionRule: append([]float64(nil), node.ProductionRule...),
		K:              node.K,
		D:              node.D,
		Used:           node.Used,
	}
}

// NodeFromRecord rebuilds a node from its snapshot.
func NodeFromRecord(rec model.Node) (Node, error) {
	kind, err := kindFromModel(rec.Kind)
	if err != nil {
		return Node{}, err
	}
	return Node{
		ID:             rec.ID,
		Kind:           kind,
		Function:       rec.Function,
		Edges:          append([]int(nil), rec.Edges...),
		Boundaries:     append([]float64(nil), rec.Boundaries...),
		ProductionRule: append([]float64(nil), rec.ProductionRule...),
		K:              rec.K,
		D:              rec.D,
		Used:           rec.Used,
	}, nil
}

// Record snapshots the network under the given identity.
func (n *Network) Record(id string) model.Network {
	inner := make([]model.Node, len(n.Inner))
	for i, node := range n.Inner {
		inner[i] = NodeRecord(node)
	}
	return model.Network{
		VersionedRecord: model.CurrentVersion(),
		ID:              id,
		JudgmentCount:   n.JudgmentCount,
		JudgmentFuncs:   n.JudgmentFuncs,
		ProcessingCount: n.ProcessingCount,
		ProcessingFuncs: n.ProcessingFuncs,
		FractalJudgment: n.FractalJudgment,
		Start:           NodeRecord(n.Start),
		Inner:           inner,
		Fitness:         n.Fitness,
		Invalid:         n.Invalid,
		Decisions:       append([]int(nil), n.Decisions...),
	}
}

// NetworkFromRecord rebuilds an individual from its snapshot. The random
// source is supplied by the caller; with the seed that produced the original,
// restored behavior is bit-for-bit identical.
func NetworkFromRecord(rng *rand.Rand, rec model.Network) (*Network, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	start, err := NodeFromRecord(rec.Start)
	if err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}
	inner := make([]Node, len(rec.Inner))
	for i, nodeRec := range rec.Inner {
		node, err := NodeFromRecord(nodeRec)
		if err != nil {
			return nil, fmt.Errorf("inner node %d: %w", i, err)
		}
		if node.ID != i {
			return nil, fmt.Errorf("inner node %d: snapshot id %d out of place", i, node.ID)
		}
		inner[i] = node
	}
	net := &Network{
		rng:             rng,
		JudgmentCount:   rec.JudgmentCount,
		JudgmentFuncs:   rec.JudgmentFuncs,
		ProcessingCount: rec.ProcessingCount,
		ProcessingFuncs: rec.ProcessingFuncs,
		FractalJudgment: rec.FractalJudgment,
		Start:           start,
		Inner:           inner,
		Fitness:         rec.Fitness,
		Invalid:         rec.Invalid,
		Decisions:       append([]int(nil), rec.Decisions...),
	}
	return net, nil
}
