package genotype

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestNetworkSnapshotRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(83))
	net, err := NewNetwork(rng, 3, 2, 3, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := net.Inner[i].SetBoundaries(-1, 1, nil); err != nil {
			t.Fatal(err)
		}
	}
	net.TraversePath([][]float64{{0.2, -0.4}, {0.9, 0.1}}, 10)
	net.Fitness = 0.5

	rec := net.Record("net-0")
	restored, err := NetworkFromRecord(rand.New(rand.NewSource(83)), rec)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(restored.Record("net-0"), rec) {
		t.Fatal("snapshot round trip altered the record")
	}
	if restored.Fitness != net.Fitness {
		t.Fatalf("fitness %v != %v", restored.Fitness, net.Fitness)
	}
	if !reflect.DeepEqual(restored.Decisions, net.Decisions) {
		t.Fatal("decisions differ after restore")
	}

	// The restored individual traverses identically.
	X := [][]float64{{0.3, 0.3}, {-0.8, 0.9}, {0.5, -0.5}}
	net.TraversePath(X, 10)
	restored.TraversePath(X, 10)
	if !reflect.DeepEqual(net.Decisions, restored.Decisions) {
		t.Fatal("restored network decides differently")
	}
}

func TestNetworkFromRecordRejectsMisplacedIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(89))
	net, err := NewNetwork(rng, 0, 0, 3, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	rec := net.Record("net-0")
	rec.Inner[0].ID = 2
	if _, err := NetworkFromRecord(rng, rec); err == nil {
		t.Fatal("expected error for out-of-place snapshot id")
	}
}

func TestNodeRecordKinds(t *testing.T) {
	for _, kind := range []Kind{Start, Judgment, Processing} {
		rec := NodeRecord(NewNode(1, kind, 0))
		node, err := NodeFromRecord(rec)
		if err != nil {
			t.Fatal(err)
		}
		if node.Kind != kind {
			t.Fatalf("kind %v round-tripped to %v", kind, node.Kind)
		}
	}
}
