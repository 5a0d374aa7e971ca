package aon

import (
	"context"
	"testing"
)

func TestShortestPathTree_SimpleChain(t *testing.T) {
	g := NewGraph()
	l01 := g.AddLink(1, 2, 1)
	l12 := g.AddLink(2, 3, 2)
	g.AddLink(1, 3, 10) // longer direct link, should lose to 1->2->3

	tree := shortestPathTree(context.Background(), g, 1)

	if tree.parent[3] != 2 {
		t.Fatalf("parent[3] = %d, want 2 (via shorter path)", tree.parent[3])
	}
	if tree.linkTo[3] != l12 {
		t.Fatalf("linkTo[3] = %d, want %d", tree.linkTo[3], l12)
	}
	if tree.linkTo[2] != l01 {
		t.Fatalf("linkTo[2] = %d, want %d", tree.linkTo[2], l01)
	}
}

func TestShortestPathTree_DeterministicTieBreak(t *testing.T) {
	g := NewGraph()
	// Two equal-cost paths from 1 to 4; tie-break must be stable across runs.
	g.AddLink(1, 2, 1)
	g.AddLink(2, 4, 1)
	g.AddLink(1, 3, 1)
	g.AddLink(3, 4, 1)

	first := shortestPathTree(context.Background(), g, 1).parent[4]
	for i := 0; i < 5; i++ {
		got := shortestPathTree(context.Background(), g, 1).parent[4]
		if got != first {
			t.Fatalf("run %d: parent[4] = %d, want stable %d", i, got, first)
		}
	}
}

func TestShortestPathTree_CancelContext(t *testing.T) {
	g := NewGraph()
	for i := 0; i < 1000; i++ {
		g.AddLink(Node(i), Node(i+1), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree := shortestPathTree(ctx, g, 0)
	if !tree.canceled {
		t.Error("expected canceled tree when context is already done")
	}
}
