package aon

import (
	"context"
	"testing"

	"equilibrium/equilibrium"
)

func TestLoader_SingleOriginSinglePath(t *testing.T) {
	g := NewGraph()
	link := g.AddLink(1, 2, 10)

	demand := &Demand{Pairs: []ODPair{{Origin: 1, Dest: 2, Stratum: 0, Volume: 100}}}
	out := equilibrium.NewLinkLoads(g.NumLinks(), 1)

	loader := NewLoader(1)
	if err := loader.Load(context.Background(), demand, g, out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := out.Values[link][0]; got != 100 {
		t.Errorf("link load = %v, want 100", got)
	}
}

func TestLoader_SplitsAcrossMultipleOrigins(t *testing.T) {
	g := NewGraph()
	l12 := g.AddLink(1, 3, 1)
	l23 := g.AddLink(2, 3, 1)

	demand := &Demand{Pairs: []ODPair{
		{Origin: 1, Dest: 3, Stratum: 0, Volume: 50},
		{Origin: 2, Dest: 3, Stratum: 0, Volume: 30},
	}}
	out := equilibrium.NewLinkLoads(g.NumLinks(), 1)

	loader := NewLoader(4)
	if err := loader.Load(context.Background(), demand, g, out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if out.Values[l12][0] != 50 {
		t.Errorf("link 1->3 load = %v, want 50", out.Values[l12][0])
	}
	if out.Values[l23][0] != 30 {
		t.Errorf("link 2->3 load = %v, want 30", out.Values[l23][0])
	}
}

func TestLoader_AccumulatesMultiHopPath(t *testing.T) {
	g := NewGraph()
	l1 := g.AddLink(1, 2, 1)
	l2 := g.AddLink(2, 3, 1)

	demand := &Demand{Pairs: []ODPair{{Origin: 1, Dest: 3, Stratum: 0, Volume: 40}}}
	out := equilibrium.NewLinkLoads(g.NumLinks(), 1)

	loader := NewLoader(1)
	if err := loader.Load(context.Background(), demand, g, out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if out.Values[l1][0] != 40 || out.Values[l2][0] != 40 {
		t.Errorf("expected 40 on both hops, got %v and %v", out.Values[l1][0], out.Values[l2][0])
	}
}

func TestLoader_RejectsWrongGraphType(t *testing.T) {
	loader := NewLoader(1)
	demand := &Demand{}
	out := equilibrium.NewLinkLoads(1, 1)

	err := loader.Load(context.Background(), demand, fakeGraph{}, out)
	if err == nil {
		t.Fatal("expected error for non-*aon.Graph handle")
	}
}

type fakeGraph struct{}

func (fakeGraph) SetCost(link int, cost float64) {}
