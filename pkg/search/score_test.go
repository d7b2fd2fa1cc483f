package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/query"
)

var scoreNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestScoreBounds(t *testing.T) {
	eq := query.Expand("strymon ob1")
	items := []listing.Normalized{
		{Title: "Strymon OB.1 Compressor Pedal strymon ob1", PriceAmount: price(280), Link: "https://ebay.co.uk/1", Source: "ebay", Image: "https://i.example/1.jpg", Description: "strymon ob1 used strymon ob1"},
		{Title: "Old lamp", PriceAmount: price(5), Link: "https://gumtree.com/2", Source: "gumtree"},
		{Title: "xyz", Link: "https://unknown.example/3", Source: "somewhere-new"},
	}

	for _, s := range scoreAt(items, "strymon ob1", eq, scoreNow) {
		if s.Score < 0 || s.Score > 1 {
			t.Errorf("score %v out of [0,1] for %q", s.Score, s.Title)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	eq := query.Expand("strymon ob1")
	items := []listing.Normalized{
		{Title: "Strymon OB.1 Pedal", PriceAmount: price(280), Link: "https://ebay.co.uk/1", Source: "ebay"},
		{Title: "Strymon compressor", PriceAmount: price(250), Link: "https://gumtree.com/2", Source: "gumtree"},
	}

	a := scoreAt(items, "strymon ob1", eq, scoreNow)
	b := scoreAt(items, "strymon ob1", eq, scoreNow)
	for i := range a {
		if a[i].Score != b[i].Score {
			t.Fatalf("nondeterministic score at %d: %v vs %v", i, a[i].Score, b[i].Score)
		}
	}
}

func TestVerbatimTitleMatchScoresHigher(t *testing.T) {
	eq := query.Enhanced{Original: "strymon ob1"}
	items := []listing.Normalized{
		{Title: "Compressor pedal by Strymon, boxed", PriceAmount: price(280), Link: "https://ebay.co.uk/1", Source: "ebay"},
		{Title: "strymon ob1 compressor pedal, boxed", PriceAmount: price(280), Link: "https://ebay.co.uk/2", Source: "ebay"},
	}

	scored := scoreAt(items, "strymon ob1", eq, scoreNow)

	var verbatim, partial float64
	for _, s := range scored {
		if s.Link == "https://ebay.co.uk/2" {
			verbatim = s.Score
		} else {
			partial = s.Score
		}
	}
	if verbatim <= partial {
		t.Errorf("verbatim title %v should beat partial match %v", verbatim, partial)
	}
}

func TestPriceOutlierRanksLower(t *testing.T) {
	// Three candidates at £100, £150 and £5000: the outlier's
	// price-closeness contribution collapses to zero.
	outlier := listing.Normalized{Title: "Fender Jazz Bass", PriceAmount: price(5000), Link: "https://ebay.co.uk/3", Source: "ebay"}
	items := []listing.Normalized{
		{Title: "Fender Jazz Bass", PriceAmount: price(100), Link: "https://ebay.co.uk/1", Source: "ebay"},
		{Title: "Fender Jazz Bass", PriceAmount: price(150), Link: "https://ebay.co.uk/2", Source: "ebay"},
		outlier,
	}

	if got := priceComponent(outlier, 150, true); got != 0 {
		t.Errorf("outlier price component = %v, want 0", got)
	}

	scored := scoreAt(items, "fender jazz bass", query.Enhanced{}, scoreNow)
	if scored[len(scored)-1].Link != outlier.Link {
		t.Errorf("expected the outlier ranked last, got %+v", scored)
	}
}

func TestNeutralComponents(t *testing.T) {
	noPrice := listing.Normalized{Title: "Fender Jazz Bass", Link: "https://ebay.co.uk/1"}
	if got := priceComponent(noPrice, 150, true); got != neutralComponent {
		t.Errorf("unpriced component = %v, want %v", got, neutralComponent)
	}
	if got := priceComponent(noPrice, 0, false); got != neutralComponent {
		t.Errorf("no-median component = %v, want %v", got, neutralComponent)
	}
	if got := recencyComponent("", scoreNow); got != neutralComponent {
		t.Errorf("missing timestamp = %v, want %v", got, neutralComponent)
	}
	if got := recencyComponent("sometime last week", scoreNow); got != neutralComponent {
		t.Errorf("unparsable timestamp = %v, want %v", got, neutralComponent)
	}
}

func TestRecencyTiers(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{12 * time.Hour, 1.0},
		{3 * 24 * time.Hour, 0.8},
		{20 * 24 * time.Hour, 0.6},
		{60 * 24 * time.Hour, 0.4},
		{365 * 24 * time.Hour, 0.2},
	}

	for _, tc := range tests {
		postedAt := scoreNow.Add(-tc.age).Format(time.RFC3339)
		if got := recencyComponent(postedAt, scoreNow); got != tc.want {
			t.Errorf("age %v: got %v, want %v", tc.age, got, tc.want)
		}
	}
}

func TestSourceWeights(t *testing.T) {
	if w := sourceWeight("ebay"); w != 0.9 {
		t.Errorf("ebay weight = %v", w)
	}
	if w := sourceWeight("craigslist"); w != defaultSourceWeight {
		t.Errorf("unknown source weight = %v, want %v", w, defaultSourceWeight)
	}
}

func TestScoreTruncatesAndKeepsStableOrder(t *testing.T) {
	var items []listing.Normalized
	for i := 0; i < 60; i++ {
		items = append(items, listing.Normalized{
			Title:       "Fender Jazz Bass number " + fmt.Sprint(i),
			PriceAmount: price(600),
			Link:        fmt.Sprintf("https://ebay.co.uk/%d", i),
			Source:      "ebay",
		})
	}

	scored := scoreAt(items, "fender jazz bass", query.Enhanced{}, scoreNow)
	if len(scored) != maxResults {
		t.Fatalf("got %d results, want %d", len(scored), maxResults)
	}
	// Identical scores keep their fan-out order.
	for i, s := range scored {
		want := fmt.Sprintf("https://ebay.co.uk/%d", i)
		if s.Link != want {
			t.Fatalf("tie order broken at %d: got %s", i, s.Link)
		}
	}
}

func TestPriceMedian(t *testing.T) {
	items := []listing.Normalized{
		{Title: "a", PriceAmount: price(100)},
		{Title: "b", PriceAmount: price(150)},
		{Title: "c", PriceAmount: price(5000)},
		{Title: "d"},
	}
	m, ok := priceMedian(items)
	if !ok || m != 150 {
		t.Errorf("median = %v (%v), want 150", m, ok)
	}

	if _, ok := priceMedian([]listing.Normalized{{Title: "d"}}); ok {
		t.Error("expected no median without parsed prices")
	}
}
