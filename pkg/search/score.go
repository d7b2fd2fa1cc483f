package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/query"
)

// maxResults caps the ranked output.
const maxResults = 40

// Relevance weights. The four component weights are design constants; the
// match component dominates.
const (
	weightMatch   = 0.50
	weightPrice   = 0.15
	weightRecency = 0.10
	weightTrust   = 0.05

	matchTitleToken    = 0.30
	matchDescToken     = 0.10
	matchTitleEnhanced = 0.20
	matchDescEnhanced  = 0.05
	matchCategory      = 0.15
	matchVerbatim      = 0.25

	qualityShortTitle = -0.05
	qualityHasImage   = 0.03

	neutralComponent = 0.5
)

// sourceWeights maps source identifiers to trust coefficients in (0,1].
var sourceWeights = map[string]float64{
	"ebay":    0.9,
	"vinted":  0.8,
	"gumtree": 0.75,
}

const defaultSourceWeight = 0.6

// Score ranks listings by multi-factor relevance: term-match strength,
// price proximity to the candidate median, recency and source trust. The
// result is sorted descending, ties keeping their incoming order, and
// truncated to maxResults.
func Score(items []listing.Normalized, originalTerm string, eq query.Enhanced) []listing.Scored {
	return scoreAt(items, originalTerm, eq, time.Now().UTC())
}

func scoreAt(items []listing.Normalized, originalTerm string, eq query.Enhanced, now time.Time) []listing.Scored {
	median, hasMedian := priceMedian(items)

	scored := make([]listing.Scored, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}

		score := weightMatch*matchComponent(item, originalTerm, eq) +
			weightPrice*priceComponent(item, median, hasMedian) +
			weightRecency*recencyComponent(item.PostedAt, now) +
			weightTrust*sourceWeight(item.Source)

		scored = append(scored, listing.Scored{
			Normalized: item,
			Score:      round2(clamp01(score)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func matchComponent(item listing.Normalized, originalTerm string, eq query.Enhanced) float64 {
	title := strings.ToLower(item.Title)
	desc := strings.ToLower(item.Description)

	var acc float64
	for _, token := range utils.Tokenize(originalTerm) {
		if strings.Contains(title, token) {
			acc += matchTitleToken
		}
		if desc != "" && strings.Contains(desc, token) {
			acc += matchDescToken
		}
	}

	original := strings.ToLower(strings.TrimSpace(originalTerm))
	for _, term := range eq.SearchTerms {
		term = strings.ToLower(term)
		if term == original {
			continue
		}
		if strings.Contains(title, term) {
			acc += matchTitleEnhanced
		}
		if desc != "" && strings.Contains(desc, term) {
			acc += matchDescEnhanced
		}
	}

	for _, cat := range eq.Categories {
		cat = strings.ToLower(cat)
		if strings.Contains(title, cat) || (desc != "" && strings.Contains(desc, cat)) {
			acc += matchCategory
		}
	}

	if original != "" && strings.Contains(title, original) {
		acc += matchVerbatim
	}

	if len(item.Title) < 20 {
		acc += qualityShortTitle
	}
	if item.Image != "" {
		acc += qualityHasImage
	}

	return clamp01(acc)
}

func priceComponent(item listing.Normalized, median float64, hasMedian bool) float64 {
	if item.PriceAmount == nil || !hasMedian || median == 0 {
		return neutralComponent
	}
	distance := math.Abs(*item.PriceAmount-median) / median
	return math.Max(0, 1-math.Min(1, distance))
}

func recencyComponent(postedAt string, now time.Time) float64 {
	t, ok := parsePostedAt(postedAt)
	if !ok {
		return neutralComponent
	}

	age := now.Sub(t)
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.8
	case age <= 30*24*time.Hour:
		return 0.6
	case age <= 90*24*time.Hour:
		return 0.4
	default:
		return 0.2
	}
}

func parsePostedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func sourceWeight(source string) float64 {
	if w, ok := sourceWeights[strings.ToLower(source)]; ok {
		return w
	}
	return defaultSourceWeight
}

// priceMedian computes the median over listings with a parsed price.
func priceMedian(items []listing.Normalized) (float64, bool) {
	var prices []float64
	for _, item := range items {
		if item.PriceAmount != nil {
			prices = append(prices, *item.PriceAmount)
		}
	}
	if len(prices) == 0 {
		return 0, false
	}

	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		return (prices[mid-1] + prices[mid]) / 2, true
	}
	return prices[mid], true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
