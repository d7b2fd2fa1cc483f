package query

import (
	"strings"

	"github.com/dealscope/dealscope/internal/utils"
)

const maxSearchTerms = 8

// Flags carries risk/routing hints derived from a query.
type Flags struct {
	HighValueItem    bool `json:"high_value_item"`
	CommonScamTarget bool `json:"common_scam_target"`
	LikelyOnForums   bool `json:"likely_on_forums"`
	ResellerFriendly bool `json:"reseller_friendly"`
}

// Enhanced is the expanded form of a raw query: term variants plus category,
// forum and risk hints. Built once per search, either by the enhancement
// service or by the offline expander, and immutable afterwards.
type Enhanced struct {
	Original    string   `json:"original"`
	SearchTerms []string `json:"search_terms"`
	Categories  []string `json:"categories,omitempty"`
	Forums      []string `json:"forums,omitempty"`
	Flags       Flags    `json:"flags"`
}

// Keyword groups that trigger domain-specific term variants.
var (
	electronicsKeywords = []string{
		"phone", "iphone", "samsung", "pixel", "laptop", "macbook", "ipad",
		"tablet", "camera", "lens", "console", "playstation", "ps4", "ps5",
		"xbox", "nintendo", "switch", "gpu", "rtx", "monitor", "headphones",
		"airpods", "drone",
	}
	instrumentKeywords = []string{
		"guitar", "bass", "pedal", "amp", "amplifier", "synth", "synthesizer",
		"keyboard", "piano", "drum", "violin", "saxophone", "trumpet",
		"microphone", "turntable",
	}
	vehicleKeywords = []string{
		"car", "van", "motorbike", "motorcycle", "scooter", "bike", "bicycle",
		"caravan", "camper",
	}

	highValueKeywords = []string{
		"rolex", "omega", "cartier", "leica", "hasselblad", "fender", "gibson",
		"rickenbacker", "gretsch", "moog", "strymon", "neve", "macbook pro",
		"imac", "rtx", "leather", "vintage", "limited edition",
	}
	scamTargetKeywords = []string{
		"iphone", "macbook", "airpods", "ps5", "xbox", "gpu", "rtx", "rolex",
		"designer", "ticket", "console", "drone",
	}
	forumKeywords = []string{
		"pedal", "synth", "amp", "guitar", "bass", "modular", "eurorack",
		"camera", "lens", "hifi", "turntable", "vinyl", "keyboard",
		"mechanical", "watch", "fountain pen",
	}
)

// Expand deterministically derives an Enhanced query from a raw term, with
// no I/O. It is the offline stand-in for the enhancement service and must
// produce identical output for identical input.
func Expand(term string) Enhanced {
	term = strings.TrimSpace(term)
	lower := strings.ToLower(term)

	terms := utils.DedupeStrings([]string{
		term,
		"used " + term,
		term + " second hand",
		term + " pre-owned",
		term + " secondhand",
	})
	if len(terms) > 6 {
		terms = terms[:6]
	}

	var categories []string
	if containsAny(lower, electronicsKeywords) {
		terms = append(terms, term+" unlocked", term+" refurbished")
		categories = append(categories, "electronics")
	}
	if containsAny(lower, instrumentKeywords) {
		terms = append(terms, term+" mint condition")
		categories = append(categories, "musical instruments")
	}
	if containsAny(lower, vehicleKeywords) {
		terms = append(terms, term+" low mileage")
		categories = append(categories, "vehicles")
	}

	terms = utils.DedupeStrings(terms)
	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}

	flags := Flags{
		HighValueItem:    containsAny(lower, highValueKeywords),
		CommonScamTarget: containsAny(lower, scamTargetKeywords),
		LikelyOnForums:   containsAny(lower, forumKeywords),
		ResellerFriendly: true,
	}

	var forums []string
	if flags.LikelyOnForums {
		forums = []string{"gearspace", "thegearpage", "reddit"}
	}

	return Enhanced{
		Original:    term,
		SearchTerms: terms,
		Categories:  categories,
		Forums:      forums,
		Flags:       flags,
	}
}

// Merge combines an enhancement-service result that carried zero usable
// terms with the offline expansion: term sets are unioned, and the
// service's categories, forums and flags win whenever non-empty. The
// service side must never be silently discarded just because its term list
// came back empty.
func Merge(service, fallback Enhanced) Enhanced {
	out := fallback

	out.SearchTerms = utils.DedupeStrings(append(append([]string{}, service.SearchTerms...), fallback.SearchTerms...))
	if len(out.SearchTerms) > maxSearchTerms {
		out.SearchTerms = out.SearchTerms[:maxSearchTerms]
	}

	if len(service.Categories) > 0 {
		out.Categories = service.Categories
	}
	if len(service.Forums) > 0 {
		out.Forums = service.Forums
	}
	if service.Flags != (Flags{}) {
		out.Flags = service.Flags
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
