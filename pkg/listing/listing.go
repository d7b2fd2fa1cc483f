package listing

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxRawPriceLen    = 20

	// DefaultCurrencySymbol is prefixed onto bare numeric prices.
	DefaultCurrencySymbol = "£"
)

// Raw is a listing exactly as a source reported it. Fields may be missing
// or messy; Raw records are discarded after normalization.
type Raw struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Image       string `json:"image,omitempty"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	PostedAt    string `json:"posted_at,omitempty"`
}

// Normalized is a listing with cleaned fields and a parsed price magnitude.
// Title and Link are guaranteed non-empty; PriceAmount is nil when the
// price text could not be parsed.
type Normalized struct {
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	PriceAmount *float64 `json:"price_amount,omitempty"`
	Link        string   `json:"link"`
	Image       string   `json:"image,omitempty"`
	Source      string   `json:"source"`
	Description string   `json:"description,omitempty"`
	PostedAt    string   `json:"posted_at,omitempty"`
}

// Scored is a Normalized listing plus its relevance score in [0,1].
type Scored struct {
	Normalized
	Score float64 `json:"score"`
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	titleCharsRe = regexp.MustCompile(`[^a-zA-Z0-9 .,:;!?'"()\[\]&/+%£$€¥₹-]`)

	symbolPrefixedRe = regexp.MustCompile(`[£$€¥₹]\s?\d[\d,]*(?:\.\d+)?`)
	symbolSuffixedRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?\s?[£$€¥₹]`)
	bareNumberRe     = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// Normalize canonicalizes a raw listing. It returns nil when the record is
// unusable (missing title or link); everything else degrades gracefully.
func Normalize(raw Raw) *Normalized {
	title := CleanTitle(raw.Title)
	link := strings.TrimSpace(raw.Link)
	if title == "" || link == "" {
		return nil
	}

	price, amount := CleanPrice(raw.Price)

	return &Normalized{
		Title:       title,
		Price:       price,
		PriceAmount: amount,
		Link:        link,
		Image:       strings.TrimSpace(raw.Image),
		Source:      strings.TrimSpace(raw.Source),
		Description: CleanDescription(raw.Description),
		PostedAt:    strings.TrimSpace(raw.PostedAt),
	}
}

// CleanTitle collapses whitespace, strips characters outside a conservative
// allow-set and truncates to 200 characters.
func CleanTitle(s string) string {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = titleCharsRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) > maxTitleLen {
		s = strings.TrimSpace(s[:maxTitleLen])
	}
	return s
}

// CleanDescription strips markup leftovers, collapses whitespace and
// truncates. Empty in, empty out.
func CleanDescription(s string) string {
	s = StripTags(s)
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	if len(s) > maxDescriptionLen {
		s = strings.TrimSpace(s[:maxDescriptionLen])
	}
	return s
}

// CleanPrice extracts a display price string and its numeric magnitude from
// free-text price data. Resolution order:
//  1. a currency-symbol-prefixed or -suffixed numeric token
//  2. a bare numeric token, prefixed with the default currency symbol
//  3. pass the raw text through truncated, with no parsed amount
func CleanPrice(s string) (string, *float64) {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	if s == "" {
		return "", nil
	}

	if m := symbolPrefixedRe.FindString(s); m != "" {
		return strings.ReplaceAll(m, " ", ""), parseAmount(m)
	}
	if m := symbolSuffixedRe.FindString(s); m != "" {
		return strings.ReplaceAll(m, " ", ""), parseAmount(m)
	}
	if m := bareNumberRe.FindString(s); m != "" {
		return DefaultCurrencySymbol + m, parseAmount(m)
	}

	if len(s) > maxRawPriceLen {
		s = s[:maxRawPriceLen]
	}
	return s, nil
}

func parseAmount(s string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' {
			return r
		}
		return -1
	}, s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
