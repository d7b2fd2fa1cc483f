package search

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/dealscope/dealscope/pkg/listing"
)

// Dedupe collapses listings that denote the same real-world item, keeping
// the first occurrence. Identity is a heuristic composite of normalized
// title, parsed price and the link's root domain: the same listing scraped
// via different term variants collapses, while distinct items that share a
// title stay apart on price or host.
func Dedupe(items []listing.Normalized) []listing.Normalized {
	out := make([]listing.Normalized, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		key := identityKey(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}

	return out
}

func identityKey(item listing.Normalized) string {
	title := strings.Join(strings.Fields(strings.ToLower(item.Title)), " ")

	price := "unpriced"
	if item.PriceAmount != nil {
		price = fmt.Sprintf("%.2f", *item.PriceAmount)
	}

	return title + "|" + price + "|" + linkDomain(item.Link)
}

// linkDomain reduces a listing URL to its root domain, so the same listing
// reached via different paths or mirrors of the same host collapses.
func linkDomain(link string) string {
	host := link
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		host = u.Hostname()
	} else {
		host = strings.Split(host, "/")[0]
		host = strings.Split(host, ":")[0]
	}

	host = strings.ToLower(strings.TrimPrefix(host, "www."))

	if domain, err := publicsuffix.Domain(host); err == nil {
		return domain
	}
	return host
}
