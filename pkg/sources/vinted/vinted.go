package vinted

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/whttp"
)

const CATALOG_URL = "https://www.vinted.co.uk/api/v2/catalog/items"

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

type Source struct {
	client *retryablehttp.Client
}

func New(client *retryablehttp.Client) *Source {
	return &Source{client: client}
}

func (s *Source) Name() string {
	return "vinted"
}

// Fetch queries the Vinted catalog API. Vinted has no location filter, so
// the location argument is ignored.
func (s *Source) Fetch(ctx context.Context, term, location string, maxPages int) ([]listing.Raw, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []listing.Raw
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("search_text", term)
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("per_page", "48")

		res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
			URL: CATALOG_URL + "?" + params.Encode(),
			Headers: []whttp.WHTTPHeader{
				{Name: "Accept", Value: "application/json"},
			},
		}, s.client)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != 200 {
			return nil, fmt.Errorf("vinted catalog returned HTTP %d", res.StatusCode)
		}

		items := gjson.Get(res.BodyString, "items")
		if !items.IsArray() {
			return nil, fmt.Errorf("vinted catalog returned an unexpected shape")
		}

		pageCount := 0
		for _, item := range items.Array() {
			// price.amount is a string in current payloads but has been a
			// bare number before; older payloads kept a flat price string.
			amount := gjson.Get(item.Raw, "price.amount").String()
			if amount == "" {
				if p := gjson.Get(item.Raw, "price"); p.Type == gjson.String {
					amount = p.Str
				}
			}
			symbol := currencySymbols[gjson.Get(item.Raw, "price.currency_code").Str]
			if symbol == "" {
				symbol = listing.DefaultCurrencySymbol
			}

			price := ""
			if amount != "" {
				price = symbol + amount
			}

			out = append(out, listing.Raw{
				Title:    gjson.Get(item.Raw, "title").Str,
				Price:    price,
				Link:     gjson.Get(item.Raw, "url").Str,
				Image:    gjson.Get(item.Raw, "photo.url").Str,
				Source:   s.Name(),
				PostedAt: gjson.Get(item.Raw, "created_at").Str,
			})
			pageCount++
		}

		utils.Log.Debugf("[vinted] page %d for %q: %d listings", page, term, pageCount)

		if pageCount == 0 {
			break
		}
	}

	return out, nil
}
