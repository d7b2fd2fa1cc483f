package ebay

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/whttp"
)

const SEARCH_URL = "https://www.ebay.co.uk/sch/i.html"

type Source struct {
	client *retryablehttp.Client
}

func New(client *retryablehttp.Client) *Source {
	return &Source{client: client}
}

func (s *Source) Name() string {
	return "ebay"
}

// Fetch scrapes eBay search result pages for a term. Placeholder "Shop on
// eBay" cards carry no real listing and are skipped.
func (s *Source) Fetch(ctx context.Context, term, location string, maxPages int) ([]listing.Raw, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []listing.Raw
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("_nkw", term)
		params.Set("_pgn", fmt.Sprintf("%d", page))
		if location != "" {
			params.Set("_stpos", location)
		}

		res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
			URL: SEARCH_URL + "?" + params.Encode(),
		}, s.client)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != 200 {
			return nil, fmt.Errorf("ebay search returned HTTP %d", res.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.BodyString))
		if err != nil {
			return nil, err
		}

		pageCount := 0
		doc.Find("li.s-item").Each(func(_ int, card *goquery.Selection) {
			title := strings.TrimSpace(card.Find(".s-item__title").Text())
			if title == "" || strings.EqualFold(title, "Shop on eBay") {
				return
			}

			link, _ := card.Find("a.s-item__link").Attr("href")
			image, _ := card.Find(".s-item__image-wrapper img").Attr("src")

			out = append(out, listing.Raw{
				Title:       title,
				Price:       strings.TrimSpace(card.Find(".s-item__price").Text()),
				Link:        link,
				Image:       image,
				Source:      s.Name(),
				Description: strings.TrimSpace(card.Find(".s-item__subtitle").Text()),
				PostedAt:    strings.TrimSpace(card.Find(".s-item__listingDate").Text()),
			})
			pageCount++
		})

		utils.Log.Debugf("[ebay] page %d for %q: %d listings", page, term, pageCount)

		// Past the last page eBay serves an empty result list.
		if pageCount == 0 {
			break
		}
	}

	return out, nil
}
