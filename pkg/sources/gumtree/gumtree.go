package gumtree

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

const (
	BASE_URL   = "https://www.gumtree.com"
	SEARCH_URL = BASE_URL + "/search"
)

type Source struct {
	client *retryablehttp.Client
}

func New(client *retryablehttp.Client) *Source {
	return &Source{client: client}
}

func (s *Source) Name() string {
	return "gumtree"
}

// Fetch scrapes Gumtree search result pages for a term.
func (s *Source) Fetch(ctx context.Context, term, location string, maxPages int) ([]listing.Raw, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []listing.Raw
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("search_category", "all")
		params.Set("q", term)
		params.Set("page", fmt.Sprintf("%d", page))
		if location != "" {
			params.Set("search_location", location)
		}

		res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
			URL: SEARCH_URL + "?" + params.Encode(),
		}, s.client)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != 200 {
			return nil, fmt.Errorf("gumtree search returned HTTP %d", res.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.BodyString))
		if err != nil {
			return nil, err
		}

		pageCount := 0
		doc.Find("article[data-q=search-result]").Each(func(_ int, card *goquery.Selection) {
			link, _ := card.Find("a").First().Attr("href")
			if link != "" && strings.HasPrefix(link, "/") {
				link = BASE_URL + link
			}

			image, _ := card.Find("img").First().Attr("src")
			if image == "" {
				// Lazy-loaded cards keep the real URL in data-src.
				image, _ = card.Find("img").First().Attr("data-src")
			}

			out = append(out, listing.Raw{
				Title:       strings.TrimSpace(card.Find("[data-q=tile-title]").Text()),
				Price:       strings.TrimSpace(card.Find("[data-q=tile-price]").Text()),
				Link:        link,
				Image:       image,
				Source:      s.Name(),
				Description: strings.TrimSpace(card.Find("[data-q=tile-description]").Text()),
				PostedAt:    strings.TrimSpace(card.Find("[data-q=tile-datePosted]").AttrOr("datetime", "")),
			})
			pageCount++
		})

		utils.Log.Debugf("[gumtree] page %d for %q: %d listings", page, term, pageCount)

		if pageCount == 0 {
			break
		}
	}

	return out, nil
}
