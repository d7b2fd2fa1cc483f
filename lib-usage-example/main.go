// Example of using dealscope as a library with a custom source set.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dealscope/dealscope/pkg/search"
	"github.com/dealscope/dealscope/pkg/sources"
	"github.com/dealscope/dealscope/pkg/sources/ebay"
	"github.com/dealscope/dealscope/pkg/whttp"
)

func main() {
	client, err := whttp.NewClient(20*time.Second, "")
	if err != nil {
		log.Fatal(err)
	}

	// Query eBay only; add more sources to the registry to fan out wider.
	reg := sources.NewRegistry(ebay.New(client))

	results, err := search.Perform(context.Background(), "strymon ob1", "london", "GBP", reg, nil, search.Options{})
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		fmt.Printf("%.2f  %s  %s\n", r.Score, r.Price, r.Title)
	}
}
