package cmd

import (
	"time"

	"github.com/spf13/viper"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/enhance"
	"github.com/dealscope/dealscope/pkg/sources"
	"github.com/dealscope/dealscope/pkg/sources/ebay"
	"github.com/dealscope/dealscope/pkg/sources/gumtree"
	"github.com/dealscope/dealscope/pkg/sources/vinted"
	"github.com/dealscope/dealscope/pkg/whttp"
)

// newRegistry wires up all built-in marketplace sources over a shared
// retrying HTTP client.
func newRegistry(proxy string) (*sources.Registry, error) {
	client, err := whttp.NewClient(20*time.Second, proxy)
	if err != nil {
		return nil, err
	}

	return sources.NewRegistry(
		ebay.New(client),
		gumtree.New(client),
		vinted.New(client),
	), nil
}

// newEnhancer builds the query enhancer from config. With no API key the
// search falls back to offline expansion, which is perfectly usable.
func newEnhancer() enhance.Enhancer {
	apiKey := viper.GetString("enhance.api_key")
	if apiKey == "" {
		utils.Log.Debug("no enhance.api_key configured, using offline query expansion")
		return nil
	}

	enh, err := enhance.NewEnhancer(enhance.Config{
		APIKey:   apiKey,
		Model:    viper.GetString("enhance.model"),
		Endpoint: viper.GetString("enhance.endpoint"),
	})
	if err != nil {
		utils.Log.Warnf("could not set up query enhancement: %v", err)
		return nil
	}
	return enh
}
