package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/query"
)

// Config controls how the query enhancer behaves.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// Enhancer expands a raw search term into term variants, categories and
// risk flags using a generative model. Implementations may fail or time
// out; callers are expected to fall back to query.Expand.
type Enhancer interface {
	Enhance(ctx context.Context, term string) (query.Enhanced, error)
}

const (
	defaultProvider = "openai"
	defaultModel    = "gpt-4.1-mini"
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
)

// NewEnhancer builds a concrete Enhancer implementation based on the provided config.
func NewEnhancer(cfg Config) (Enhancer, error) {
	cfg.Provider = strings.TrimSpace(strings.ToLower(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}

	switch cfg.Provider {
	case "openai":
		return newOpenAIEnhancer(cfg)
	default:
		return nil, fmt.Errorf("unsupported enhancement provider: %s", cfg.Provider)
	}
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type openAIEnhancer struct {
	apiKey   string
	model    string
	endpoint string
	client   httpClient
}

func newOpenAIEnhancer(cfg Config) (*openAIEnhancer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("query enhancement requires an API key (set enhance.api_key in config or OPENAI_API_KEY)")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &openAIEnhancer{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   client,
	}, nil
}

// Enhance asks the model for term variants and hints, then validates the
// untrusted response shape before handing it to the pipeline.
func (e *openAIEnhancer) Enhance(ctx context.Context, term string) (query.Enhanced, error) {
	reqBody := openAIChatRequest{
		Model: e.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: term},
		},
		Temperature:    0.1,
		ResponseFormat: openAIResponseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return query.Enhanced{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return query.Enhanced{}, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return query.Enhanced{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErrResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErrResp)
		if apiErrResp.Error.Message != "" {
			return query.Enhanced{}, fmt.Errorf("query enhancement: %s", apiErrResp.Error.Message)
		}
		return query.Enhanced{}, fmt.Errorf("query enhancement failed with HTTP %d", resp.StatusCode)
	}

	var apiResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return query.Enhanced{}, err
	}

	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return query.Enhanced{}, errors.New("query enhancement returned an empty response")
	}

	return ParseResponse(term, apiResp.Choices[0].Message.Content)
}

// ParseResponse validates the model output as an untrusted variant. A
// missing or non-array search_terms field is a hard failure; everything
// else degrades to zero values.
func ParseResponse(term, content string) (query.Enhanced, error) {
	content = strings.TrimSpace(content)
	if !gjson.Valid(content) {
		return query.Enhanced{}, errors.New("enhancement response is not valid JSON")
	}

	termsField := gjson.Get(content, "search_terms")
	if !termsField.Exists() || !termsField.IsArray() {
		return query.Enhanced{}, errors.New("enhancement response is missing a search_terms array")
	}

	out := query.Enhanced{Original: term}
	for _, v := range termsField.Array() {
		if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			out.SearchTerms = append(out.SearchTerms, strings.TrimSpace(v.Str))
		}
	}
	out.SearchTerms = utils.DedupeStrings(out.SearchTerms)
	if len(out.SearchTerms) > 8 {
		out.SearchTerms = out.SearchTerms[:8]
	}

	for _, v := range gjson.Get(content, "categories").Array() {
		if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			out.Categories = append(out.Categories, strings.TrimSpace(v.Str))
		}
	}
	for _, v := range gjson.Get(content, "forums").Array() {
		if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			out.Forums = append(out.Forums, strings.TrimSpace(v.Str))
		}
	}

	out.Flags = query.Flags{
		HighValueItem:    gjson.Get(content, "flags.high_value_item").Bool(),
		CommonScamTarget: gjson.Get(content, "flags.common_scam_target").Bool(),
		LikelyOnForums:   gjson.Get(content, "flags.likely_on_forums").Bool(),
		ResellerFriendly: gjson.Get(content, "flags.reseller_friendly").Bool(),
	}

	return out, nil
}

// Resolve produces the query expansion used for a search. The enhancement
// service is optional and untrusted: when it is absent, errors, or returns
// no usable terms, the offline expander fills the gap. A service result
// with zero terms is merged rather than discarded, so its categories,
// forums and flags survive.
func Resolve(ctx context.Context, enh Enhancer, term string) query.Enhanced {
	if enh == nil {
		return query.Expand(term)
	}

	got, err := enh.Enhance(ctx, term)
	if err != nil {
		utils.Log.Warnf("query enhancement failed, using offline expansion: %v", err)
		return query.Expand(term)
	}

	if len(got.SearchTerms) == 0 {
		utils.Log.Debugf("query enhancement returned no terms for %q, merging with offline expansion", term)
		return query.Merge(got, query.Expand(term))
	}

	utils.Log.Debugf("query enhancement produced %d terms for %q", len(got.SearchTerms), term)
	return got
}

const systemPrompt = `You expand second-hand marketplace search queries.

For the query you receive, return:
- "search_terms": up to 8 distinct search phrases people would use to list this item second hand (include the original query).
- "categories": marketplace categories the item belongs to.
- "forums": enthusiast forums where this item is commonly traded.
- "flags": {"high_value_item": bool, "common_scam_target": bool, "likely_on_forums": bool, "reseller_friendly": bool}

Return ONLY JSON following this schema:
{
  "search_terms": ["string"],
  "categories": ["string"],
  "forums": ["string"],
  "flags": {"high_value_item": false, "common_scam_target": false, "likely_on_forums": false, "reseller_friendly": true}
}`

type openAIChatRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIMessage      `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat openAIResponseFormat `json:"response_format"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
