package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/currency"
	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/search"
	"github.com/dealscope/dealscope/pkg/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	term := strings.TrimSpace(q.Get("q"))
	if term == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	target := strings.ToUpper(strings.TrimSpace(q.Get("currency")))
	if target == "" {
		target = currency.Default
	}
	if !currency.Supported(target) {
		http.Error(w, "unsupported currency: "+target, http.StatusBadRequest)
		return
	}

	opts := search.Options{}
	if srcs := strings.TrimSpace(q.Get("sources")); srcs != "" {
		opts.Sources = strings.Split(srcs, ",")
	}
	if pages := q.Get("pages"); pages != "" {
		n, err := strconv.Atoi(pages)
		if err != nil || n < 1 {
			http.Error(w, "invalid pages parameter", http.StatusBadRequest)
			return
		}
		opts.MaxPages = n
	}

	started := time.Now()
	results, err := search.Perform(r.Context(), term, q.Get("location"), target, s.Registry, s.Enhancer, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Empty results are a successful outcome: 200 with an empty array.
	if results == nil {
		results = []listing.Scored{}
	}

	if s.DB != nil {
		rec := storage.SearchRecord{
			Term:        term,
			Location:    q.Get("location"),
			Currency:    target,
			Sources:     opts.Sources,
			ResultCount: len(results),
			Duration:    time.Since(started),
		}
		if err := s.DB.RecordSearch(r.Context(), rec); err != nil {
			utils.Log.Warnf("failed to record search history: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Registry.Names())
}

type statsResponse struct {
	SearchesPerformed uint64         `json:"searches_performed"`
	History           *storage.Stats `json:"history,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{SearchesPerformed: search.Count()}

	if s.DB != nil {
		stats, err := s.DB.GetStats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.History = &stats
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history store not configured", http.StatusNotFound)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	records, err := s.DB.ListRecent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
