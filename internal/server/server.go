package server

import (
	"net/http"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/enhance"
	"github.com/dealscope/dealscope/pkg/sources"
	"github.com/dealscope/dealscope/pkg/storage"
)

type Server struct {
	Registry *sources.Registry
	Enhancer enhance.Enhancer
	DB       *storage.DB
	Username string
	Password string
}

func New(reg *sources.Registry, enh enhance.Enhancer, db *storage.DB, user, pass string) *Server {
	return &Server{
		Registry: reg,
		Enhancer: enh,
		DB:       db,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/search", s.basicAuth(s.handleSearch))
	mux.HandleFunc("GET /api/sources", s.basicAuth(s.handleSources))
	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("GET /api/history", s.basicAuth(s.handleHistory))

	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
