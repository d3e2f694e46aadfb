// Package api exposes the HTTP surface: the blog CRUD routes, the admin
// migration operations, and the health and metrics endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shiftdb/pkg/backfill"
	"shiftdb/pkg/blog"
	"shiftdb/pkg/utils"
	"shiftdb/pkg/verify"
)

// Server wires the domain service and the migration tooling into HTTP
// handlers. Engine and verifier are nil once the source store is gone;
// their routes then answer 409.
type Server struct {
	svc      *blog.Service
	engine   *backfill.Engine
	verifier *verify.Verifier
}

func NewServer(svc *blog.Service, engine *backfill.Engine, verifier *verify.Verifier) *Server {
	return &Server{svc: svc, engine: engine, verifier: verifier}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.deleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/posts", s.createPost).Methods(http.MethodPost)
	api.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", s.getPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", s.updatePost).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id}", s.deletePost).Methods(http.MethodDelete)

	api.HandleFunc("/posts/{id}/comments", s.createComment).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comments", s.listComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/comments/{commentID}", s.deleteComment).Methods(http.MethodDelete)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/backfill", s.runBackfill).Methods(http.MethodPost)
	admin.HandleFunc("/verify", s.runVerify).Methods(http.MethodPost)
	admin.HandleFunc("/stats", s.stats).Methods(http.MethodGet)

	return r
}

// writeErr maps domain failures onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, blog.ErrValidation),
		errors.Is(err, blog.ErrDuplicateKey),
		errors.Is(err, blog.ErrInvalidIdentifier):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Sort    string      `json:"sort,omitempty"`
	Source  string      `json:"source,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(data interface{}) envelope {
	return envelope{Success: true, Data: data}
}

func okList(data interface{}, count int, sort, source string) envelope {
	return envelope{Success: true, Data: data, Count: &count, Sort: sort, Source: source}
}
