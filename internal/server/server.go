// Package server provides the HTTP intake for storage operations. Each
// request becomes a flow message handed to a node in the background.
//
// Endpoints:
//
//	POST /uploads           enqueue an upload; returns operation ID immediately
//	POST /buckets           enqueue creation of the configured bucket
//	GET  /operations/{id}   poll operation status and retrieve the payload
//	GET  /healthz           liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/node"
	"github.com/tomasbasham/gcsflow/internal/operation"
)

// Config holds the HTTP server settings.
type Config struct {
	Port int `mapstructure:"port" default:"8080"`
	// MaxConcurrent caps node runs in flight; further operations wait as
	// pending.
	MaxConcurrent int64 `mapstructure:"max_concurrent" default:"8"`
	// RequestsPerMinute is the per-client limit on POST requests. Zero
	// disables limiting.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"120"`
}

// Nodes are the flow nodes the server dispatches to.
type Nodes struct {
	Upload       node.Node
	UploadStream node.Node
	CreateBucket node.Node
}

// Server holds the dependencies shared across HTTP handlers.
type Server struct {
	log   logrus.FieldLogger
	store operation.Store
	nodes Nodes
	sem   *semaphore.Weighted
	mux   *http.ServeMux
}

// New creates a Server wired to the given store and nodes.
func New(log logrus.FieldLogger, store operation.Store, nodes Nodes, cfg Config) *Server {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	s := &Server{
		log:   log.WithField("component", "server"),
		store: store,
		nodes: nodes,
		sem:   semaphore.NewWeighted(maxConcurrent),
	}

	limit := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RequestsPerMinute > 0 {
		mw := rateLimitMiddleware(cfg.RequestsPerMinute)
		limit = func(h http.HandlerFunc) http.Handler { return mw(h) }
	}

	s.mux = http.NewServeMux()
	s.mux.Handle("POST /uploads", limit(s.handleCreateUpload))
	s.mux.Handle("POST /buckets", limit(s.handleCreateBucket))
	s.mux.HandleFunc("GET /operations/{id}", s.handleGetOperation)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown failed: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// uploadRequest is the JSON body for POST /uploads.
type uploadRequest struct {
	flow.Message
	Stream bool `json:"stream"`
}

// createOperationResponse is returned immediately from POST requests.
type createOperationResponse struct {
	OperationID string `json:"operation_id"`
	Status      string `json:"status"`
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	kind, n := operation.KindUpload, s.nodes.Upload
	if req.Stream {
		kind, n = operation.KindUploadStream, s.nodes.UploadStream
	}
	s.dispatch(w, r, kind, n, req.Message)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, operation.KindCreateBucket, s.nodes.CreateBucket, flow.Message{})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, kind operation.Kind, n node.Node, msg flow.Message) {
	if n == nil {
		writeError(w, http.StatusNotImplemented, fmt.Sprintf("%s is not available", kind))
		return
	}

	op, err := s.store.Create(kind, msg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create operation: "+err.Error())
		return
	}

	// The node run outlives the HTTP request; it must not be cancelled when
	// the connection closes.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			_ = s.store.MarkFailed(op.ID, err)
			return
		}
		defer s.sem.Release(1)

		operation.Run(ctx, operation.WorkerOptions{
			OperationID: op.ID,
			Store:       s.store,
			Node:        n,
			Message:     msg,
			Log:         s.log.WithField("kind", kind),
		})
	}()

	writeJSON(w, http.StatusAccepted, createOperationResponse{
		OperationID: op.ID,
		Status:      string(operation.StatusPending),
	})
}

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "operation id is required")
		return
	}

	op, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("operation %q not found", id))
		return
	}

	writeJSON(w, http.StatusOK, op)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
