// Package http exposes a registered gate as a JSON API: tree
// introspection plus per-action availability and dispatch. The principal
// is taken from a request header; production deployments are expected to
// put a real authentication layer in front and rewrite that header.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/palisade"
	"github.com/aretw0/palisade/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// PrincipalHeader carries the authenticated caller's identifier.
const PrincipalHeader = "X-Palisade-Principal"

// Gate defines the surface of the palisade core the server needs.
type Gate interface {
	Proxy(stack, actionID string) (*palisade.Proxy, error)
	Inspect() []domain.StackInfo
}

// Server serves the gate API.
type Server struct {
	gate   Gate
	logger *slog.Logger
}

// NewHandler creates an HTTP handler for the gate.
func NewHandler(gate Gate, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{gate: gate, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/tree", s.getTree)
	r.Route("/stacks/{stack}/actions/{action}", func(r chi.Router) {
		r.Get("/available", s.getAvailable)
		r.Post("/perform", s.postPerform)
		r.Post("/prepare", s.postPrepare)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+PrincipalHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callRequest is the JSON body accepted by perform/prepare.
type callRequest struct {
	Subject any            `json:"subject,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
}

// denialResponse is the JSON shape of a structured denial.
type denialResponse struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "palisade-http",
		"version": strings.TrimSpace(palisade.Version),
	})
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gate.Inspect())
}

func (s *Server) getAvailable(w http.ResponseWriter, r *http.Request) {
	proxy, ok := s.resolve(w, r)
	if !ok {
		return
	}
	available := proxy.Available(r.Context(), callFromRequest(r, nil))
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (s *Server) postPerform(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, (*palisade.Proxy).Perform)
}

func (s *Server) postPrepare(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, (*palisade.Proxy).Prepare)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, invoke func(*palisade.Proxy, context.Context, *domain.Call) (*domain.Envelope, error)) {
	proxy, ok := s.resolve(w, r)
	if !ok {
		return
	}

	var body callRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("dispatch: invalid request body", "error", err)
			return
		}
	}

	envelope, err := invoke(proxy, r.Context(), callFromRequest(r, &body))
	if err != nil {
		if d := domain.AsDenial(err); d != nil {
			writeJSON(w, http.StatusForbidden, denialResponse{Stage: string(d.Stage), Reason: d.Reason})
			return
		}
		if errors.Is(err, domain.ErrNoPrepare) || errors.Is(err, domain.ErrNoPerform) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Dispatch error: %v", err), http.StatusInternalServerError)
		s.logger.Error("dispatch failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*palisade.Proxy, bool) {
	stack := chi.URLParam(r, "stack")
	action := chi.URLParam(r, "action")

	proxy, err := s.gate.Proxy(stack, action)
	if err != nil {
		if errors.Is(err, domain.ErrActionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		http.Error(w, fmt.Sprintf("Resolve error: %v", err), http.StatusInternalServerError)
		s.logger.Error("resolve failed", "error", err)
		return nil, false
	}
	return proxy, true
}

func callFromRequest(r *http.Request, body *callRequest) *domain.Call {
	call := &domain.Call{}
	if id := strings.TrimSpace(r.Header.Get(PrincipalHeader)); id != "" {
		call.Principal = &domain.Principal{ID: id}
	}
	if body != nil {
		call.Subject = body.Subject
		call.Args = body.Args
	}
	return call
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
