// Package api exposes the workflow editing operations over HTTP.
//
// The server is the backend of the canvas UI: every structural edit the
// canvas performs maps to one endpoint, routed through an editing session
// so history and persistence behave exactly as they do in process. Requests
// and responses are JSON.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/history"
	"github.com/pschleger/workflow-canvas/pkg/layout"
	"github.com/pschleger/workflow-canvas/pkg/session"
	"github.com/pschleger/workflow-canvas/pkg/store"
)

// Options wires the server's collaborators.
type Options struct {
	// Store persists workflows. Required.
	Store store.Store

	// HistoryLimit bounds each workflow's undo stack. Zero selects the
	// default.
	HistoryLimit int

	// Logger receives request and persistence logs. Defaults to
	// log.Default().
	Logger *log.Logger

	// Layout is the default auto-layout geometry.
	Layout layout.Options
}

// Server hosts the editing API. One session is kept per workflow that has
// been touched; sessions share the history store and persistence backend.
type Server struct {
	opts    Options
	history *history.Store

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New creates a server. Call [Server.Router] for the http.Handler.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		opts:     opts,
		history:  history.NewStore(opts.HistoryLimit),
		sessions: make(map[string]*session.Session),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api/workflows", func(r chi.Router) {
		r.Post("/", s.handleImport)
		r.Route("/{workflowID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Post("/states", s.handleAddState)
			r.Patch("/states/{stateID}", s.handleUpdateState)
			r.Delete("/states/{stateID}", s.handleDeleteState)
			r.Put("/states/{stateID}/position", s.handleMoveState)
			r.Post("/transitions", s.handleAddTransition)
			r.Patch("/transitions/{transitionID}", s.handleUpdateTransition)
			r.Delete("/transitions/{transitionID}", s.handleDeleteTransition)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Post("/autolayout", s.handleAutoLayout)
			r.Get("/render.svg", s.handleRenderSVG)
			r.Get("/render.dot", s.handleRenderDOT)
		})
	})

	return r
}

// Close flushes and closes every resident session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

// getSession returns the resident session for a workflow, opening one from
// the store on first touch.
func (s *Server) getSession(r *http.Request) (*session.Session, error) {
	workflowID := chi.URLParam(r, "workflowID")

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[workflowID]; ok {
		return sess, nil
	}

	sess, err := session.Open(r.Context(), s.sessionOptions(), workflowID)
	if err != nil {
		return nil, err
	}
	s.sessions[workflowID] = sess
	return sess, nil
}

func (s *Server) sessionOptions() session.Options {
	return session.Options{
		Store:   s.opts.Store,
		History: s.history,
		Logger:  s.opts.Logger,
	}
}

// logRequests logs each request with method, path, status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, statusFor(errors.GetCode(err)), body)
}

// statusFor maps domain error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfiguration, errors.ErrCodeMalformedIdentity:
		return http.StatusBadRequest
	case errors.ErrCodeDuplicateState:
		return http.StatusConflict
	case errors.ErrCodeUnknownState, errors.ErrCodeUnknownTransition, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
