package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pschleger/workflow-canvas/pkg/engine"
	"github.com/pschleger/workflow-canvas/pkg/render"
	"github.com/pschleger/workflow-canvas/pkg/session"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// documentResponse is the standard success payload: the full document after
// the operation, plus the undo/redo availability the toolbar needs.
type documentResponse struct {
	Document *workflow.Document `json:"document"`
	CanUndo  bool               `json:"canUndo"`
	CanRedo  bool               `json:"canRedo"`

	// TransitionID is set by addTransition responses.
	TransitionID string `json:"transitionId,omitempty"`
}

func respond(w http.ResponseWriter, status int, sess *session.Session, doc *workflow.Document, transitionID string) {
	writeJSON(w, status, documentResponse{
		Document:     doc,
		CanUndo:      sess.CanUndo(),
		CanRedo:      sess.CanRedo(),
		TransitionID: transitionID,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntityRef     string                 `json:"entityRef"`
		Configuration workflow.Configuration `json:"configuration"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := workflow.ImportDocument(req.EntityRef, req.Configuration)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := session.OpenDocument(r.Context(), s.sessionOptions(), doc)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	s.sessions[doc.ID] = sess
	s.mu.Unlock()

	respond(w, http.StatusCreated, sess, doc, "")
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, sess.Document(), "")
}

func (s *Server) handleAddState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		StateID    string                   `json:"stateId"`
		Definition workflow.StateDefinition `json:"definition"`
		Position   workflow.Point           `json:"position"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := sess.Apply(r.Context(), "add state "+req.StateID, func(d *workflow.Document) (*workflow.Document, error) {
		return engine.AddState(d, req.StateID, req.Definition, req.Position)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, sess, doc, "")
}

func (s *Server) handleUpdateState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stateID := chi.URLParam(r, "stateID")

	var req struct {
		Definition workflow.StateDefinition `json:"definition"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := sess.Apply(r.Context(), "update state "+stateID, func(d *workflow.Document) (*workflow.Document, error) {
		return engine.UpdateState(d, stateID, req.Definition)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, doc, "")
}

func (s *Server) handleDeleteState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stateID := chi.URLParam(r, "stateID")

	doc, err := sess.Apply(r.Context(), "delete state "+stateID, func(d *workflow.Document) (*workflow.Document, error) {
		return engine.DeleteState(d, stateID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, doc, "")
}

func (s *Server) handleMoveState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stateID := chi.URLParam(r, "stateID")

	var req struct {
		Position workflow.Point `json:"position"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := sess.MoveState(r.Context(), stateID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, doc, "")
}

func (s *Server) handleAddTransition(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		SourceStateID string                        `json:"sourceStateId"`
		Definition    workflow.TransitionDefinition `json:"definition"`
		LabelPosition workflow.Point                `json:"labelPosition"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var transitionID string
	doc, err := sess.Apply(r.Context(), "add transition from "+req.SourceStateID, func(d *workflow.Document) (*workflow.Document, error) {
		next, id, err := engine.AddTransition(d, req.SourceStateID, req.Definition, req.LabelPosition)
		transitionID = id
		return next, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, sess, doc, transitionID)
}

func (s *Server) handleUpdateTransition(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	transitionID := chi.URLParam(r, "transitionID")

	var req struct {
		Definition workflow.TransitionDefinition `json:"definition"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := sess.Apply(r.Context(), "update transition "+transitionID, func(d *workflow.Document) (*workflow.Document, error) {
		return engine.UpdateTransition(d, transitionID, req.Definition)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, doc, "")
}

func (s *Server) handleDeleteTransition(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	transitionID := chi.URLParam(r, "transitionID")

	doc, err := sess.Apply(r.Context(), "delete transition "+transitionID, func(d *workflow.Document) (*workflow.Document, error) {
		return engine.DeleteTransition(d, transitionID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, doc, "")
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, sess.Undo(r.Context()), "")
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, sess.Redo(r.Context()), "")
}

func (s *Server) handleAutoLayout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := sess.AutoLayout(r.Context(), s.opts.Layout)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sess, doc, "")
}

func (s *Server) handleRenderDOT(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	dot := render.ToDOT(sess.Document().Configuration, render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.getSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	dot := render.ToDOT(sess.Document().Configuration, render.Options{})
	svg, err := render.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
