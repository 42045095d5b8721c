package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

type notesRequest struct {
	ProjectName string    `json:"projectName"`
	Experiment  string    `json:"experiment"`
	Notes       *[]string `json:"notes"`
}

type deleteRequest struct {
	ProjectName string   `json:"projectName"`
	Experiments []string `json:"experiments"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project_name")
	if project == "" {
		http.Error(w, "missing project_name", http.StatusBadRequest)
		return
	}
	ids, err := s.store.ListExperiments(r.Context(), project)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleExperiment(w http.ResponseWriter, r *http.Request) {
	project, id, ok := experimentArgs(w, r)
	if !ok {
		return
	}
	summary, err := s.store.GetExperiment(r.Context(), project, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	project, id, ok := experimentArgs(w, r)
	if !ok {
		return
	}
	notes, err := s.store.GetNotes(r.Context(), project, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(strings.Join(notes, "\n")))
}

func (s *Server) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectName == "" || req.Experiment == "" || req.Notes == nil {
		http.Error(w, "projectName, experiment and notes are required", http.StatusBadRequest)
		return
	}

	if err := s.store.SetNotes(r.Context(), req.ProjectName, req.Experiment, *req.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	logx.WithExperiment(logx.Project(r.Context(), req.ProjectName), req.Experiment).Info("notes updated", "lines", len(*req.Notes))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectName == "" || len(req.Experiments) == 0 {
		http.Error(w, "projectName and experiments are required", http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteExperiments(r.Context(), req.ProjectName, req.Experiments); err != nil {
		s.writeError(w, r, err)
		return
	}
	logx.Project(r.Context(), req.ProjectName).Info("experiments deleted", "count", len(req.Experiments))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// experimentArgs reads project_name and experiment, answering 400 when
// either is missing.
func experimentArgs(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	project, id := q.Get("project_name"), q.Get("experiment")
	if project == "" || id == "" {
		http.Error(w, "missing project_name or experiment", http.StatusBadRequest)
		return "", "", false
	}
	return project, id, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	logx.Ctx(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
