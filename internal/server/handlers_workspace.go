package server

import (
	"mime"
	"net/http"

	"github.com/Now-Tiger/Flow/internal/contract"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/export"
)

var projectNotFound = messages{domain.ErrNotFound: "Project not found"}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req contract.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, messages{domain.ErrValidation: "Missing required fields"})
		return
	}
	res, err := s.svc.Generation.Generate(r.Context(), sessionFrom(r.Context()).UserID, req.Input())
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrValidation:  "Missing required fields",
			domain.ErrPersistence: "Failed to create project",
		})
		return
	}
	respondJSON(w, http.StatusCreated, contract.NewGenerateResponse(res))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req contract.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, messages{domain.ErrValidation: "Prompt is required"})
		return
	}
	text, err := s.svc.Summary.Summarize(r.Context(), req.Prompt)
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrValidation:       "Prompt is required",
			domain.ErrGenerationFailed: "Failed to generate response",
		})
		return
	}
	respondJSON(w, http.StatusOK, contract.ChatResponse{Text: text})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Projects.List(r.Context(), sessionFrom(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err, messages{domain.ErrPersistence: "Failed to fetch projects"})
		return
	}
	respondJSON(w, http.StatusOK, contract.NewProjectList(items))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req contract.CreateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, messages{domain.ErrValidation: "Title and description are required"})
		return
	}
	p, err := s.svc.Projects.Create(r.Context(), sessionFrom(r.Context()).UserID, req.Input())
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrValidation:  "Title and description are required",
			domain.ErrPersistence: "Failed to create project",
		})
		return
	}
	respondJSON(w, http.StatusCreated, contract.ProjectEnvelope{Project: contract.NewProject(p)})
}

func (s *Server) handleProjectDetails(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Projects.Details(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, projectNotFound)
		return
	}
	respondJSON(w, http.StatusOK, contract.NewProjectDetails(d))
}

func (s *Server) handleProjectStatus(w http.ResponseWriter, r *http.Request) {
	var req contract.UpdateProjectStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, messages{domain.ErrValidation: "Invalid status"})
		return
	}
	status, ok := domain.ParseProjectStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	p, err := s.svc.Projects.UpdateStatus(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), status)
	if err != nil {
		s.fail(w, r, err, projectNotFound)
		return
	}
	respondJSON(w, http.StatusOK, contract.ProjectEnvelope{Project: contract.NewProject(p)})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Projects.Delete(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrNotFound:    "Project not found",
			domain.ErrForbidden:   "Forbidden - you can only delete your own projects",
			domain.ErrPersistence: "Failed to delete project",
		})
		return
	}
	respondJSON(w, http.StatusOK, contract.NewDeleteProjectResponse(p))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := export.ParseFormat(r.URL.Query().Get("format"))
	file, err := s.svc.Export.Export(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), format)
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrNotFound:    "Project not found",
			domain.ErrPersistence: "Export failed",
		})
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(file.Content))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req contract.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, messages{domain.ErrValidation: "Invalid task update"})
		return
	}
	t, err := s.svc.Tasks.Update(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), r.PathValue("taskId"), req.Update())
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrValidation:  "Invalid task update",
			domain.ErrNotFound:    "Task not found",
			domain.ErrPersistence: "Failed to update task",
		})
		return
	}
	respondJSON(w, http.StatusOK, contract.TaskEnvelope{Task: contract.NewTask(t)})
}

func (s *Server) handleReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req contract.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Tasks == nil {
		respondError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	tasks, err := s.svc.Tasks.Reorder(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), req.Updates())
	if err != nil && tasks != nil {
		s.logger.WarnContext(r.Context(), "reorder_partial",
			"project_id", r.PathValue("id"),
			"error", err.Error(),
		)
		err = nil
	}
	if err != nil {
		s.fail(w, r, err, messages{
			domain.ErrValidation: "Invalid request format",
			domain.ErrNotFound:   "Project not found",
		})
		return
	}
	respondJSON(w, http.StatusOK, contract.TaskList{Tasks: contract.NewTasks(tasks)})
}

func (s *Server) handleTaskEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := s.svc.Tasks.History(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), r.PathValue("taskId"))
	if err != nil {
		s.fail(w, r, err, messages{domain.ErrNotFound: "Task not found"})
		return
	}
	respondJSON(w, http.StatusOK, contract.NewTaskEditList(edits))
}
