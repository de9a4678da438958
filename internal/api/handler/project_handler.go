package handler

import (
	"encoding/json"
	"net/http"

	"internboard/internal/api/middleware"
	"internboard/internal/app/service"
	"internboard/internal/common"
	"internboard/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(ps *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: ps}
}

// RegisterRoutes assumes the caller already wrapped the router with the
// Authenticator. Mutations and the intern directory are admin-only; the
// intern/* routes scope themselves to the caller.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProjects)
	r.Get("/{id}", h.getProject)
	r.Get("/intern/tasks", h.listInternTasks)
	r.Patch("/intern/tasks/{taskID}/status", h.updateTaskStatus)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Get("/interns", h.listInterns)
		admin.Post("/", h.createProject)
		admin.Put("/{id}", h.updateProject)
		admin.Delete("/{id}", h.deleteProject)
		admin.Post("/{projectID}/tasks", h.createTask)
		admin.Put("/{projectID}/tasks/{taskID}", h.updateTask)
		admin.Delete("/{projectID}/tasks/{taskID}", h.deleteTask)
	})
}

func (h *ProjectHandler) createProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"project": project,
	})
}

func (h *ProjectHandler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(projects),
		"projects": projects,
	})
}

func (h *ProjectHandler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"project": project,
	})
}

func (h *ProjectHandler) updateProject(w http.ResponseWriter, r *http.Request) {
	var req service.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"project": project,
	})
}

func (h *ProjectHandler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Project deleted successfully",
	})
}

func (h *ProjectHandler) createTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	project, err := h.projectService.CreateTask(r.Context(), user.ID, chi.URLParam(r, "projectID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"project": project,
	})
}

func (h *ProjectHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	project, err := h.projectService.UpdateTask(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"project": project,
	})
}

func (h *ProjectHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.projectService.DeleteTask(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task deleted successfully",
	})
}

func (h *ProjectHandler) listInterns(w http.ResponseWriter, r *http.Request) {
	interns, err := h.projectService.ListInterns(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(interns),
		"interns": interns,
	})
}

func (h *ProjectHandler) listInternTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	tasks, err := h.projectService.ListInternTasks(r.Context(), user.ID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *ProjectHandler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	task, err := h.projectService.UpdateTaskStatus(r.Context(), user.ID, chi.URLParam(r, "taskID"), model.TaskStatus(req.Status))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Status updated",
		"task":    task,
	})
}
