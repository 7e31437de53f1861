package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app/internal/auth"
	"github.com/BuzzLyutic/todo-app/internal/model"
	"github.com/BuzzLyutic/todo-app/internal/repo"
	"github.com/BuzzLyutic/todo-app/internal/service"
	"github.com/BuzzLyutic/todo-app/internal/view"
	"github.com/BuzzLyutic/todo-app/pkg/respond"
)

const maxBodyBytes = 1 << 16

type TaskHandler struct {
	sessions *service.Sessions
	logger   *zap.Logger
}

func NewTaskHandler(sessions *service.Sessions, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type listResponse struct {
	model.View
	CompletionPercent int `json:"completion_percent"`
}

type statsResponse struct {
	model.Statistics
	CompletionPercent int `json:"completion_percent"`
}

func emptyList() listResponse {
	return listResponse{View: view.Derive(nil, model.DefaultCriteria(), time.Now())}
}

// session возвращает сервис текущего пользователя. Без пользователя - (nil, nil).
func (h *TaskHandler) session(r *http.Request) (*service.TaskService, error) {
	owner, ok := auth.UserID(r.Context())
	if !ok {
		return nil, nil
	}
	return h.sessions.For(r.Context(), owner)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	svc, err := h.session(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if svc == nil { // нет пользователя - нечего показывать
		respond.JSON(w, r, http.StatusOK, emptyList())
		return
	}

	v := svc.View(criteria)
	respond.JSON(w, r, http.StatusOK, listResponse{
		View:              v,
		CompletionPercent: view.CompletionPercent(v.Statistics),
	})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	svc, err := h.session(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	stats := view.Stats(nil, time.Now())
	if svc != nil {
		stats = svc.View(model.DefaultCriteria()).Statistics
	}
	respond.JSON(w, r, http.StatusOK, statsResponse{
		Statistics:        stats,
		CompletionPercent: view.CompletionPercent(stats),
	})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	draft, err := req.draft()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	svc, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	task, err := svc.Create(r.Context(), draft)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	patch, err := parsePatch(body)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	svc, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	task, err := svc.Update(r.Context(), id, patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*service.TaskService).Toggle)
}

func (h *TaskHandler) ToggleImportant(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*service.TaskService).ToggleImportant)
}

func (h *TaskHandler) toggle(w http.ResponseWriter, r *http.Request, op func(*service.TaskService, context.Context, string) (model.Task, error)) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	svc, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	task, err := op(svc, r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	svc, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := svc.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w, r)
}

// Refresh перечитывает задачи пользователя (вход в аккаунт).
// Только что открытая сессия уже загружена, второй запрос в хранилище не нужен.
func (h *TaskHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserID(r.Context())
	if !ok {
		respond.JSON(w, r, http.StatusOK, emptyList())
		return
	}

	svc, fresh, err := h.sessions.Open(r.Context(), owner)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if !fresh {
		if _, err := svc.Refresh(r.Context(), auth.Resolver{}); err != nil {
			h.handleErrors(w, r, err)
			return
		}
	}
	v := svc.View(model.DefaultCriteria())
	respond.JSON(w, r, http.StatusOK, listResponse{
		View:              v,
		CompletionPercent: view.CompletionPercent(v.Statistics),
	})
}

// SignOut забывает локальное состояние пользователя.
func (h *TaskHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if owner, ok := auth.UserID(r.Context()); ok {
		h.sessions.Drop(owner)
	}
	respond.NoContent(w, r)
}

func (h *TaskHandler) requireSession(w http.ResponseWriter, r *http.Request) (*service.TaskService, bool) {
	svc, err := h.session(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return nil, false
	}
	if svc == nil {
		respond.Error(w, r, http.StatusUnauthorized, "sign in to change tasks")
		return nil, false
	}
	return svc, true
}

func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return "", false
	}
	return id.String(), true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled): // клиент ушёл, отвечать некому
		h.logger.Debug("request cancelled", zap.Error(err))
	case errors.Is(err, ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "task not found, reload your list")
	case errors.Is(err, service.ErrEmptyPatch):
		respond.Error(w, r, http.StatusBadRequest, "nothing to update")
	case errors.Is(err, service.ErrSignedOut):
		respond.Error(w, r, http.StatusUnauthorized, "sign in to change tasks")
	case errors.Is(err, service.ErrOwnerMismatch):
		respond.Error(w, r, http.StatusForbidden, "task belongs to another user")
	case errors.Is(err, repo.ErrorConstraint):
		respond.Error(w, r, http.StatusUnprocessableEntity, "task was rejected by the store")
	case errors.Is(err, service.ErrFetch):
		respond.Error(w, r, http.StatusBadGateway, "could not load tasks")
	case errors.Is(err, service.ErrWrite):
		respond.Error(w, r, http.StatusBadGateway, "could not save changes")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
