package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app/internal/auth"
	"github.com/BuzzLyutic/todo-app/pkg/logger"
	"github.com/BuzzLyutic/todo-app/pkg/respond"
)

// NewRouter собирает маршруты API. /health доступен без токена.
func NewRouter(h *TaskHandler, verifier *auth.Verifier, log *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(verifier, log))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/toggle", h.Toggle)
			r.Post("/{id}/important", h.ToggleImportant)
		})

		r.Get("/stats", h.Stats)

		r.Post("/session/refresh", h.Refresh)
		r.Delete("/session", h.SignOut)
	})

	return r
}
