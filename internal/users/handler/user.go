package handler

import (
	"encoding/json"
	"net/http"

	"stayhub/internal/users/repository"
	"stayhub/internal/users/service"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter := repository.Filter{Role: r.URL.Query().Get("role")}
	if active := r.URL.Query().Get("active"); active != "" {
		isActive := active != "false"
		filter.IsActive = &isActive
	}

	users, total, err := h.service.GetAll(r.Context(), filter, limit, httputil.Offset(page, limit))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, users, httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *UserHandler) GetByClerkID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetByClerkID(r.Context(), ps.ByName("clerkId"))
	if err != nil {
		h.writeError(w, "GetByClerkID", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByClerkID", "error", err)
	}
}

func (h *UserHandler) UpdateByClerkID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "UpdateByClerkID", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateByClerkID(r.Context(), ps.ByName("clerkId"), &updates); err != nil {
		h.writeError(w, "UpdateByClerkID", err)
		return
	}

	if err := httputil.WriteMessage(w, "User updated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateByClerkID", "error", err)
	}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &user); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "User created successfully", user); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteMessage(w, "User updated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "User deleted successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *UserHandler) AddRecentSearch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "AddRecentSearch", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.AddRecentSearch(r.Context(), ps.ByName("id"), body.City); err != nil {
		h.writeError(w, "AddRecentSearch", err)
		return
	}

	if err := httputil.WriteMessage(w, "Search recorded", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "AddRecentSearch", "error", err)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/users", h.List)
	router.POST("/api/users", h.Create)
	router.GET("/api/users/id/:id", h.GetByID)
	router.PUT("/api/users/id/:id", h.Update)
	router.DELETE("/api/users/id/:id", h.Delete)
	router.POST("/api/users/id/:id/recent-search", h.AddRecentSearch)
	router.GET("/api/users/clerk/:clerkId", h.GetByClerkID)
	router.PUT("/api/users/clerk/:clerkId", h.UpdateByClerkID)
}
