package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"stayhub/internal/hotels/repository"
	"stayhub/internal/hotels/service"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type HotelHandler struct {
	service service.HotelService
	log     *logger.Logger
}

func NewHotelHandler(service service.HotelService, log *logger.Logger) *HotelHandler {
	return &HotelHandler{
		service: service,
		log:     log,
	}
}

func (h *HotelHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *HotelHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	hotels, total, err := h.service.GetAll(r.Context(), filter, limit, httputil.Offset(page, limit))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, hotels, httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *HotelHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hotel, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, hotel); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *HotelHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hotel model.Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &hotel); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Hotel created successfully", hotel); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *HotelHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.HotelUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteMessage(w, "Hotel updated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *HotelHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Hotel deactivated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *HotelHandler) Stats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stats, err := h.service.GetStats(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "error", err)
	}
}

func (h *HotelHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/hotels", h.List)
	router.GET("/api/hotels/:id", h.GetByID)
	router.GET("/api/hotels/:id/stats", h.Stats)
	router.POST("/api/hotels", h.Create)
	router.PUT("/api/hotels/:id", h.Update)
	router.DELETE("/api/hotels/:id", h.Delete)
}

func parseFilter(r *http.Request) (repository.Filter, error) {
	filter := repository.Filter{
		City: r.URL.Query().Get("city"),
	}

	minPrice, err := httputil.QueryFloat(r, "minPrice")
	if err != nil {
		return filter, err
	}
	filter.MinPrice = minPrice

	maxPrice, err := httputil.QueryFloat(r, "maxPrice")
	if err != nil {
		return filter, err
	}
	filter.MaxPrice = maxPrice

	rating, err := httputil.QueryFloat(r, "rating")
	if err != nil {
		return filter, err
	}
	filter.MinRating = rating

	if amenities := r.URL.Query().Get("amenities"); amenities != "" {
		for _, a := range strings.Split(amenities, ",") {
			if a = strings.TrimSpace(a); a != "" {
				filter.Amenities = append(filter.Amenities, a)
			}
		}
	}

	return filter, nil
}
