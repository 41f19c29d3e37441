package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"stayhub/internal/bookings/repository"
	"stayhub/internal/bookings/service"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Booking created successfully", booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	bookings, total, err := h.service.GetAll(r.Context(), filter, limit, httputil.Offset(page, limit))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) GetByReference(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByReference(r.Context(), ps.ByName("reference"))
	if err != nil {
		h.writeError(w, "GetByReference", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByReference", "error", err)
	}
}

func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	bookings, total, err := h.service.GetByUser(r.Context(), ps.ByName("userId"), limit, httputil.Offset(page, limit))
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByUser", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteMessage(w, "Booking updated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

// Cancel accepts an optional JSON body carrying the cancellation reason.
// A missing or malformed body still cancels.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), body.Reason)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, "Booking cancelled successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/bookings", h.List)
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings/id/:id", h.GetByID)
	router.PUT("/api/bookings/id/:id", h.Update)
	router.DELETE("/api/bookings/id/:id", h.Cancel)
	router.GET("/api/bookings/reference/:reference", h.GetByReference)
	router.GET("/api/bookings/user/:userId", h.ListByUser)
}

func parseFilter(r *http.Request) (repository.Filter, error) {
	query := r.URL.Query()
	filter := repository.Filter{
		UserID:  query.Get("user"),
		HotelID: query.Get("hotel"),
		RoomID:  query.Get("room"),
		Status:  query.Get("status"),
	}

	if from := query.Get("checkInFrom"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, apperrors.InvalidInput("checkInFrom must be an RFC 3339 timestamp")
		}
		filter.CheckInFrom = &t
	}
	if until := query.Get("checkInUntil"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return filter, apperrors.InvalidInput("checkInUntil must be an RFC 3339 timestamp")
		}
		filter.CheckInUntil = &t
	}
	if until := query.Get("checkOutUntil"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return filter, apperrors.InvalidInput("checkOutUntil must be an RFC 3339 timestamp")
		}
		filter.CheckOutUntil = &t
	}

	return filter, nil
}
