package adaptor

import (
	"encoding/json"
	"net/http"

	"event-booking/internal/data/entity"
	"event-booking/internal/dto/request"
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

// GetAvailability handles GET /api/events/{id}/availability
func (h *EventHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.service.GetAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// CreateEvent handles POST /api/admin/events (admin)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseInvalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		responseValidation(w, validationErrors)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create event")
		return
	}

	utils.ResponseCreated(w, "Event created", event)
}

// UpdatePrice handles PUT /api/admin/events/{id}/price (admin)
func (h *EventHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseInvalidBody(w)
		return
	}

	event, err := h.service.UpdatePrice(r.Context(), chi.URLParam(r, "id"), req.UnitPrice)
	if err != nil {
		handleServiceError(w, h.log, err, "update price")
		return
	}

	utils.ResponseSuccess(w, "Price updated", event)
}

// UpdateCapacity handles PUT /api/admin/events/{id}/capacity (admin)
func (h *EventHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateCapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseInvalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		responseValidation(w, validationErrors)
		return
	}

	event, err := h.service.UpdateCapacity(r.Context(), chi.URLParam(r, "id"), req.Capacity)
	if err != nil {
		handleServiceError(w, h.log, err, "update capacity")
		return
	}

	utils.ResponseSuccess(w, "Capacity updated", event)
}

// UpdateStatus handles PUT /api/admin/events/{id}/status (admin)
func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateEventStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseInvalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		responseValidation(w, validationErrors)
		return
	}

	event, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), entity.EventStatus(req.Status))
	if err != nil {
		handleServiceError(w, h.log, err, "update status")
		return
	}

	utils.ResponseSuccess(w, "Status updated", event)
}
