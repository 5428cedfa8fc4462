package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"event-booking/internal/dto/request"
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// Reserve handles POST /api/bookings (protected)
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseInvalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		responseValidation(w, validationErrors)
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > 255 {
		utils.ResponseBadRequest(w, "Idempotency-Key is too long", utils.ErrorCode("invalid_input"))
		return
	}

	booking, err := h.service.Reserve(r.Context(), requester.UserID, &req, key)
	if err != nil {
		handleServiceError(w, h.log, err, "reserve")
		return
	}

	if booking.Replayed {
		utils.ResponseSuccess(w, "Booking already created", booking)
		return
	}

	utils.ResponseCreated(w, "Booking confirmed", booking)
}

// GetBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), chi.URLParam(r, "id"), requester)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles POST /api/bookings/{id}/cancel (protected)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), chi.URLParam(r, "id"), requester)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetEventBookings handles GET /api/admin/events/{id}/bookings (admin)
func (h *BookingHandler) GetEventBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetEventBookings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get event bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBookingsByDateRange handles GET /api/admin/bookings?from=&to= (admin)
func (h *BookingHandler) GetBookingsByDateRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.BookingDateRangeRequest{
		From: query.Get("from"),
		To:   query.Get("to"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		responseValidation(w, validationErrors)
		return
	}

	bookings, err := h.service.GetBookingsByDateRange(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get bookings by date range")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
