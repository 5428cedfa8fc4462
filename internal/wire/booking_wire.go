package wire

import (
	"event-booking/internal/adaptor"
	"event-booking/internal/data/repository"
	"event-booking/pkg/middleware"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		if config.Booking.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(config.Booking.RequestTimeout))
		}

		r.Post("/api/bookings", bookingHandler.Reserve)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Get("/api/admin/events/{id}/bookings", bookingHandler.GetEventBookings)
		r.Get("/api/admin/bookings", bookingHandler.GetBookingsByDateRange)
	})
}
