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

func wireEvent(
	r chi.Router,
	eventHandler *adaptor.EventHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/events/{id}/availability", eventHandler.GetAvailability)

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(repo.User, log))
		if config.Booking.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(config.Booking.RequestTimeout))
		}

		r.Post("/api/admin/events", eventHandler.CreateEvent)
		r.Put("/api/admin/events/{id}/price", eventHandler.UpdatePrice)
		r.Put("/api/admin/events/{id}/capacity", eventHandler.UpdateCapacity)
		r.Put("/api/admin/events/{id}/status", eventHandler.UpdateStatus)
	})
}
