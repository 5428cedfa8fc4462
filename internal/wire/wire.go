package wire

import (
	"context"
	"net/http"
	"time"

	"event-booking/internal/adaptor"
	"event-booking/internal/data/repository"
	"event-booking/internal/usecase"
	"event-booking/pkg/database"
	"event-booking/pkg/middleware"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the assembled HTTP router.
type App struct {
	Router *chi.Mux
}

// Pinger is the health check dependency; both may be nil.
type Pinger struct {
	DB    database.PgxIface
	Redis *redis.Client
}

// Wiring builds services, handlers and routes.
func Wiring(repo *repository.Repository, deps Pinger, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, repo, deps, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	deps Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	wireAuth(r, handler.Auth, repo, logger)
	wireEvent(r, handler.Event, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)

	r.Get("/health", healthHandler(deps, logger))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(deps Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if deps.DB != nil {
			checks["database"] = "ok"
			if err := deps.DB.Ping(ctx); err != nil {
				logger.Warn("Health check: database unreachable", zap.Error(err))
				checks["database"] = "unreachable"
				healthy = false
			}
		}

		if deps.Redis != nil {
			checks["redis"] = "ok"
			if err := database.RedisHealthCheck(ctx, deps.Redis); err != nil {
				logger.Warn("Health check: redis unreachable", zap.Error(err))
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		if !healthy {
			utils.ResponseServiceUnavailable(w, "Degraded", checks)
			return
		}

		utils.ResponseSuccess(w, "OK", checks)
	}
}
