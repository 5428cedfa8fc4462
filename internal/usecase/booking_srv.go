package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/metrics"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Requester is the authenticated caller of a booking operation.
type Requester struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (r Requester) IsAdmin() bool {
	return r.Role == entity.RoleAdmin
}

func (r Requester) canAccess(booking *entity.Booking) bool {
	return r.IsAdmin() || booking.OwnedBy(r.UserID)
}

type BookingService interface {
	// Reserve atomically checks remaining capacity and records a confirmed booking.
	// A non-empty idempotencyKey makes repeats return the first booking.
	Reserve(ctx context.Context, userID uuid.UUID, req *request.ReserveRequest, idempotencyKey string) (*response.ReservationResponse, error)
	CancelBooking(ctx context.Context, bookingID string, requester Requester) (*response.BookingResponse, error)

	GetBooking(ctx context.Context, bookingID string, requester Requester) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Admin
	GetEventBookings(ctx context.Context, eventID string) ([]response.BookingResponse, error)
	GetBookingsByDateRange(ctx context.Context, req *request.BookingDateRangeRequest) ([]response.BookingResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	config utils.BookingConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewBookingService(repo *repository.Repository, config utils.BookingConfig, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "booking")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) Reserve(ctx context.Context, userID uuid.UUID, req *request.ReserveRequest, idempotencyKey string) (*response.ReservationResponse, error) {
	start := time.Now()
	resp, err := s.reserve(ctx, userID, req, idempotencyKey)
	metrics.TrackReservation(reservationOutcome(resp, err), time.Since(start))
	return resp, err
}

func (s *bookingService) reserve(ctx context.Context, userID uuid.UUID, req *request.ReserveRequest, idempotencyKey string) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reserve validation failed", zap.Any("errors", errs))
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, invalidInput("invalid event ID format %s", req.EventID)
	}

	useKey := idempotencyKey != "" && s.repo.Idempotency != nil
	if useKey {
		existingID, claimed, err := s.repo.Idempotency.Claim(ctx, userID, idempotencyKey)
		if err != nil {
			s.log.Warn("Failed to claim idempotency key",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
			return nil, fmt.Errorf("%w: %w", ErrRetryable, err)
		}
		if !claimed {
			return s.replay(ctx, existingID, eventID)
		}
	}

	var (
		booking   *entity.Booking
		remaining int
	)
	err = s.retry(ctx, "reserve", metrics.ReserveRetries.Inc, func() error {
		var err error
		booking, remaining, err = s.reserveOnce(ctx, eventID, userID, req.TicketCount)
		return err
	})

	if useKey {
		// The request context may already be done; key bookkeeping must still land.
		keyCtx := context.WithoutCancel(ctx)
		if err != nil {
			if relErr := s.repo.Idempotency.Release(keyCtx, userID, idempotencyKey); relErr != nil {
				s.log.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		} else if cErr := s.repo.Idempotency.Complete(keyCtx, userID, idempotencyKey, booking.ID); cErr != nil {
			s.log.Warn("Failed to complete idempotency key",
				zap.Error(cErr),
				zap.String("booking_id", booking.ID.String()),
			)
		}
	}

	if err != nil {
		return nil, s.reserveError(eventID, req.TicketCount, err)
	}

	s.log.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("event_id", eventID.String()),
		zap.Int("tickets", booking.TicketCount),
		zap.String("total", booking.TotalPrice.StringFixed(2)),
		zap.Int("remaining", remaining),
	)

	return &response.ReservationResponse{
		BookingResponse: response.BookingToResponse(booking),
		Remaining:       remaining,
	}, nil
}

// reserveOnce is one check-and-commit cycle under the event lock.
func (s *bookingService) reserveOnce(ctx context.Context, eventID, userID uuid.UUID, tickets int) (*entity.Booking, int, error) {
	var (
		booking   *entity.Booking
		remaining int
	)

	err := s.repo.Booking.LockEvent(ctx, eventID, func(ctx context.Context, ledger repository.EventLedger) error {
		event := ledger.Event()
		now := s.now()

		if !event.IsBookable(now) {
			return fmt.Errorf("event %s is not open for booking: %w", eventID, ErrNotFound)
		}

		confirmed, err := ledger.ConfirmedTickets(ctx)
		if err != nil {
			return err
		}

		available := event.Capacity - confirmed
		if available < tickets {
			return &CapacityError{Requested: tickets, Remaining: max(0, available)}
		}

		id := uuid.New()
		price := NewPriceSnapshot(event.UnitPrice, tickets)
		b := &entity.Booking{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        id,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Reference:   utils.GenerateBookingReference(now, id),
			EventID:     event.ID,
			UserID:      userID,
			TicketCount: tickets,
			UnitPrice:   price.UnitPrice,
			TotalPrice:  price.Total,
			Status:      entity.BookingStatusConfirmed,
		}

		if err := ledger.InsertBooking(ctx, b); err != nil {
			return err
		}

		booking = b
		remaining = available - tickets
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return booking, remaining, nil
}

func (s *bookingService) replay(ctx context.Context, bookingID, eventID uuid.UUID) (*response.ReservationResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find replayed booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("replayed booking %s: %w", bookingID, ErrNotFound)
	}
	if booking.EventID != eventID {
		return nil, invalidInput("idempotency key was used for a different event")
	}

	resp := &response.ReservationResponse{
		BookingResponse: response.BookingToResponse(booking),
		Replayed:        true,
	}

	if event, err := s.repo.Event.FindByID(ctx, eventID); err == nil && event != nil {
		if confirmed, err := s.repo.Booking.SumConfirmedByEventID(ctx, eventID); err == nil {
			resp.Remaining = max(0, event.Capacity-confirmed)
		}
	}

	s.log.Info("Reservation replayed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event_id", eventID.String()),
	)

	return resp, nil
}

func (s *bookingService) reserveError(eventID uuid.UUID, tickets int, err error) error {
	var capErr *CapacityError

	switch {
	case errors.As(err, &capErr):
		s.log.Info("Reservation rejected, not enough capacity",
			zap.String("event_id", eventID.String()),
			zap.Int("requested", tickets),
			zap.Int("remaining", capErr.Remaining),
		)
		return err
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRetryable):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	case isTimeout(err):
		s.log.Warn("Reservation timed out", zap.String("event_id", eventID.String()), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	default:
		s.log.Error("Failed to reserve", zap.String("event_id", eventID.String()), zap.Error(err))
		return fmt.Errorf("reserve event %s: %w", eventID, err)
	}
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, requester Requester) (*response.BookingResponse, error) {
	resp, alreadyCancelled, err := s.cancel(ctx, bookingID, requester)
	outcome := cancellationOutcome(err)
	if alreadyCancelled {
		outcome = metrics.OutcomeAlreadyFinal
	}
	metrics.TrackCancellation(outcome)
	return resp, err
}

func (s *bookingService) cancel(ctx context.Context, bookingID string, requester Requester) (*response.BookingResponse, bool, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, false, invalidInput("invalid booking ID format %s", bookingID)
	}

	var (
		result           entity.Booking
		alreadyCancelled bool
	)

	err = s.retry(ctx, "cancel", nil, func() error {
		return s.repo.Booking.LockBooking(ctx, id, func(ctx context.Context, ledger repository.BookingLedger) error {
			booking := ledger.Booking()

			if !requester.canAccess(booking) {
				return fmt.Errorf("booking %s: %w", id, ErrForbidden)
			}

			if !booking.Cancel(s.now()) {
				alreadyCancelled = true
				result = *booking
				return nil
			}

			if err := ledger.SaveStatus(ctx); err != nil {
				return err
			}

			result = *booking
			return nil
		})
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrForbidden):
		s.log.Warn("Cancel denied",
			zap.String("booking_id", bookingID),
			zap.String("requester", requester.UserID.String()),
		)
		return nil, false, err
	case errors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	case errors.Is(err, ErrRetryable):
		return nil, false, err
	case isTimeout(err):
		return nil, false, fmt.Errorf("%w: %w", ErrRetryable, err)
	default:
		s.log.Error("Failed to cancel booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, false, fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	if alreadyCancelled {
		s.log.Info("Booking already cancelled", zap.String("booking_id", bookingID))
	} else {
		s.log.Info("Booking cancelled",
			zap.String("booking_id", bookingID),
			zap.String("event_id", result.EventID.String()),
			zap.Int("released", result.TicketCount),
		)
	}

	resp := response.BookingToResponse(&result)
	return &resp, alreadyCancelled, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string, requester Requester) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalidInput("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	if !requester.canAccess(booking) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrForbidden)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get bookings of user %s: %w", userID, err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("count bookings of user %s: %w", userID, err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetEventBookings(ctx context.Context, eventID string) ([]response.BookingResponse, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, invalidInput("invalid event ID format %s", eventID)
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", eventID, err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}

	bookings, err := s.repo.Booking.FindByEventID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get event bookings", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("get bookings of event %s: %w", eventID, err)
	}

	return response.BookingsToResponse(bookings), nil
}

// GetBookingsByDateRange lists bookings created in [from, to). A bare date
// for to covers that whole day.
func (s *bookingService) GetBookingsByDateRange(ctx context.Context, req *request.BookingDateRangeRequest) ([]response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	from, err := utils.ParseDate(req.From)
	if err != nil {
		return nil, invalidInput("invalid from date %q", req.From)
	}
	to, err := utils.ParseDate(req.To)
	if err != nil {
		return nil, invalidInput("invalid to date %q", req.To)
	}
	if len(req.To) == len(time.DateOnly) {
		to = to.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return nil, invalidInput("to must be after from")
	}

	bookings, err := s.repo.Booking.FindByDateRange(ctx, from, to)
	if err != nil {
		s.log.Error("Failed to get bookings by date range",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("get bookings between %s and %s: %w", req.From, req.To, err)
	}

	return response.BookingsToResponse(bookings), nil
}

// retry reruns fn while it fails with a transient ledger error, sleeping a
// linearly growing backoff between attempts.
func (s *bookingService) retry(ctx context.Context, op string, onRetry func(), fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, repository.ErrTransient) {
			return err
		}

		if attempt >= s.config.MaxRetries {
			s.log.Warn("Retries exhausted", zap.String("operation", op), zap.Int("attempts", attempt+1), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrRetryable, err)
		}

		if onRetry != nil {
			onRetry()
		}
		s.log.Debug("Retrying after transient error", zap.String("operation", op), zap.Int("attempt", attempt+1), zap.Error(err))

		timer := time.NewTimer(time.Duration(attempt+1) * s.config.RetryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrRetryable, ctx.Err())
		case <-timer.C:
		}
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func reservationOutcome(resp *response.ReservationResponse, err error) string {
	var capErr *CapacityError

	switch {
	case err == nil && resp != nil && resp.Replayed:
		return metrics.OutcomeReplayed
	case err == nil:
		return metrics.OutcomeConfirmed
	case errors.As(err, &capErr):
		return metrics.OutcomeCapacity
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrRetryable):
		return metrics.OutcomeRetryable
	default:
		return metrics.OutcomeError
	}
}

func cancellationOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCancelled
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, ErrRetryable):
		return metrics.OutcomeRetryable
	default:
		return metrics.OutcomeError
	}
}
