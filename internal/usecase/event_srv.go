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
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventService interface {
	GetAvailability(ctx context.Context, eventID string) (*response.AvailabilityResponse, error)

	// Admin
	CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error)
	UpdatePrice(ctx context.Context, eventID string, price decimal.Decimal) (*response.EventResponse, error)
	UpdateCapacity(ctx context.Context, eventID string, capacity int) (*response.EventResponse, error)
	UpdateStatus(ctx context.Context, eventID string, status entity.EventStatus) (*response.EventResponse, error)
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// GetAvailability is an unlocked snapshot; a later reserve may still fail.
func (s *eventService) GetAvailability(ctx context.Context, eventID string) (*response.AvailabilityResponse, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.repo.Booking.SumConfirmedByEventID(ctx, event.ID)
	if err != nil {
		s.log.Error("Failed to sum confirmed tickets", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("availability of event %s: %w", eventID, err)
	}

	return &response.AvailabilityResponse{
		EventID:   event.ID.String(),
		Capacity:  event.Capacity,
		Confirmed: confirmed,
		Remaining: max(0, event.Capacity-confirmed),
		UnitPrice: event.UnitPrice.StringFixed(2),
		Bookable:  event.IsBookable(s.now()),
	}, nil
}

func (s *eventService) CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	if err := validatePrice(req.UnitPrice); err != nil {
		return nil, err
	}

	status := entity.EventStatus(req.Status)
	if status == "" {
		status = entity.EventStatusDraft
	}

	now := s.now()
	event := &entity.Event{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:     req.Title,
		StartsAt:  req.StartsAt.UTC(),
		Capacity:  req.Capacity,
		UnitPrice: req.UnitPrice,
		Status:    status,
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("title", event.Title),
		zap.Int("capacity", event.Capacity),
		zap.String("unit_price", event.UnitPrice.StringFixed(2)),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

// UpdatePrice changes the listed price only; existing bookings keep theirs.
func (s *eventService) UpdatePrice(ctx context.Context, eventID string, price decimal.Decimal) (*response.EventResponse, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	if err := s.repo.Event.UpdatePrice(ctx, id, price, s.now()); err != nil {
		return nil, s.mapEventError(eventID, "update price", err)
	}

	s.log.Info("Event price updated", zap.String("event_id", eventID), zap.String("unit_price", price.StringFixed(2)))
	return s.eventResponse(ctx, eventID)
}

// UpdateCapacity runs under the same event lock as reservations. Shrinking
// below the confirmed total fails with ErrCapacityConflict.
func (s *eventService) UpdateCapacity(ctx context.Context, eventID string, capacity int) (*response.EventResponse, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	if capacity < 1 {
		return nil, invalidInput("capacity must be at least 1")
	}

	var updated entity.Event
	err = s.repo.Booking.LockEvent(ctx, id, func(ctx context.Context, ledger repository.EventLedger) error {
		confirmed, err := ledger.ConfirmedTickets(ctx)
		if err != nil {
			return err
		}
		if capacity < confirmed {
			return fmt.Errorf("%w: capacity %d is below %d confirmed tickets", ErrCapacityConflict, capacity, confirmed)
		}

		now := s.now()
		if err := ledger.SetCapacity(ctx, capacity, now); err != nil {
			return err
		}

		updated = *ledger.Event()
		updated.Capacity = capacity
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCapacityConflict) {
			s.log.Warn("Capacity change rejected", zap.String("event_id", eventID), zap.Error(err))
			return nil, err
		}
		return nil, s.mapEventError(eventID, "update capacity", err)
	}

	s.log.Info("Event capacity updated", zap.String("event_id", eventID), zap.Int("capacity", capacity))

	resp := response.EventToResponse(&updated)
	return &resp, nil
}

func (s *eventService) UpdateStatus(ctx context.Context, eventID string, status entity.EventStatus) (*response.EventResponse, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}

	switch status {
	case entity.EventStatusDraft, entity.EventStatusPublished, entity.EventStatusCancelled:
	default:
		return nil, invalidInput("unknown event status %q", status)
	}

	if err := s.repo.Event.UpdateStatus(ctx, id, status, s.now()); err != nil {
		return nil, s.mapEventError(eventID, "update status", err)
	}

	s.log.Info("Event status updated", zap.String("event_id", eventID), zap.String("status", string(status)))
	return s.eventResponse(ctx, eventID)
}

func (s *eventService) findEvent(ctx context.Context, eventID string) (*entity.Event, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find event", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("find event %s: %w", eventID, err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}

	return event, nil
}

func (s *eventService) eventResponse(ctx context.Context, eventID string) (*response.EventResponse, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) mapEventError(eventID, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	case errors.Is(err, repository.ErrTransient), isTimeout(err):
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	default:
		s.log.Error("Failed to "+op, zap.Error(err), zap.String("event_id", eventID))
		return fmt.Errorf("%s of event %s: %w", op, eventID, err)
	}
}

func parseEventID(eventID string) (uuid.UUID, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return uuid.Nil, invalidInput("invalid event ID format %s", eventID)
	}
	return id, nil
}
