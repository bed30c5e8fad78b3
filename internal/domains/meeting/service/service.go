package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"justhear/config"
	"justhear/infras/meeting"
	"justhear/infras/otel"
	reservationModel "justhear/internal/domains/reservation/model"
	"justhear/internal/domains/reservation/model/dto"
	reservationRepo "justhear/internal/domains/reservation/repository"
	slotModel "justhear/internal/domains/slot/model"
	slotRepo "justhear/internal/domains/slot/repository"
	"justhear/shared"
	"justhear/shared/constant"
	"justhear/shared/failure"

	"github.com/rs/zerolog/log"
)

// Binder attaches a meeting link to the slot of a confirmed reservation.
type Binder interface {
	Bind(ctx context.Context, reservationID string, req dto.BindMeetingLinkRequest) (dto.MeetingLinkResponse, error)
}

type serviceImpl struct {
	reservations reservationRepo.Reservation
	slots        slotRepo.Slot
	provider     meeting.Provider
	cfg          *config.Config
	otel         otel.Otel
}

func New(reservations reservationRepo.Reservation, slots slotRepo.Slot, provider meeting.Provider, cfg *config.Config, otel otel.Otel) Binder {
	return &serviceImpl{
		reservations: reservations,
		slots:        slots,
		provider:     provider,
		cfg:          cfg,
		otel:         otel,
	}
}

// Bind is idempotent: once a link is stored on the slot, every later call
// returns that same link without touching the provider. When two calls race,
// the slot update is first-writer-wins and the loser reads back the stored
// link.
func (s *serviceImpl) Bind(ctx context.Context, reservationID string, req dto.BindMeetingLinkRequest) (res dto.MeetingLinkResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Bind")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	reservation, err := s.reservations.Get(ctx, shared.FilterByID(reservationID, reservationModel.FieldID, reservationModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found")
	}

	if reservation.UserID != userID && role != constant.RoleAdmin && role != constant.RoleSuperAdmin && role != constant.RoleListener {
		return res, failure.Forbidden("you are not allowed to access this reservation")
	}

	if reservation.Status != reservationModel.StatusConfirmed {
		return res, failure.InvalidState(fmt.Sprintf("meeting link requires a confirmed reservation, got %s", reservation.Status))
	}

	slot, err := s.slots.Get(ctx, shared.FilterByID(reservation.SlotID, slotModel.FieldID, slotModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot")

		return res, fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return res, failure.NotFound("slot not found")
	}

	if slot.MeetingLink != nil && *slot.MeetingLink != constant.Empty {
		return boundResponse(slot), nil
	}

	provider := req.Provider
	if provider == constant.Empty {
		provider = s.cfg.External.Meeting.DefaultProvider
	}

	created, err := s.createWithRetry(ctx, provider, meeting.CreateMeetingRequest{
		ReservationID: reservation.ID,
		Topic:         "JustHear session",
		StartsAt:      slot.StartsAt(),
		DurationMin:   int(slot.EndsAt().Sub(slot.StartsAt()).Minutes()),
	})
	if err != nil {
		return res, err
	}

	bound, err := s.slots.BindMeeting(ctx, slot.ID, created.JoinURL, created.MeetingID, created.Provider, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to bind meeting link")

		return res, fmt.Errorf("failed to bind meeting link: %w", err)
	}

	if !bound {
		// Lost the bind race; the stored link is the one everyone gets.
		slot, err = s.slots.Get(ctx, shared.FilterByID(slot.ID, slotModel.FieldID, slotModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to reread slot after lost bind race")

			return res, fmt.Errorf("failed to reread slot after lost bind race: %w", err)
		}

		return boundResponse(slot), nil
	}

	return dto.MeetingLinkResponse{
		Success:     true,
		SlotID:      slot.ID,
		MeetingLink: created.JoinURL,
		MeetingID:   created.MeetingID,
		Provider:    created.Provider,
	}, nil
}

func (s *serviceImpl) createWithRetry(ctx context.Context, provider string, req meeting.CreateMeetingRequest) (res meeting.Meeting, err error) {
	attempts := s.cfg.External.Meeting.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	wait := time.Duration(s.cfg.External.Meeting.RetryWaitMillis) * time.Millisecond

	for attempt := 1; attempt <= attempts; attempt++ {
		res, err = s.provider.CreateMeeting(ctx, provider, req)
		if err == nil {
			return res, nil
		}

		if errors.Is(err, meeting.ErrUnknownProvider) {
			return res, failure.BadRequestFromString(fmt.Sprintf("unknown meeting provider: %s", provider))
		}

		log.Warn().Err(err).Int("attempt", attempt).Str("provider", provider).Msg("meeting provider call failed")

		if attempt < attempts && wait > 0 {
			select {
			case <-ctx.Done():
				return res, fmt.Errorf("meeting creation interrupted: %w", ctx.Err())
			case <-time.After(wait * time.Duration(attempt)):
			}
		}
	}

	return res, failure.ProviderError("meeting provider is unavailable, try again later")
}

func boundResponse(slot slotModel.Slot) dto.MeetingLinkResponse {
	res := dto.MeetingLinkResponse{
		Success: true,
		SlotID:  slot.ID,
	}

	if slot.MeetingLink != nil {
		res.MeetingLink = *slot.MeetingLink
	}

	if slot.MeetingID != nil {
		res.MeetingID = *slot.MeetingID
	}

	if slot.MeetingProvider != nil {
		res.Provider = *slot.MeetingProvider
	}

	return res
}
