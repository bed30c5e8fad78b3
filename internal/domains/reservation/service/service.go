package service

import (
	"context"
	"fmt"
	"time"

	"justhear/config"
	"justhear/infras/kafka"
	"justhear/infras/otel"
	"justhear/internal/domains/reservation/model"
	"justhear/internal/domains/reservation/model/dto"
	"justhear/internal/domains/reservation/repository"
	slotModel "justhear/internal/domains/slot/model"
	slotRepo "justhear/internal/domains/slot/repository"
	slotService "justhear/internal/domains/slot/service"
	"justhear/shared"
	"justhear/shared/cache"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
	"justhear/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationClosed    = "reservation.closed"
)

type Reservation interface {
	Reserve(ctx context.Context, slotID string, req dto.ReserveSlotRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams) (dto.GetReservationsResponse, error)
	ConfirmPayment(ctx context.Context, id string, req dto.ConfirmPaymentRequest) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelReservationRequest) (dto.ReservationResponse, error)
	Close(ctx context.Context, id, status string) (dto.ReservationResponse, error)
}

type serviceImpl struct {
	repo     repository.Reservation
	slotRepo slotRepo.Slot
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	kafka    kafka.Client
}

func New(repo repository.Reservation, slotRepo slotRepo.Slot, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, kafka kafka.Client) Reservation {
	return &serviceImpl{
		repo:     repo,
		slotRepo: slotRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		kafka:    kafka,
	}
}

// Reserve claims an available slot for the requesting user. The claim and
// the pending reservation commit together, so a slot can never carry two
// active reservations no matter how many requests race for it.
func (s *serviceImpl) Reserve(ctx context.Context, slotID string, req dto.ReserveSlotRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reserve")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, failure.Unauthorized("missing authenticated user")
	}

	slot, err := s.slotRepo.Get(ctx, shared.FilterByID(slotID, slotModel.FieldID, slotModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot")

		return res, fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return res, failure.NotFound("slot not found")
	}

	if slot.EffectiveStatus(timezone.Now()) != slotModel.StatusAvailable {
		return res, failure.SlotUnavailable
	}

	reservation := dto.NewReservation(slot, userID)

	if err = s.repo.ReserveSlot(ctx, reservation); err != nil {
		return res, err
	}

	s.invalidateSlotListings(ctx)
	s.publish(ctx, EventReservationCreated, reservation)

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	reservation, err := s.ownedReservation(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := gDto.And(gDto.Eq(model.TableName, model.FieldUserID, userID))

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

// ConfirmPayment moves a pending reservation to confirmed and records the
// payment transaction. The guarded update keeps a double confirmation or a
// confirm-after-cancel from overwriting anything.
func (s *serviceImpl) ConfirmPayment(ctx context.Context, id string, req dto.ConfirmPaymentRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConfirmPayment")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	reservation, err := s.ownedReservation(ctx, id)
	if err != nil {
		return res, err
	}

	if reservation.Status != model.StatusPending {
		return res, failure.InvalidState(fmt.Sprintf("reservation cannot be confirmed from %s", reservation.Status))
	}

	ok, err := s.repo.Confirm(ctx, id, req.TransactionID, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to confirm reservation")

		return res, fmt.Errorf("failed to confirm reservation: %w", err)
	}

	if !ok {
		return res, failure.InvalidState("reservation status changed concurrently, retry with fresh state")
	}

	reservation.Status = model.StatusConfirmed
	reservation.PaymentStatus = model.PaymentStatusPaid
	reservation.TransactionID = &req.TransactionID

	s.publish(ctx, EventReservationConfirmed, reservation)

	res.FromModel(reservation)

	return res, nil
}

// Cancel releases the slot back to the pool when the session has not
// started. Users may cancel up to the configured cutoff before the start
// time; admins are exempt from the cutoff.
func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	reservation, err := s.ownedReservation(ctx, id)
	if err != nil {
		return res, err
	}

	if !model.CanTransition(reservation.Status, model.StatusCancelled) {
		return res, failure.InvalidState(fmt.Sprintf("reservation cannot be cancelled from %s", reservation.Status))
	}

	slot, err := s.slotRepo.Get(ctx, shared.FilterByID(reservation.SlotID, slotModel.FieldID, slotModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot for cancellation")

		return res, fmt.Errorf("failed to get slot for cancellation: %w", err)
	}

	now := timezone.Now()

	if role != constant.RoleAdmin && role != constant.RoleSuperAdmin {
		cutoff := time.Duration(s.cfg.Booking.CancelCutoffMinutes) * time.Minute
		if slot.ID != constant.Empty && now.After(slot.StartsAt().Add(-cutoff)) {
			return res, failure.TooLate
		}
	}

	releaseSlot := slot.ID != constant.Empty && !slot.IsPast(now)

	if err = s.repo.CancelWithRelease(ctx, reservation, req.Reason, releaseSlot, userID); err != nil {
		return res, err
	}

	reservation.Status = model.StatusCancelled
	reservation.CancelledAt = &now

	if req.Reason != constant.Empty {
		reservation.CancelReason = &req.Reason
	}

	s.invalidateSlotListings(ctx)
	s.publish(ctx, EventReservationCancelled, reservation)

	res.FromModel(reservation)

	return res, nil
}

// Close finishes a confirmed reservation as completed or no_show. Only the
// listener of the session or an admin may close it.
func (s *serviceImpl) Close(ctx context.Context, id, status string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Close")
	defer scope.End()
	defer scope.TraceIfError(err)

	if status != model.StatusCompleted && status != model.StatusNoShow {
		return res, failure.BadRequestFromString("close status must be completed or no_show")
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found")
	}

	if !model.CanTransition(reservation.Status, status) {
		return res, failure.InvalidState(fmt.Sprintf("reservation cannot move from %s to %s", reservation.Status, status))
	}

	if err = s.repo.CloseWithSlot(ctx, reservation, status, userID); err != nil {
		return res, err
	}

	reservation.Status = status

	s.publish(ctx, EventReservationClosed, reservation)

	res.FromModel(reservation)

	return res, nil
}

// ownedReservation loads a reservation and enforces that the caller owns it
// or is an admin.
func (s *serviceImpl) ownedReservation(ctx context.Context, id string) (model.Reservation, error) {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound("reservation not found")
	}

	if reservation.UserID != userID && role != constant.RoleAdmin && role != constant.RoleSuperAdmin {
		return reservation, failure.Forbidden("you are not allowed to access this reservation")
	}

	return reservation, nil
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, reservation model.Reservation) {
	event := dto.NewReservationEvent(eventType, reservation)

	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{Key: reservation.ID, Value: event}
		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Reservations, message); err != nil {
			log.Error().Err(err).Str("event", eventType).Msg("failed to publish reservation event")
		}
	}()
}

func (s *serviceImpl) invalidateSlotListings(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, slotService.CacheAvailableSlot)
		shared.InvalidateCaches(c, s.cache, slotService.CacheCountSlot)
	}()
}
