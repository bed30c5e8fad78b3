package service

import (
	"context"
	"fmt"

	"justhear/config"
	"justhear/infras/otel"
	listenerModel "justhear/internal/domains/listener/model"
	listenerRepo "justhear/internal/domains/listener/repository"
	reservationModel "justhear/internal/domains/reservation/model"
	reservationRepo "justhear/internal/domains/reservation/repository"
	"justhear/internal/domains/review/model"
	"justhear/internal/domains/review/model/dto"
	"justhear/internal/domains/review/repository"
	"justhear/shared"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
	"justhear/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Review interface {
	Create(ctx context.Context, req dto.CreateReviewRequest) (dto.ReviewResponse, error)
	GetByListener(ctx context.Context, listenerID string, params gDto.QueryParams) (dto.GetReviewsResponse, error)
}

type serviceImpl struct {
	repo         repository.Review
	reservations reservationRepo.Reservation
	listeners    listenerRepo.Listener
	cfg          *config.Config
	otel         otel.Otel
}

func New(repo repository.Review, reservations reservationRepo.Reservation, listeners listenerRepo.Listener, cfg *config.Config, otel otel.Otel) Review {
	return &serviceImpl{
		repo:         repo,
		reservations: reservations,
		listeners:    listeners,
		cfg:          cfg,
		otel:         otel,
	}
}

// Create records a review for a completed session. One review per
// reservation, and only from the user who sat in it.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReviewRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	reservation, err := s.reservations.Get(ctx, shared.FilterByID(req.ReservationID, reservationModel.FieldID, reservationModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation for review")

		return res, fmt.Errorf("failed to get reservation for review: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found")
	}

	if reservation.UserID != userID {
		return res, failure.Forbidden("you can only review your own sessions")
	}

	if reservation.Status != reservationModel.StatusCompleted {
		return res, failure.InvalidState(fmt.Sprintf("only completed sessions can be reviewed, got %s", reservation.Status))
	}

	exists, err := s.repo.Exist(ctx, gDto.And(gDto.Eq(model.TableName, model.FieldReservationID, req.ReservationID)))
	if err != nil {
		log.Error().Err(err).Msg("failed to check for existing review")

		return res, fmt.Errorf("failed to check for existing review: %w", err)
	}

	if exists {
		return res, failure.Conflict("this session has already been reviewed")
	}

	review := req.ToModel(userID, reservation.ListenerID)

	if err = s.repo.Insert(ctx, review); err != nil {
		return res, err
	}

	s.refreshListenerRating(ctx, reservation.ListenerID, userID)

	res.FromModel(review)

	return res, nil
}

// refreshListenerRating recomputes the denormalized rating columns on the
// listener row. Best effort: the review itself is already stored.
func (s *serviceImpl) refreshListenerRating(ctx context.Context, listenerID, userID string) {
	avg, count, err := s.repo.AggregateForListener(ctx, listenerID)
	if err != nil {
		log.Warn().Err(err).Str("listener_id", listenerID).Msg("failed to aggregate listener rating")

		return
	}

	fields := map[string]any{
		listenerModel.FieldRating:      avg,
		listenerModel.FieldRatingCount: count,
		constant.FieldModifiedAt:       timezone.Now(),
		constant.FieldModifiedBy:       userID,
	}

	filter := shared.FilterByID(listenerID, listenerModel.FieldID, listenerModel.TableName)
	if err := s.listeners.Update(ctx, fields, filter); err != nil {
		log.Warn().Err(err).Str("listener_id", listenerID).Msg("failed to refresh listener rating")
	}
}

func (s *serviceImpl) GetByListener(ctx context.Context, listenerID string, params gDto.QueryParams) (res dto.GetReviewsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByListener")
	defer scope.End()
	defer scope.TraceIfError(err)

	exists, err := s.listeners.Exist(ctx, shared.FilterByID(listenerID, listenerModel.FieldID, listenerModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check listener existence")

		return res, fmt.Errorf("failed to check listener existence: %w", err)
	}

	if !exists {
		return res, failure.NotFound("listener not found")
	}

	filter := gDto.And(gDto.Eq(model.TableName, model.FieldListenerID, listenerID))

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reviews")

		return res, fmt.Errorf("failed to count reviews: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reviews")

		return res, fmt.Errorf("failed to get reviews: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}
