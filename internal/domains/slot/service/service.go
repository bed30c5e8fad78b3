package service

import (
	"context"
	"fmt"
	"time"

	"justhear/config"
	"justhear/infras/otel"
	listenerModel "justhear/internal/domains/listener/model"
	listenerRepo "justhear/internal/domains/listener/repository"
	"justhear/internal/domains/slot/model"
	"justhear/internal/domains/slot/model/dto"
	"justhear/internal/domains/slot/repository"
	"justhear/shared"
	"justhear/shared/cache"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
	"justhear/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Cache key prefixes are exported so the reservation flow can invalidate
// availability listings after it claims or releases a slot.
const (
	CacheAvailableSlot = "slot:available"
	CacheCountSlot     = "slot:count"
)

type Slot interface {
	Create(ctx context.Context, req dto.CreateSlotRequest) error
	Get(ctx context.Context, id string) (dto.SlotResponse, error)
	GetAvailable(ctx context.Context, req gDto.QueryParams, date, dateFrom, dateTo, listenerID string) (dto.GetAvailableSlotsResponse, error)
	Transition(ctx context.Context, id string, req dto.TransitionSlotRequest) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Slot
	listenerRepo listenerRepo.Listener
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(repo repository.Slot, listenerRepo listenerRepo.Listener, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Slot {
	return &serviceImpl{
		repo:         repo,
		listenerRepo: listenerRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSlotRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	slot := req.ToModel(userID, s.cfg.Booking.DefaultCurrency)

	if err = s.validateRange(slot); err != nil {
		return err
	}

	listener, err := s.listenerRepo.Get(ctx, shared.FilterByID(req.ListenerID, listenerModel.FieldID, listenerModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get listener for slot")

		return fmt.Errorf("failed to get listener for slot: %w", err)
	}

	if listener.ID == constant.Empty {
		return failure.NotFound("listener not found")
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if listener.UserID != userID && role != constant.RoleAdmin && role != constant.RoleSuperAdmin {
		return failure.Forbidden("you are not allowed to publish slots for this listener")
	}

	if err = s.repo.InsertIfNoOverlap(ctx, slot); err != nil {
		return err
	}

	s.invalidateListings(ctx)

	return nil
}

func (s *serviceImpl) validateRange(slot model.Slot) error {
	if slot.Date.IsZero() {
		return failure.BadRequestFromString("invalid slot date")
	}

	starts := slot.StartsAt()
	ends := slot.EndsAt()

	if starts.IsZero() || ends.IsZero() {
		return failure.BadRequestFromString("invalid slot time range")
	}

	if !ends.After(starts) {
		return failure.InvalidRange
	}

	minutes := int(ends.Sub(starts).Minutes())
	if minutes < s.cfg.Booking.MinSlotMinutes {
		return failure.BadRequestFromString(fmt.Sprintf("slot must be at least %d minutes long", s.cfg.Booking.MinSlotMinutes))
	}

	if !ends.After(timezone.Now()) {
		return failure.BadRequestFromString("slot cannot be published in the past")
	}

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot")

		return res, fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return res, failure.NotFound("slot not found") // nolint:wrapcheck
	}

	now := timezone.Now()
	s.completeLazily(ctx, slot, now)

	res.FromModel(slot, now)

	return res, nil
}

// completeLazily persists the reserved-to-completed transition for slots
// whose end time has passed. Readers already see the completed status
// through EffectiveStatus, so a failure here only delays the write.
func (s *serviceImpl) completeLazily(ctx context.Context, slot model.Slot, now time.Time) {
	if slot.Status != model.StatusReserved || !slot.IsPast(now) {
		return
	}

	if _, err := s.repo.Transition(ctx, slot.ID, model.StatusReserved, model.StatusCompleted, "system"); err != nil {
		log.Warn().Err(err).Str("slot_id", slot.ID).Msg("failed to persist lazy slot completion")
	}
}

func (s *serviceImpl) GetAvailable(ctx context.Context, req gDto.QueryParams, date, dateFrom, dateTo, listenerID string) (res dto.GetAvailableSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAvailable")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter, err := s.availableFilter(date, dateFrom, dateTo, listenerID)
	if err != nil {
		return res, err
	}

	// Listings are always chronological regardless of the requested sort.
	req.SortBy = model.FieldDate + ", " + model.FieldStartTime
	req.SortDir = gDto.SortDirAsc

	cacheKey := shared.BuildCacheKeyWithQuery(CacheAvailableSlot, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for available slots")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get available slots")

		return res, fmt.Errorf("failed to get available slots: %w", err)
	}

	res.FromModels(models, req, total)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save available slots to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(CacheCountSlot, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count slots")

		return res, fmt.Errorf("failed to count slots: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save slot count to cache")
		}
	}()

	return res, nil
}

// availableFilter restricts listings to available slots that have not yet
// ended. Past slots stay out of the listing even before any row is updated.
func (s *serviceImpl) availableFilter(date, dateFrom, dateTo, listenerID string) (gDto.FilterGroup, error) {
	now := timezone.Now()
	today := now.Format(constant.DateOnlyFormat)
	clock := now.Format(constant.TimeOnlyFormat)

	filters := []any{
		gDto.Eq(model.TableName, model.FieldStatus, model.StatusAvailable),
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{
					ArgName:  "date_after",
					Field:    model.FieldDate,
					Operator: gDto.FilterOperatorGreater,
					Value:    today,
					Table:    model.TableName,
				},
				gDto.FilterGroup{
					Operator: gDto.FilterGroupOperatorAnd,
					Filters: []any{
						gDto.Filter{
							ArgName:  "date_today",
							Field:    model.FieldDate,
							Operator: gDto.FilterOperatorEq,
							Value:    today,
							Table:    model.TableName,
						},
						gDto.Filter{
							ArgName:  "clock_now",
							Field:    model.FieldStartTime,
							Operator: gDto.FilterOperatorGreater,
							Value:    clock,
							Table:    model.TableName,
						},
					},
				},
			},
		},
	}

	for _, rng := range []struct {
		value    string
		argName  string
		operator string
	}{
		{date, "date_eq", gDto.FilterOperatorEq},
		{dateFrom, "date_from", gDto.FilterOperatorGreaterEq},
		{dateTo, "date_to", gDto.FilterOperatorLessEq},
	} {
		if rng.value == constant.Empty {
			continue
		}

		if _, err := timezone.Parse(constant.DateOnlyFormat, rng.value); err != nil {
			return gDto.FilterGroup{}, failure.BadRequestFromString("invalid date filter, expected YYYY-MM-DD")
		}

		filters = append(filters, gDto.Filter{
			ArgName:  rng.argName,
			Field:    model.FieldDate,
			Operator: rng.operator,
			Value:    rng.value,
			Table:    model.TableName,
		})
	}

	if listenerID != constant.Empty {
		filters = append(filters, gDto.Eq(model.TableName, model.FieldListenerID, listenerID))
	}

	return gDto.And(filters...), nil
}

func (s *serviceImpl) Transition(ctx context.Context, id string, req dto.TransitionSlotRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Transition")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot")

		return fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return failure.NotFound("slot not found")
	}

	if !model.CanTransition(slot.Status, req.Status) {
		return failure.InvalidState(fmt.Sprintf("slot cannot move from %s to %s", slot.Status, req.Status))
	}

	ok, err := s.repo.Transition(ctx, id, slot.Status, req.Status, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to transition slot")

		return fmt.Errorf("failed to transition slot: %w", err)
	}

	if !ok {
		return failure.InvalidState("slot status changed concurrently, retry with fresh state")
	}

	s.invalidateListings(ctx)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot")

		return fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return failure.NotFound("slot not found")
	}

	if slot.Status == model.StatusReserved {
		return failure.InvalidState("reserved slots cannot be deleted, cancel the reservation first")
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete slot")

		return fmt.Errorf("failed to delete slot: %w", err)
	}

	s.invalidateListings(ctx)

	return nil
}

func (s *serviceImpl) invalidateListings(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, CacheAvailableSlot)
		shared.InvalidateCaches(c, s.cache, CacheCountSlot)
	}()
}
