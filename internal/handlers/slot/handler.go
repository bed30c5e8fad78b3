package slot

import (
	"net/http"

	"justhear/infras/otel"
	reservationDto "justhear/internal/domains/reservation/model/dto"
	reservationService "justhear/internal/domains/reservation/service"
	"justhear/internal/domains/slot/model/dto"
	"justhear/internal/domains/slot/service"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/validator"
	"justhear/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service      service.Slot
	reservations reservationService.Reservation
	otel         otel.Otel
}

func New(service service.Slot, reservations reservationService.Reservation, otel otel.Otel) Handler {
	return Handler{
		service:      service,
		reservations: reservations,
		otel:         otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/slots", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSlot)
		routerGroup.Get("/available", handler.GetAvailableSlots)
		routerGroup.Get("/{id}", handler.GetSlotByID)
		routerGroup.Post("/{id}/reserve", handler.ReserveSlot)
		routerGroup.Patch("/{id}/status", handler.TransitionSlot)
		routerGroup.Delete("/{id}", handler.DeleteSlot)
	})
}

// CreateSlot handles the creation of a new bookable slot.
// @Summary Create a new slot
// @Description Create a bookable time slot for a listener.
// @Tags Slot
// @Accept json
// @Produce json
// @Param request body dto.CreateSlotRequest true "Create Slot Request"
// @Success 201 {object} response.Message "Slot created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /api/slots [post]
// @Security BearerAuth
func (handler *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSlot")
	defer scope.End()

	req := dto.CreateSlotRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create slot")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Slot created successfully by user " + user)

	response.WithMessage(w, http.StatusCreated, "Slot created successfully")
}

// GetAvailableSlots lists slots that can still be reserved.
// @Summary Get available slots
// @Description Retrieve slots that are open for reservation, with pagination.
// @Tags Slot
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param date query string false "Filter by exact date (YYYY-MM-DD)"
// @Param dateFrom query string false "Filter from date (YYYY-MM-DD)"
// @Param dateTo query string false "Filter to date (YYYY-MM-DD)"
// @Param listenerId query string false "Filter by listener"
// @Success 200 {object} dto.GetAvailableSlotsResponse "Available slots"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/slots/available [get]
func (handler *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableSlots")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()

	slots, err := handler.service.GetAvailable(ctx, queryParams, query.Get("date"), query.Get("dateFrom"), query.Get("dateTo"), query.Get("listenerId"))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get available slots")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Available slots retrieved successfully")

	response.WithJSON(w, http.StatusOK, slots)
}

// GetSlotByID retrieves a slot by its ID.
// @Summary Get a slot by ID
// @Description Retrieve a slot by its unique identifier.
// @Tags Slot
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} dto.SlotResponse "Slot details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/slots/{id} [get]
func (handler *Handler) GetSlotByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlotByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	slot, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot retrieved successfully")

	response.WithJSON(w, http.StatusOK, slot)
}

// ReserveSlot books a slot for the authenticated user.
// @Summary Reserve a slot
// @Description Atomically reserve an available slot. Of concurrent attempts on the same slot, exactly one succeeds.
// @Tags Slot
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param request body reservationDto.ReserveSlotRequest false "Reserve Slot Request"
// @Success 201 {object} reservationDto.ReservationResponse "Reservation created"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /api/slots/{id}/reserve [post]
// @Security BearerAuth
func (handler *Handler) ReserveSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReserveSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := reservationDto.ReserveSlotRequest{}

	if r.ContentLength > 0 {
		if err := validator.Validate(r.Body, &req); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to validate request body")

			response.WithError(w, err)

			return
		}
	}

	reservation, err := handler.reservations.Reserve(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reserve slot")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Slot reserved successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, reservation)
}

// TransitionSlot moves a slot to a new lifecycle status.
// @Summary Transition a slot
// @Description Move a slot to a new status. Illegal transitions are rejected.
// @Tags Slot
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param request body dto.TransitionSlotRequest true "Transition Slot Request"
// @Success 200 {object} response.Message "Slot transitioned successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /api/slots/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) TransitionSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TransitionSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.TransitionSlotRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Transition(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to transition slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot transitioned successfully")

	response.WithMessage(w, http.StatusOK, "Slot transitioned successfully")
}

// DeleteSlot removes a slot that has not been reserved.
// @Summary Delete a slot
// @Description Delete a slot by its unique identifier. Reserved slots cannot be deleted.
// @Tags Slot
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Message "Slot deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /api/slots/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot deleted successfully")

	response.WithMessage(w, http.StatusOK, "Slot deleted successfully")
}
