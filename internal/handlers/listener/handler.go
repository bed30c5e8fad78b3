package listener

import (
	"net/http"
	"strconv"

	"justhear/infras/otel"
	"justhear/internal/domains/listener/model"
	"justhear/internal/domains/listener/model/dto"
	"justhear/internal/domains/listener/service"
	"justhear/shared"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/validator"
	"justhear/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Listener
	otel    otel.Otel
}

func New(service service.Listener, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/listeners", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateListener)
		routerGroup.Get("/", handler.GetListeners)
		routerGroup.Get("/{id}", handler.GetListenerByID)
		routerGroup.Patch("/{id}", handler.UpdateListener)
		routerGroup.Delete("/{id}", handler.DeleteListener)
	})
}

// CreateListener handles the creation of a new listener profile.
// @Summary Create a listener profile
// @Description Create a listener profile for the authenticated user.
// @Tags Listener
// @Accept multipart/form-data
// @Produce json
// @Param displayName formData string true "Display name"
// @Param headline formData string false "Short headline"
// @Param bio formData string false "Biography"
// @Param hourlyRateCents formData integer false "Hourly rate in cents"
// @Param currency formData string false "ISO currency code"
// @Param avatar formData file false "Avatar image"
// @Success 201 {object} response.Message "Listener profile created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /api/listeners [post]
// @Security BearerAuth
func (handler *Handler) CreateListener(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateListener")
	defer scope.End()

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(writer, err)

		return
	}

	req := dto.CreateListenerRequest{
		DisplayName: request.FormValue("displayName"),
		Headline:    request.FormValue("headline"),
		Bio:         request.FormValue("bio"),
		Currency:    request.FormValue("currency"),
	}

	if rateStr := request.FormValue("hourlyRateCents"); rateStr != "" {
		if rate, err := strconv.ParseInt(rateStr, 10, 64); err == nil {
			req.HourlyRateCents = rate
		}
	}

	if activeStr := request.FormValue("active"); activeStr != "" {
		req.Active = shared.ConvertStringToBool(activeStr)
	}

	file, fileHeader, err := request.FormFile("avatar")
	if err == nil {
		req.Avatar = fileHeader
		req.AvatarFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create listener profile")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Listener profile created successfully by user " + user)

	response.WithMessage(writer, http.StatusCreated, "Listener profile created successfully")
}

// GetListeners retrieves all listener profiles based on query parameters.
// @Summary Get all listeners
// @Description Retrieve all listener profiles with optional filtering and pagination.
// @Tags Listener
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param displayName query string false "Filter by display name"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} dto.GetListenersResponse "List of listeners"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/listeners [get]
func (handler *Handler) GetListeners(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetListeners")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldDisplayName,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get("displayName"),
				Table:    model.TableName,
			},
		},
	}

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	listeners, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get listeners")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Listeners retrieved successfully")

	response.WithJSON(w, http.StatusOK, listeners)
}

// GetListenerByID retrieves a listener profile by its ID.
// @Summary Get a listener by ID
// @Description Retrieve a listener profile by its unique identifier.
// @Tags Listener
// @Accept json
// @Produce json
// @Param id path string true "Listener ID"
// @Success 200 {object} dto.ListenerResponse "Listener details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/listeners/{id} [get]
func (handler *Handler) GetListenerByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetListenerByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	listener, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get listener")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Listener retrieved successfully")

	response.WithJSON(w, http.StatusOK, listener)
}

// UpdateListener updates an existing listener profile.
// @Summary Update a listener profile
// @Description Update a listener profile. Only the owner or an admin may update it.
// @Tags Listener
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Listener ID"
// @Param displayName formData string false "Display name"
// @Param headline formData string false "Short headline"
// @Param bio formData string false "Biography"
// @Param hourlyRateCents formData integer false "Hourly rate in cents"
// @Param currency formData string false "ISO currency code"
// @Param avatar formData file false "Avatar image"
// @Param active formData boolean false "Active status"
// @Success 200 {object} response.Message "Listener profile updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /api/listeners/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateListener(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateListener")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(writer, err)

		return
	}

	req := dto.UpdateListenerRequest{
		DisplayName: request.FormValue("displayName"),
		Currency:    request.FormValue("currency"),
	}

	if headline := request.FormValue("headline"); headline != "" {
		req.Headline = &headline
	}

	if bio := request.FormValue("bio"); bio != "" {
		req.Bio = &bio
	}

	if rateStr := request.FormValue("hourlyRateCents"); rateStr != "" {
		if rate, err := strconv.ParseInt(rateStr, 10, 64); err == nil {
			req.HourlyRateCents = &rate
		}
	}

	if activeStr := request.FormValue("active"); activeStr != "" {
		req.Active = shared.ConvertStringToBool(activeStr)
	}

	file, fileHeader, err := request.FormFile("avatar")
	if err == nil {
		req.Avatar = fileHeader
		req.AvatarFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update listener profile")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Listener profile updated successfully")

	response.WithMessage(writer, http.StatusOK, "Listener profile updated successfully")
}

// DeleteListener removes a listener profile.
// @Summary Delete a listener profile
// @Description Delete a listener profile by its unique identifier.
// @Tags Listener
// @Accept json
// @Produce json
// @Param id path string true "Listener ID"
// @Success 200 {object} response.Message "Listener profile deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/listeners/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteListener(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteListener")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete listener profile")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Listener profile deleted successfully")

	response.WithMessage(w, http.StatusOK, "Listener profile deleted successfully")
}
