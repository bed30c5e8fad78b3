package meeting

//go:generate go run go.uber.org/mock/mockgen -source=./meeting.go -destination=./mocks/meeting_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"justhear/config"
	"justhear/infras/otel"
	"justhear/shared/constant"
)

var (
	// ErrUnknownProvider means no endpoint is configured for the requested provider.
	ErrUnknownProvider = errors.New("unknown meeting provider")
	// ErrUnavailable means the provider could not produce a meeting; the call may be retried.
	ErrUnavailable = errors.New("meeting provider unavailable")
)

type CreateMeetingRequest struct {
	ReservationID string    `json:"reservation_id"`
	Topic         string    `json:"topic"`
	StartsAt      time.Time `json:"starts_at"`
	DurationMin   int       `json:"duration_min"`
}

type Meeting struct {
	JoinURL   string `json:"join_url"`
	MeetingID string `json:"meeting_id"`
	Provider  string `json:"provider"`
}

// Provider creates meetings with an external conferencing service.
type Provider interface {
	CreateMeeting(ctx context.Context, provider string, req CreateMeetingRequest) (Meeting, error)
}

type providerImpl struct {
	cfg    *config.Config
	otel   otel.Otel
	client *http.Client
}

func New(cfg *config.Config, otl otel.Otel) Provider {
	return &providerImpl{
		cfg:  cfg,
		otel: otl,
		client: &http.Client{
			Timeout: time.Duration(cfg.External.Meeting.TimeoutSeconds) * time.Second,
		},
	}
}

func (p *providerImpl) CreateMeeting(ctx context.Context, provider string, req CreateMeetingRequest) (res Meeting, err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelMeetingScopeName, constant.OtelMeetingScopeName+".CreateMeeting")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute("meeting.provider", provider)

	endpoint, ok := p.cfg.External.Meeting.Endpoints[provider]
	if !ok || endpoint == constant.Empty {
		return res, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return res, fmt.Errorf("failed to marshal meeting request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return res, fmt.Errorf("failed to build meeting request: %w", err)
	}

	httpReq.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	if p.cfg.External.Meeting.APIKey != constant.Empty {
		httpReq.Header.Set(constant.RequestHeaderAPIKey, p.cfg.External.Meeting.APIKey)
	}

	httpRes, err := p.client.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("meeting provider request failed")

		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode < http.StatusOK || httpRes.StatusCode >= http.StatusMultipleChoices {
		log.Error().Int("status", httpRes.StatusCode).Str("provider", provider).Msg("meeting provider returned an error status")

		return res, fmt.Errorf("%w: status %d", ErrUnavailable, httpRes.StatusCode)
	}

	if err = json.NewDecoder(httpRes.Body).Decode(&res); err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if res.JoinURL == constant.Empty || res.MeetingID == constant.Empty {
		return res, fmt.Errorf("%w: malformed provider response", ErrUnavailable)
	}

	res.Provider = provider

	return res, nil
}
