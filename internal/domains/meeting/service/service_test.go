package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"justhear/config"
	"justhear/infras/meeting"
	meetingMocks "justhear/infras/meeting/mocks"
	"justhear/infras/otel/mocks"
	reservationMocks "justhear/internal/domains/reservation/mocks"
	reservationModel "justhear/internal/domains/reservation/model"
	"justhear/internal/domains/reservation/model/dto"
	"justhear/internal/domains/meeting/service"
	slotMocks "justhear/internal/domains/slot/mocks"
	slotModel "justhear/internal/domains/slot/model"
	"justhear/shared/constant"
	"justhear/shared/failure"
	"justhear/shared/timezone"
)

func bindCtx() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-id-123")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleUser)
}

func confirmedReservation() reservationModel.Reservation {
	return reservationModel.Reservation{
		ID:     "reservation-id-123",
		SlotID: "slot-id-123",
		UserID: "user-id-123",
		Status: reservationModel.StatusConfirmed,
	}
}

func boundlessSlot() slotModel.Slot {
	return slotModel.Slot{
		ID:         "slot-id-123",
		ListenerID: "listener-id-123",
		Date:       timezone.Now().AddDate(0, 0, 1),
		StartTime:  "09:00",
		EndTime:    "10:00",
		Status:     slotModel.StatusReserved,
	}
}

func newBinder(t *testing.T) (service.Binder, *reservationMocks.MockReservation, *slotMocks.MockSlot, *meetingMocks.MockProvider) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockReservations := reservationMocks.NewMockReservation(ctrl)
	mockSlots := slotMocks.NewMockSlot(ctrl)
	mockProvider := meetingMocks.NewMockProvider(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.External.Meeting.DefaultProvider = "jitsi"
	cfg.External.Meeting.MaxAttempts = 3
	cfg.External.Meeting.RetryWaitMillis = 1

	svc := service.New(mockReservations, mockSlots, mockProvider, cfg, mockOtel)

	return svc, mockReservations, mockSlots, mockProvider
}

func TestMeetingBinder_Bind(t *testing.T) {
	t.Run("creates and binds a link", func(t *testing.T) {
		svc, reservations, slots, provider := newBinder(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmedReservation(), nil)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(boundlessSlot(), nil)

		provider.EXPECT().
			CreateMeeting(gomock.Any(), "jitsi", gomock.Any()).
			Return(meeting.Meeting{JoinURL: "https://meet.example.com/abc", MeetingID: "abc", Provider: "jitsi"}, nil)

		slots.EXPECT().
			BindMeeting(gomock.Any(), "slot-id-123", "https://meet.example.com/abc", "abc", "jitsi", "user-id-123").
			Return(true, nil)

		res, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{})

		assert.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "https://meet.example.com/abc", res.MeetingLink)
		assert.Equal(t, "abc", res.MeetingID)
		assert.Equal(t, "jitsi", res.Provider)
	})

	t.Run("repeat bind returns the stored link without a provider call", func(t *testing.T) {
		svc, reservations, slots, _ := newBinder(t)

		link := "https://meet.example.com/abc"
		meetingID := "abc"
		providerName := "jitsi"

		bound := boundlessSlot()
		bound.MeetingLink = &link
		bound.MeetingID = &meetingID
		bound.MeetingProvider = &providerName

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmedReservation(), nil).
			Times(2)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(bound, nil).
			Times(2)

		first, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{})
		assert.NoError(t, err)

		second, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{})
		assert.NoError(t, err)

		assert.Equal(t, first.MeetingLink, second.MeetingLink)
		assert.Equal(t, link, second.MeetingLink)
		assert.Equal(t, meetingID, second.MeetingID)
		assert.Equal(t, providerName, second.Provider)
	})

	t.Run("pending reservation cannot bind", func(t *testing.T) {
		svc, reservations, _, _ := newBinder(t)

		pending := confirmedReservation()
		pending.Status = reservationModel.StatusPending

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pending, nil)

		_, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{})

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("provider failure after retries maps to provider error", func(t *testing.T) {
		svc, reservations, slots, provider := newBinder(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmedReservation(), nil)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(boundlessSlot(), nil)

		provider.EXPECT().
			CreateMeeting(gomock.Any(), "jitsi", gomock.Any()).
			Return(meeting.Meeting{}, meeting.ErrUnavailable).
			Times(3)

		_, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{})

		assert.Error(t, err)
		assert.Equal(t, 502, failure.GetCode(err))
	})

	t.Run("lost bind race returns the winner's link", func(t *testing.T) {
		svc, reservations, slots, provider := newBinder(t)

		link := "https://meet.example.com/winner"
		providerName := "jitsi"

		winner := boundlessSlot()
		winner.MeetingLink = &link
		winner.MeetingProvider = &providerName

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmedReservation(), nil)

		gomock.InOrder(
			slots.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(boundlessSlot(), nil),
			slots.EXPECT().
				BindMeeting(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(false, nil),
			slots.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(winner, nil),
		)

		provider.EXPECT().
			CreateMeeting(gomock.Any(), "jitsi", gomock.Any()).
			Return(meeting.Meeting{JoinURL: "https://meet.example.com/loser", MeetingID: "loser", Provider: "jitsi"}, nil)

		res, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{})

		assert.NoError(t, err)
		assert.Equal(t, link, res.MeetingLink)
	})

	t.Run("unknown provider is a bad request", func(t *testing.T) {
		svc, reservations, slots, provider := newBinder(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmedReservation(), nil)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(boundlessSlot(), nil)

		provider.EXPECT().
			CreateMeeting(gomock.Any(), "teleporter", gomock.Any()).
			Return(meeting.Meeting{}, meeting.ErrUnknownProvider)

		_, err := svc.Bind(bindCtx(), "reservation-id-123", dto.BindMeetingLinkRequest{Provider: "teleporter"})

		assert.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})
}
