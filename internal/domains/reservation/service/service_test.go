package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"justhear/config"
	"justhear/infras/kafka"
	"justhear/infras/otel/mocks"
	reservationMocks "justhear/internal/domains/reservation/mocks"
	"justhear/internal/domains/reservation/model"
	"justhear/internal/domains/reservation/model/dto"
	"justhear/internal/domains/reservation/repository"
	"justhear/internal/domains/reservation/service"
	slotMocks "justhear/internal/domains/slot/mocks"
	slotModel "justhear/internal/domains/slot/model"
	"justhear/shared/cache"
	"justhear/shared/constant"
	"justhear/shared/failure"
	"justhear/shared/timezone"
)

// stubKafka and stubCache replace the async side effects so tests do not
// race with goroutines firing after the assertions.
type stubKafka struct {
	kafka.Client

	mu   sync.Mutex
	sent []string
}

func (s *stubKafka) SendMessages(_ context.Context, topic string, _ ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, topic)

	return nil
}

type stubCache struct {
	cache.RedisCache
}

func (s *stubCache) Clear(context.Context, string) error { return nil }

func userCtx(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func futureSlot(id string) slotModel.Slot {
	starts := timezone.Now().Add(48 * time.Hour)

	return slotModel.Slot{
		ID:         id,
		ListenerID: "listener-id-123",
		Date:       starts,
		StartTime:  starts.Format(constant.TimeOnlyFormat),
		EndTime:    starts.Add(time.Hour).Format(constant.TimeOnlyFormat),
		Status:     slotModel.StatusAvailable,
		PriceCents: 2500,
		Currency:   "USD",
	}
}

func newReservationService(t *testing.T) (service.Reservation, *reservationMocks.MockReservation, *slotMocks.MockSlot, *stubKafka) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockSlotRepo := slotMocks.NewMockSlot(ctrl)
	mockOtel := mocks.NewOtel()
	stubKafka := &stubKafka{}

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.Booking.CancelCutoffMinutes = 60
	cfg.Kafka.Topics.Reservations = "justhear.reservations"

	svc := service.New(mockRepo, mockSlotRepo, cfg, &stubCache{}, mockOtel, stubKafka)

	return svc, mockRepo, mockSlotRepo, stubKafka
}

func TestReservationService_Reserve(t *testing.T) {
	t.Run("successful reservation", func(t *testing.T) {
		svc, repo, slots, _ := newReservationService(t)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(futureSlot("slot-id-123"), nil)

		repo.EXPECT().
			ReserveSlot(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, reservation model.Reservation) error {
				assert.Equal(t, "slot-id-123", reservation.SlotID)
				assert.Equal(t, "user-id-123", reservation.UserID)
				assert.Equal(t, model.StatusPending, reservation.Status)
				assert.Equal(t, int64(2500), reservation.PriceCents)
				return nil
			})

		res, err := svc.Reserve(userCtx("user-id-123", constant.RoleUser), "slot-id-123", dto.ReserveSlotRequest{})

		assert.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, model.StatusPending, res.Status)
	})

	t.Run("slot not found", func(t *testing.T) {
		svc, _, slots, _ := newReservationService(t)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slotModel.Slot{}, nil)

		_, err := svc.Reserve(userCtx("user-id-123", constant.RoleUser), "missing", dto.ReserveSlotRequest{})

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("slot already reserved", func(t *testing.T) {
		svc, _, slots, _ := newReservationService(t)

		slot := futureSlot("slot-id-123")
		slot.Status = slotModel.StatusReserved

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		_, err := svc.Reserve(userCtx("user-id-123", constant.RoleUser), "slot-id-123", dto.ReserveSlotRequest{})

		assert.ErrorIs(t, err, failure.SlotUnavailable)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("past slot reads as completed and is not reservable", func(t *testing.T) {
		svc, _, slots, _ := newReservationService(t)

		past := timezone.Now().AddDate(0, 0, -1)
		slot := futureSlot("slot-id-123")
		slot.Date = past
		slot.StartTime = "09:00"
		slot.EndTime = "10:00"
		slot.Status = slotModel.StatusReserved

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		_, err := svc.Reserve(userCtx("user-id-123", constant.RoleUser), "slot-id-123", dto.ReserveSlotRequest{})

		assert.ErrorIs(t, err, failure.SlotUnavailable)
	})

	t.Run("claim lost to concurrent writer", func(t *testing.T) {
		svc, repo, slots, _ := newReservationService(t)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(futureSlot("slot-id-123"), nil)

		repo.EXPECT().
			ReserveSlot(gomock.Any(), gomock.Any()).
			Return(failure.SlotUnavailable)

		_, err := svc.Reserve(userCtx("user-id-123", constant.RoleUser), "slot-id-123", dto.ReserveSlotRequest{})

		assert.ErrorIs(t, err, failure.SlotUnavailable)
	})
}

// claimOnceRepo honors the ReserveSlot contract with an in-memory claim:
// exactly one caller wins, every other caller gets SlotUnavailable.
type claimOnceRepo struct {
	repository.Reservation

	mu      sync.Mutex
	claimed bool
	wins    int
}

func (r *claimOnceRepo) ReserveSlot(context.Context, model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.claimed {
		return failure.SlotUnavailable
	}

	r.claimed = true
	r.wins++

	return nil
}

func TestReservationService_Reserve_OnlyOneWinner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	const attempts = 50

	mockSlotRepo := slotMocks.NewMockSlot(ctrl)
	mockSlotRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(futureSlot("slot-id-123"), nil).
		Times(attempts)

	repo := &claimOnceRepo{}

	cfg := &config.Config{}
	cfg.Kafka.Topics.Reservations = "justhear.reservations"

	svc := service.New(repo, mockSlotRepo, cfg, &stubCache{}, mocks.NewOtel(), &stubKafka{})

	var wg sync.WaitGroup

	successes := make(chan struct{}, attempts)
	unavailable := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Reserve(userCtx("user-id-123", constant.RoleUser), "slot-id-123", dto.ReserveSlotRequest{})
			switch {
			case err == nil:
				successes <- struct{}{}
			case errors.Is(err, failure.SlotUnavailable):
				unavailable <- struct{}{}
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	close(successes)
	close(unavailable)

	assert.Equal(t, 1, len(successes))
	assert.Equal(t, attempts-1, len(unavailable))
	assert.Equal(t, 1, repo.wins)
}

func TestReservationService_ConfirmPayment(t *testing.T) {
	pending := model.Reservation{
		ID:     "reservation-id-123",
		SlotID: "slot-id-123",
		UserID: "user-id-123",
		Status: model.StatusPending,
	}

	confirm := dto.ConfirmPaymentRequest{TransactionID: "txn-abc-123"}

	t.Run("pending reservation confirms", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pending, nil)

		repo.EXPECT().
			Confirm(gomock.Any(), pending.ID, "txn-abc-123", "user-id-123").
			Return(true, nil)

		res, err := svc.ConfirmPayment(userCtx("user-id-123", constant.RoleUser), pending.ID, confirm)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)

		if assert.NotNil(t, res.TransactionID) {
			assert.Equal(t, "txn-abc-123", *res.TransactionID)
		}
	})

	t.Run("already confirmed", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		confirmed := pending
		confirmed.Status = model.StatusConfirmed

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmed, nil)

		_, err := svc.ConfirmPayment(userCtx("user-id-123", constant.RoleUser), pending.ID, confirm)

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("not the owner", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pending, nil)

		_, err := svc.ConfirmPayment(userCtx("intruder-id", constant.RoleUser), pending.ID, confirm)

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("lost the race", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pending, nil)

		repo.EXPECT().
			Confirm(gomock.Any(), pending.ID, "txn-abc-123", "user-id-123").
			Return(false, nil)

		_, err := svc.ConfirmPayment(userCtx("user-id-123", constant.RoleUser), pending.ID, confirm)

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})
}

func TestReservationService_Cancel(t *testing.T) {
	confirmed := model.Reservation{
		ID:     "reservation-id-123",
		SlotID: "slot-id-123",
		UserID: "user-id-123",
		Status: model.StatusConfirmed,
	}

	t.Run("cancel before cutoff releases slot", func(t *testing.T) {
		svc, repo, slots, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmed, nil)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(futureSlot("slot-id-123"), nil)

		repo.EXPECT().
			CancelWithRelease(gomock.Any(), gomock.Any(), "changed my mind", true, "user-id-123").
			Return(nil)

		res, err := svc.Cancel(userCtx("user-id-123", constant.RoleUser), confirmed.ID, dto.CancelReservationRequest{Reason: "changed my mind"})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, res.Status)
		assert.NotNil(t, res.CancelledAt)
	})

	t.Run("too late to cancel", func(t *testing.T) {
		svc, repo, slots, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmed, nil)

		soon := timezone.Now().Add(30 * time.Minute)
		slot := futureSlot("slot-id-123")
		slot.Date = soon
		slot.StartTime = soon.Format(constant.TimeOnlyFormat)
		slot.EndTime = soon.Add(time.Hour).Format(constant.TimeOnlyFormat)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		_, err := svc.Cancel(userCtx("user-id-123", constant.RoleUser), confirmed.ID, dto.CancelReservationRequest{})

		assert.ErrorIs(t, err, failure.TooLate)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("admin ignores the cutoff", func(t *testing.T) {
		svc, repo, slots, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmed, nil)

		soon := timezone.Now().Add(30 * time.Minute)
		slot := futureSlot("slot-id-123")
		slot.Date = soon
		slot.StartTime = soon.Format(constant.TimeOnlyFormat)
		slot.EndTime = soon.Add(time.Hour).Format(constant.TimeOnlyFormat)

		slots.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		repo.EXPECT().
			CancelWithRelease(gomock.Any(), gomock.Any(), gomock.Any(), true, constant.RoleAdmin).
			Return(nil)

		_, err := svc.Cancel(userCtx(constant.RoleAdmin, constant.RoleAdmin), confirmed.ID, dto.CancelReservationRequest{})

		assert.NoError(t, err)
	})

	t.Run("cancelled reservation cannot cancel again", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		cancelled := confirmed
		cancelled.Status = model.StatusCancelled

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(cancelled, nil)

		_, err := svc.Cancel(userCtx("user-id-123", constant.RoleUser), confirmed.ID, dto.CancelReservationRequest{})

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})
}

func TestReservationService_Close(t *testing.T) {
	confirmed := model.Reservation{
		ID:     "reservation-id-123",
		SlotID: "slot-id-123",
		UserID: "user-id-123",
		Status: model.StatusConfirmed,
	}

	t.Run("confirmed closes as completed", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(confirmed, nil)

		repo.EXPECT().
			CloseWithSlot(gomock.Any(), gomock.Any(), model.StatusCompleted, "listener-user-id").
			Return(nil)

		res, err := svc.Close(userCtx("listener-user-id", constant.RoleListener), confirmed.ID, model.StatusCompleted)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, res.Status)
	})

	t.Run("pending cannot close as no_show", func(t *testing.T) {
		svc, repo, _, _ := newReservationService(t)

		pending := confirmed
		pending.Status = model.StatusPending

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pending, nil)

		_, err := svc.Close(userCtx("listener-user-id", constant.RoleListener), confirmed.ID, model.StatusNoShow)

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("invalid close status", func(t *testing.T) {
		svc, _, _, _ := newReservationService(t)

		_, err := svc.Close(userCtx("listener-user-id", constant.RoleListener), confirmed.ID, model.StatusCancelled)

		assert.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})
}

func TestReservationModel_Transitions(t *testing.T) {
	assert.True(t, model.CanTransition(model.StatusPending, model.StatusConfirmed))
	assert.True(t, model.CanTransition(model.StatusPending, model.StatusCancelled))
	assert.True(t, model.CanTransition(model.StatusConfirmed, model.StatusNoShow))
	assert.False(t, model.CanTransition(model.StatusCancelled, model.StatusConfirmed))
	assert.False(t, model.CanTransition(model.StatusCompleted, model.StatusCancelled))
	assert.False(t, model.CanTransition(model.StatusPending, model.StatusCompleted))
}
