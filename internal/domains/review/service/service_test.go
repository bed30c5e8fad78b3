package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"justhear/config"
	"justhear/infras/otel/mocks"
	listenerMocks "justhear/internal/domains/listener/mocks"
	reservationMocks "justhear/internal/domains/reservation/mocks"
	reservationModel "justhear/internal/domains/reservation/model"
	reviewMocks "justhear/internal/domains/review/mocks"
	"justhear/internal/domains/review/model"
	"justhear/internal/domains/review/model/dto"
	"justhear/internal/domains/review/service"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
)

func newReviewService(t *testing.T) (service.Review, *reviewMocks.MockReview, *reservationMocks.MockReservation, *listenerMocks.MockListener) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := reviewMocks.NewMockReview(ctrl)
	mockReservations := reservationMocks.NewMockReservation(ctrl)
	mockListeners := listenerMocks.NewMockListener(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockReservations, mockListeners, &config.Config{}, mockOtel)

	return svc, mockRepo, mockReservations, mockListeners
}

func reviewerCtx(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func completedReservation() reservationModel.Reservation {
	return reservationModel.Reservation{
		ID:         "reservation-id-123",
		SlotID:     "slot-id-123",
		UserID:     "user-id-123",
		ListenerID: "listener-id-123",
		Status:     reservationModel.StatusCompleted,
	}
}

func TestReviewService_Create(t *testing.T) {
	req := dto.CreateReviewRequest{
		ReservationID: "reservation-id-123",
		Rating:        4,
		Comment:       "really helped me untangle things",
	}

	t.Run("successful creation refreshes the listener rating", func(t *testing.T) {
		svc, repo, reservations, listeners := newReviewService(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(completedReservation(), nil)

		repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod model.Review) error {
				assert.Equal(t, "reservation-id-123", mod.ReservationID)
				assert.Equal(t, "user-id-123", mod.UserID)
				assert.Equal(t, "listener-id-123", mod.ListenerID)
				assert.Equal(t, 4, mod.Rating)

				return nil
			})

		repo.EXPECT().
			AggregateForListener(gomock.Any(), "listener-id-123").
			Return(4.0, 1, nil)

		listeners.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, 4.0, fields["rating"])
				assert.Equal(t, 1, fields["rating_count"])

				return nil
			})

		res, err := svc.Create(reviewerCtx("user-id-123"), req)

		assert.NoError(t, err)
		assert.Equal(t, "listener-id-123", res.ListenerID)
		assert.Equal(t, "user-id-123", res.UserID)
		assert.Equal(t, 4, res.Rating)
	})

	t.Run("anonymous review hides the reviewer", func(t *testing.T) {
		svc, repo, reservations, listeners := newReviewService(t)

		anonReq := req
		anonReq.Anonymous = true

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(completedReservation(), nil)

		repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		repo.EXPECT().
			AggregateForListener(gomock.Any(), "listener-id-123").
			Return(4.0, 1, nil)

		listeners.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.Create(reviewerCtx("user-id-123"), anonReq)

		assert.NoError(t, err)
		assert.True(t, res.Anonymous)
		assert.Empty(t, res.UserID)
		assert.Empty(t, res.Metadata.CreatedBy)
	})

	t.Run("review by someone else is forbidden", func(t *testing.T) {
		svc, _, reservations, _ := newReviewService(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(completedReservation(), nil)

		_, err := svc.Create(reviewerCtx("someone-else"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("session not yet completed", func(t *testing.T) {
		svc, _, reservations, _ := newReviewService(t)

		pending := completedReservation()
		pending.Status = reservationModel.StatusConfirmed

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pending, nil)

		_, err := svc.Create(reviewerCtx("user-id-123"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("session already reviewed", func(t *testing.T) {
		svc, repo, reservations, _ := newReviewService(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(completedReservation(), nil)

		repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		_, err := svc.Create(reviewerCtx("user-id-123"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("reservation not found", func(t *testing.T) {
		svc, _, reservations, _ := newReviewService(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(reservationModel.Reservation{}, nil)

		_, err := svc.Create(reviewerCtx("user-id-123"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("rating refresh failure does not fail the create", func(t *testing.T) {
		svc, repo, reservations, _ := newReviewService(t)

		reservations.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(completedReservation(), nil)

		repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		repo.EXPECT().
			AggregateForListener(gomock.Any(), "listener-id-123").
			Return(0.0, 0, errors.New("db error"))

		_, err := svc.Create(reviewerCtx("user-id-123"), req)

		assert.NoError(t, err)
	})
}

func TestReviewService_GetByListener(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: constant.DefaultValueSortBy, SortDir: constant.DefaultValueSortDir}

	t.Run("returns reviews for an existing listener", func(t *testing.T) {
		svc, repo, _, listeners := newReviewService(t)

		listeners.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(2, nil)

		repo.EXPECT().
			GetAll(gomock.Any(), params, gomock.Any()).
			Return([]model.Review{
				{ID: "review-1", ListenerID: "listener-id-123", UserID: "user-a", Rating: 5},
				{ID: "review-2", ListenerID: "listener-id-123", UserID: "user-b", Rating: 3, Anonymous: true},
			}, nil)

		res, err := svc.GetByListener(context.Background(), "listener-id-123", params)

		assert.NoError(t, err)
		assert.Len(t, res.Reviews, 2)
		assert.Equal(t, 2, res.TotalData)
		assert.Equal(t, "user-a", res.Reviews[0].UserID)
		assert.Empty(t, res.Reviews[1].UserID)
	})

	t.Run("unknown listener", func(t *testing.T) {
		svc, _, _, listeners := newReviewService(t)

		listeners.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		_, err := svc.GetByListener(context.Background(), "missing", params)

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
