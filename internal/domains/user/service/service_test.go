package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"justhear/config"
	"justhear/infras/otel/mocks"
	userMocks "justhear/internal/domains/user/mocks"
	"justhear/internal/domains/user/model"
	"justhear/internal/domains/user/model/dto"
	"justhear/internal/domains/user/service"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
)

func newUserService(t *testing.T) (service.User, *userMocks.MockUser) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := userMocks.NewMockUser(ctrl)
	svc := service.New(repo, &config.Config{}, mocks.NewOtel())

	return svc, repo
}

func authedCtx(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func stringPtr(s string) *string {
	return &s
}

func TestUserService_Me(t *testing.T) {
	t.Run("returns own profile", func(t *testing.T) {
		svc, repo := newUserService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.User{
				ID:       "user-id-123",
				Email:    "user@example.com",
				Role:     constant.RoleUser,
				FullName: stringPtr("Some User"),
				Active:   true,
			}, nil)

		res, err := svc.Me(authedCtx("user-id-123"))

		assert.NoError(t, err)
		assert.Equal(t, "user-id-123", res.ID)
		assert.Equal(t, "user@example.com", res.Email)
	})

	t.Run("missing authentication", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.Me(context.Background())

		assert.Error(t, err)
		assert.Equal(t, 401, failure.GetCode(err))
	})

	t.Run("user no longer exists", func(t *testing.T) {
		svc, repo := newUserService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.User{}, nil)

		_, err := svc.Me(authedCtx("user-id-123"))

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestUserService_UpdateMe(t *testing.T) {
	t.Run("updates profile fields", func(t *testing.T) {
		svc, repo := newUserService(t)

		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				if name, ok := fields[model.FieldFullName].(*string); assert.True(t, ok) {
					assert.Equal(t, "New Name", *name)
				}

				assert.Equal(t, "user-id-123", fields[constant.FieldModifiedBy])

				return nil
			})

		err := svc.UpdateMe(authedCtx("user-id-123"), dto.UpdateUserRequest{FullName: stringPtr("New Name")})

		assert.NoError(t, err)
	})

	t.Run("missing authentication", func(t *testing.T) {
		svc, _ := newUserService(t)

		err := svc.UpdateMe(context.Background(), dto.UpdateUserRequest{})

		assert.Error(t, err)
		assert.Equal(t, 401, failure.GetCode(err))
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, repo := newUserService(t)

		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("db down"))

		err := svc.UpdateMe(authedCtx("user-id-123"), dto.UpdateUserRequest{FullName: stringPtr("New Name")})

		assert.Error(t, err)
	})
}

func TestUserService_GetAll(t *testing.T) {
	svc, repo := newUserService(t)

	filter := gDto.And(gDto.Filter{
		Table:    model.TableName,
		Field:    model.FieldEmail,
		Operator: gDto.FilterOperatorLike,
		Value:    "example.com",
	})

	repo.EXPECT().
		Count(gomock.Any(), filter).
		Return(2, nil)

	repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), filter).
		Return([]model.User{
			{ID: "user-id-1", Email: "one@example.com", Role: constant.RoleUser},
			{ID: "user-id-2", Email: "two@example.com", Role: constant.RoleListener},
		}, nil)

	res, err := svc.GetAll(authedCtx("admin-id"), gDto.QueryParams{Page: 1, Limit: 10}, filter)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Users, 2)
	assert.Equal(t, 2, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
}
