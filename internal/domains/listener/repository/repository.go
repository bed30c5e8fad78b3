package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"justhear/infras/otel"
	"justhear/infras/postgres"
	"justhear/internal/domains/listener/model"
	gDto "justhear/shared/dto"
	gRepo "justhear/shared/repository"
)

type Listener interface {
	Insert(ctx context.Context, model model.Listener) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Listener, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Listener, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Listener]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Listener {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Listener](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
