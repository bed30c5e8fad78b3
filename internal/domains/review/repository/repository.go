package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"justhear/infras/otel"
	"justhear/infras/postgres"
	"justhear/internal/domains/review/model"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	gRepo "justhear/shared/repository"
)

type Review interface {
	Insert(ctx context.Context, model model.Review) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Review, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Review, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	AggregateForListener(ctx context.Context, listenerID string) (avg float64, count int, err error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Review]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Review {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Review](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// AggregateForListener computes the listener's average rating and review
// count straight from the table, so the denormalized listener columns never
// drift from the source rows.
func (repo *repositoryImpl) AggregateForListener(ctx context.Context, listenerID string) (avg float64, count int, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".review.aggregateForListener")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"SELECT COALESCE(AVG(%s), 0), COUNT(*) FROM %s WHERE %s = $1",
		model.FieldRating, model.TableName, model.FieldListenerID,
	)

	row := repo.db.Read.QueryRowContext(ctx, query, listenerID)
	if err = row.Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews for listener: %w", err)
	}

	return avg, count, nil
}
