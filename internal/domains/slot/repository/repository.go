package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"justhear/infras/otel"
	"justhear/infras/postgres"
	"justhear/internal/domains/slot/model"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
	gRepo "justhear/shared/repository"
	"justhear/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Slot interface {
	Insert(ctx context.Context, model model.Slot) error
	InsertIfNoOverlap(ctx context.Context, model model.Slot) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Slot, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Slot, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	Transition(ctx context.Context, id, from, to, modifiedBy string) (bool, error)
	TransitionTx(ctx context.Context, tx *sqlx.Tx, id, from, to, modifiedBy string) (bool, error)
	BindMeeting(ctx context.Context, id, link, meetingID, provider, modifiedBy string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Slot]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Slot {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Slot](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// InsertIfNoOverlap inserts a slot only when no non-cancelled slot of the
// same listener on the same date overlaps its time range. The overlap scan
// takes row locks so two overlapping inserts serialize instead of both
// passing the check.
func (repo *repositoryImpl) InsertIfNoOverlap(ctx context.Context, slot model.Slot) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.insertIfNoOverlap")
	defer scope.End()
	defer scope.TraceIfError(err)

	return repo.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		// A stored midnight end compares as 24:00 so it still counts as
		// covering the late evening of its own date.
		query := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE %s = $1
			  AND %s = $2
			  AND %s <> $3
			  AND %s < $4
			  AND (CASE WHEN %s = '00:00' THEN '24:00' ELSE %s END) > $5
			FOR UPDATE`,
			model.FieldID, model.TableName,
			model.FieldListenerID,
			model.FieldDate,
			model.FieldStatus,
			model.FieldStartTime,
			model.FieldEndTime, model.FieldEndTime,
		)

		var conflicting []string
		err := tx.SelectContext(ctx, &conflicting, query,
			slot.ListenerID,
			slot.Date.Format(constant.DateOnlyFormat),
			model.StatusCancelled,
			slot.EndBound(),
			slot.StartTime,
		)
		if err != nil {
			log.Error().Err(err).Msg("failed to scan for overlapping slots")

			return fmt.Errorf("failed to scan for overlapping slots: %w", err)
		}

		if len(conflicting) > 0 {
			return failure.Conflict("slot overlaps an existing slot for this listener")
		}

		return repo.InsertTx(ctx, tx, slot)
	})
}

// Transition moves a slot from one status to another in a single guarded
// update. It reports false when the slot was not in the expected status,
// which callers treat as a lost race rather than an error.
func (repo *repositoryImpl) Transition(ctx context.Context, id, from, to, modifiedBy string) (ok bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.transition")
	defer scope.End()
	defer scope.TraceIfError(err)

	affected, err := repo.UpdateChecked(ctx, repo.transitionFields(to, modifiedBy), transitionFilter(id, from))
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// TransitionTx is Transition inside a caller-owned transaction.
func (repo *repositoryImpl) TransitionTx(ctx context.Context, tx *sqlx.Tx, id, from, to, modifiedBy string) (ok bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.transitionTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	affected, err := repo.UpdateCheckedTx(ctx, tx, repo.transitionFields(to, modifiedBy), transitionFilter(id, from))
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// BindMeeting attaches meeting details to a slot only when none are bound
// yet. The first writer wins; later writers see false and should read back
// the stored link.
func (repo *repositoryImpl) BindMeeting(ctx context.Context, id, link, meetingID, provider, modifiedBy string) (ok bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.bindMeeting")
	defer scope.End()
	defer scope.TraceIfError(err)

	fields := map[string]any{
		model.FieldMeetingLink:     link,
		model.FieldMeetingID:       meetingID,
		model.FieldMeetingProvider: provider,
		constant.FieldModifiedAt:   timezone.Now(),
		constant.FieldModifiedBy:   modifiedBy,
	}

	filter := gDto.And(
		gDto.Eq(model.TableName, model.FieldID, id),
		gDto.Filter{
			Field:    model.FieldMeetingLink,
			Operator: gDto.FilterIsNull,
			Table:    model.TableName,
		},
	)

	affected, err := repo.UpdateChecked(ctx, fields, filter)
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (repo *repositoryImpl) transitionFields(to, modifiedBy string) map[string]any {
	return map[string]any{
		model.FieldStatus:        to,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: modifiedBy,
	}
}

func transitionFilter(id, from string) gDto.FilterGroup {
	// The status guard needs its own arg name so the SET value for status
	// does not overwrite it in the named-query args.
	return gDto.And(
		gDto.Eq(model.TableName, model.FieldID, id),
		gDto.Filter{
			ArgName:  "expected_status",
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    from,
			Table:    model.TableName,
		},
	)
}
