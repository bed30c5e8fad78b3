package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"

	"justhear/infras/otel"
	"justhear/infras/postgres"
	"justhear/internal/domains/reservation/model"
	slotModel "justhear/internal/domains/slot/model"
	slotRepo "justhear/internal/domains/slot/repository"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"
	gRepo "justhear/shared/repository"
	"justhear/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type Reservation interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	ReserveSlot(ctx context.Context, reservation model.Reservation) error
	Confirm(ctx context.Context, id, transactionID, modifiedBy string) (bool, error)
	CancelWithRelease(ctx context.Context, reservation model.Reservation, reason string, releaseSlot bool, modifiedBy string) error
	CloseWithSlot(ctx context.Context, reservation model.Reservation, to, modifiedBy string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db    *postgres.Connection
	otel  otel.Otel
	slots slotRepo.Slot
}

func New(db *postgres.Connection, otel otel.Otel, slots slotRepo.Slot) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
		slots:      slots,
	}
}

// ReserveSlot atomically claims the slot and records the pending
// reservation. The slot claim is a guarded update from available to
// reserved, so of N concurrent attempts exactly one commits; the rest see
// zero affected rows and fail with SlotUnavailable before inserting
// anything. The partial unique index on active reservations per slot backs
// this up at the storage level.
func (repo *repositoryImpl) ReserveSlot(ctx context.Context, reservation model.Reservation) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.reserveSlot")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		claimed, err := repo.slots.TransitionTx(ctx, tx, reservation.SlotID, slotModel.StatusAvailable, slotModel.StatusReserved, reservation.UserID)
		if err != nil {
			return err
		}

		if !claimed {
			return failure.SlotUnavailable
		}

		return repo.InsertTx(ctx, tx, reservation)
	})

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
		log.Warn().Str("slot_id", reservation.SlotID).Msg("duplicate active reservation blocked by unique index")

		return failure.SlotUnavailable
	}

	return err
}

// Confirm moves a pending reservation to confirmed and records the payment
// in the same guarded update, so a double confirm cannot overwrite the
// original transaction id.
func (repo *repositoryImpl) Confirm(ctx context.Context, id, transactionID, modifiedBy string) (ok bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.confirm")
	defer scope.End()
	defer scope.TraceIfError(err)

	fields := transitionFields(model.StatusConfirmed, modifiedBy)
	fields[model.FieldPaymentStatus] = model.PaymentStatusPaid
	fields[model.FieldTransactionID] = transactionID

	affected, err := repo.UpdateChecked(ctx, fields, transitionFilter(id, model.StatusPending))
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CancelWithRelease cancels the reservation and, when the session has not
// started yet, returns the slot to the pool in the same transaction.
func (repo *repositoryImpl) CancelWithRelease(ctx context.Context, reservation model.Reservation, reason string, releaseSlot bool, modifiedBy string) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.cancelWithRelease")
	defer scope.End()
	defer scope.TraceIfError(err)

	return repo.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		fields := transitionFields(model.StatusCancelled, modifiedBy)
		fields[model.FieldCancelledAt] = timezone.Now()

		if reason != constant.Empty {
			fields[model.FieldCancelReason] = reason
		}

		affected, err := repo.UpdateCheckedTx(ctx, tx, fields, transitionFilter(reservation.ID, reservation.Status))
		if err != nil {
			return err
		}

		if affected == 0 {
			return failure.InvalidState("reservation status changed concurrently, retry with fresh state")
		}

		if !releaseSlot {
			return nil
		}

		released, err := repo.slots.TransitionTx(ctx, tx, reservation.SlotID, slotModel.StatusReserved, slotModel.StatusAvailable, modifiedBy)
		if err != nil {
			return err
		}

		if !released {
			log.Warn().Str("slot_id", reservation.SlotID).Msg("slot was not in reserved status during release")
		}

		return nil
	})
}

// CloseWithSlot finishes a confirmed reservation as completed or no_show
// and marks the slot completed in the same transaction.
func (repo *repositoryImpl) CloseWithSlot(ctx context.Context, reservation model.Reservation, to, modifiedBy string) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.closeWithSlot")
	defer scope.End()
	defer scope.TraceIfError(err)

	return repo.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		affected, err := repo.UpdateCheckedTx(ctx, tx, transitionFields(to, modifiedBy), transitionFilter(reservation.ID, model.StatusConfirmed))
		if err != nil {
			return err
		}

		if affected == 0 {
			return failure.InvalidState("reservation status changed concurrently, retry with fresh state")
		}

		if _, err := repo.slots.TransitionTx(ctx, tx, reservation.SlotID, slotModel.StatusReserved, slotModel.StatusCompleted, modifiedBy); err != nil {
			return err
		}

		return nil
	})
}

func transitionFields(to, modifiedBy string) map[string]any {
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
