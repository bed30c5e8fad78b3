package model

import (
	"time"

	"justhear/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID            = "id"
	FieldSlotID        = "slot_id"
	FieldUserID        = "user_id"
	FieldListenerID    = "listener_id"
	FieldStatus        = "status"
	FieldPriceCents    = "price_cents"
	FieldCurrency      = "currency"
	FieldCancelledAt   = "cancelled_at"
	FieldCancelReason  = "cancel_reason"
	FieldPaymentStatus = "payment_status"
	FieldTransactionID = "transaction_id"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// allowedTransitions holds the reservation lifecycle. Cancelled, completed
// and no_show are terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
	StatusCancelled: {},
	StatusCompleted: {},
	StatusNoShow:    {},
}

func IsValidStatus(status string) bool {
	_, ok := allowedTransitions[status]

	return ok
}

func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsActive reports whether the reservation still holds its slot.
func IsActive(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

type Reservation struct {
	ID            string     `db:"id"`
	SlotID        string     `db:"slot_id"`
	UserID        string     `db:"user_id"`
	ListenerID    string     `db:"listener_id"`
	Status        string     `db:"status"`
	PriceCents    int64      `db:"price_cents"`
	Currency      string     `db:"currency"`
	CancelledAt   *time.Time `db:"cancelled_at"`
	CancelReason  *string    `db:"cancel_reason"`
	PaymentStatus string     `db:"payment_status"`
	TransactionID *string    `db:"transaction_id"`
	model.Metadata
}
