package dto

import (
	"time"

	"justhear/internal/domains/reservation/model"
	slotModel "justhear/internal/domains/slot/model"
	"justhear/shared"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	gModel "justhear/shared/model"
	"justhear/shared/timezone"

	"github.com/google/uuid"
)

type ReserveSlotRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// NewReservation builds the pending reservation that claims the slot. Price
// and currency are copied from the slot so later price edits do not change
// what the user agreed to pay.
func NewReservation(slot slotModel.Slot, userID string) model.Reservation {
	return model.Reservation{
		ID:            uuid.NewString(),
		SlotID:        slot.ID,
		UserID:        userID,
		ListenerID:    slot.ListenerID,
		Status:        model.StatusPending,
		PriceCents:    slot.PriceCents,
		Currency:      slot.Currency,
		PaymentStatus: model.PaymentStatusUnpaid,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type ConfirmPaymentRequest struct {
	TransactionID string `json:"transactionId" validate:"required,max=100"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type CloseReservationRequest struct {
	Status string `json:"status" validate:"required,oneof=completed no_show"`
}

type BindMeetingLinkRequest struct {
	Provider string `json:"provider" validate:"omitempty,max=50"`
}

type ReservationResponse struct {
	Success       bool    `json:"success"`
	ID            string  `json:"id"`
	SlotID        string  `json:"slotId"`
	UserID        string  `json:"userId"`
	ListenerID    string  `json:"listenerId"`
	Status        string  `json:"status"`
	PriceCents    int64   `json:"priceCents"`
	Currency      string  `json:"currency"`
	PaymentStatus string  `json:"paymentStatus"`
	TransactionID *string `json:"transactionId,omitempty"`
	CancelledAt   *string `json:"cancelledAt,omitempty"`
	CancelReason  *string `json:"cancelReason,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(mod model.Reservation) {
	r.Success = true
	r.ID = mod.ID
	r.SlotID = mod.SlotID
	r.UserID = mod.UserID
	r.ListenerID = mod.ListenerID
	r.Status = mod.Status
	r.PriceCents = mod.PriceCents
	r.Currency = mod.Currency
	r.PaymentStatus = mod.PaymentStatus
	r.TransactionID = mod.TransactionID
	r.CancelReason = mod.CancelReason
	r.Metadata.FromModel(mod.Metadata)

	if mod.CancelledAt != nil {
		cancelledAt := timezone.Format(*mod.CancelledAt, constant.DateFormat)
		r.CancelledAt = &cancelledAt
	}
}

type MeetingLinkResponse struct {
	Success     bool   `json:"success"`
	SlotID      string `json:"slotId"`
	MeetingLink string `json:"meetingLink"`
	MeetingID   string `json:"meetingId"`
	Provider    string `json:"provider"`
}

type GetReservationsResponse struct {
	Success      bool                  `json:"success"`
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"totalPage"`
	TotalData    int                   `json:"totalData"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.Success = true
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

// ReservationEvent is the payload published to the reservations topic on
// every lifecycle change.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservationId"`
	SlotID        string    `json:"slotId"`
	UserID        string    `json:"userId"`
	ListenerID    string    `json:"listenerId"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewReservationEvent(eventType string, mod model.Reservation) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: mod.ID,
		SlotID:        mod.SlotID,
		UserID:        mod.UserID,
		ListenerID:    mod.ListenerID,
		Status:        mod.Status,
		OccurredAt:    timezone.Now(),
	}
}
