package model

import "justhear/shared/model"

const (
	TableName  = "reviews"
	EntityName = "review"

	FieldID            = "id"
	FieldReservationID = "reservation_id"
	FieldUserID        = "user_id"
	FieldListenerID    = "listener_id"
	FieldRating        = "rating"
	FieldComment       = "comment"
	FieldAnonymous     = "anonymous"
)

type Review struct {
	ID            string `db:"id"`
	ReservationID string `db:"reservation_id"`
	UserID        string `db:"user_id"`
	ListenerID    string `db:"listener_id"`
	Rating        int    `db:"rating"`
	Comment       string `db:"comment"`
	Anonymous     bool   `db:"anonymous"`
	model.Metadata
}
