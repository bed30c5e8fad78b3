package model

import "justhear/shared/model"

const (
	TableName  = "listeners"
	EntityName = "listener"

	FieldID              = "id"
	FieldUserID          = "user_id"
	FieldDisplayName     = "display_name"
	FieldHeadline        = "headline"
	FieldBio             = "bio"
	FieldAvatar          = "avatar"
	FieldHourlyRateCents = "hourly_rate_cents"
	FieldCurrency        = "currency"
	FieldRating          = "rating"
	FieldRatingCount     = "rating_count"
	FieldActive          = "active"
)

type Listener struct {
	ID              string  `db:"id"`
	UserID          string  `db:"user_id"`
	DisplayName     string  `db:"display_name"`
	Headline        string  `db:"headline"`
	Bio             string  `db:"bio"`
	Avatar          string  `db:"avatar"`
	HourlyRateCents int64   `db:"hourly_rate_cents"`
	Currency        string  `db:"currency"`
	Rating          float64 `db:"rating"`
	RatingCount     int     `db:"rating_count"`
	Active          bool    `db:"active"`
	model.Metadata
}
