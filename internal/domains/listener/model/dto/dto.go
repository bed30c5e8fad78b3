package dto

import (
	"mime/multipart"

	"justhear/internal/domains/listener/model"
	"justhear/shared"
	gDto "justhear/shared/dto"
	gModel "justhear/shared/model"
	"justhear/shared/timezone"

	"github.com/google/uuid"
)

type CreateListenerRequest struct {
	DisplayName     string                `json:"displayName"     validate:"required,max=100"`
	Headline        string                `json:"headline"        validate:"omitempty,max=200"`
	Bio             string                `json:"bio"             validate:"omitempty,max=2000"`
	HourlyRateCents int64                 `json:"hourlyRateCents" validate:"omitempty,min=0"`
	Currency        string                `json:"currency"        validate:"omitempty,len=3"`
	Avatar          *multipart.FileHeader `json:"avatar"          validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	AvatarFile      multipart.File        `json:"-"`
	Active          *bool                 `json:"active"          validate:"omitempty"`
}

func (c *CreateListenerRequest) ToModel(userID string, currency string, avatarURL string) model.Listener {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	if c.Currency != "" {
		currency = c.Currency
	}

	return model.Listener{
		ID:              uuid.NewString(),
		UserID:          userID,
		DisplayName:     c.DisplayName,
		Headline:        c.Headline,
		Bio:             c.Bio,
		Avatar:          avatarURL,
		HourlyRateCents: c.HourlyRateCents,
		Currency:        currency,
		Active:          active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type UpdateListenerRequest struct {
	DisplayName     string                `db:"display_name"      json:"displayName"     validate:"omitempty,max=100"`
	Headline        *string               `db:"headline"          json:"headline"        validate:"omitempty,max=200"`
	Bio             *string               `db:"bio"               json:"bio"             validate:"omitempty,max=2000"`
	HourlyRateCents *int64                `db:"hourly_rate_cents" json:"hourlyRateCents" validate:"omitempty,min=0"`
	Currency        string                `db:"currency"          json:"currency"        validate:"omitempty,len=3"`
	Avatar          *multipart.FileHeader `json:"avatar"          validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	AvatarFile      multipart.File        `json:"-"`
	Active          *bool                 `db:"active"            json:"active"          validate:"omitempty"`
}

type ListenerResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	DisplayName     string  `json:"displayName"`
	Headline        string  `json:"headline,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	Avatar          string  `json:"avatar,omitempty"`
	HourlyRateCents int64   `json:"hourlyRateCents"`
	Currency        string  `json:"currency"`
	Rating          float64 `json:"rating"`
	RatingCount     int     `json:"ratingCount"`
	Active          bool    `json:"active"`
	gDto.Metadata
}

func (r *ListenerResponse) FromModel(model model.Listener) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.DisplayName = model.DisplayName
	r.Headline = model.Headline
	r.Bio = model.Bio
	r.Avatar = model.Avatar
	r.HourlyRateCents = model.HourlyRateCents
	r.Currency = model.Currency
	r.Rating = model.Rating
	r.RatingCount = model.RatingCount
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetListenersResponse struct {
	Success   bool               `json:"success"`
	Listeners []ListenerResponse `json:"listeners"`
	TotalPage int                `json:"totalPage"`
	TotalData int                `json:"totalData"`
}

func (r *GetListenersResponse) FromModels(models []model.Listener, totalData, limit int) {
	r.Success = true
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Listeners = make([]ListenerResponse, len(models))
	for i, mod := range models {
		r.Listeners[i].FromModel(mod)
	}
}
