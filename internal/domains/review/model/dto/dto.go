package dto

import (
	"justhear/internal/domains/review/model"
	"justhear/shared"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	gModel "justhear/shared/model"
	"justhear/shared/timezone"

	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	ReservationID string `json:"reservationId" validate:"required,uuid4"`
	Rating        int    `json:"rating"        validate:"required,min=1,max=5"`
	Comment       string `json:"comment"       validate:"omitempty,max=2000"`
	Anonymous     bool   `json:"anonymous"`
}

func (c *CreateReviewRequest) ToModel(userID, listenerID string) model.Review {
	return model.Review{
		ID:            uuid.NewString(),
		ReservationID: c.ReservationID,
		UserID:        userID,
		ListenerID:    listenerID,
		Rating:        c.Rating,
		Comment:       c.Comment,
		Anonymous:     c.Anonymous,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type ReviewResponse struct {
	ID         string `json:"id"`
	ListenerID string `json:"listenerId"`
	UserID     string `json:"userId,omitempty"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	Anonymous  bool   `json:"anonymous"`
	gDto.Metadata
}

// FromModel hides the reviewer identity when the review is anonymous.
func (r *ReviewResponse) FromModel(mod model.Review) {
	r.ID = mod.ID
	r.ListenerID = mod.ListenerID
	r.Rating = mod.Rating
	r.Comment = mod.Comment
	r.Anonymous = mod.Anonymous
	r.Metadata.FromModel(mod.Metadata)

	if !mod.Anonymous {
		r.UserID = mod.UserID
	} else {
		r.Metadata.CreatedBy = constant.Empty
		r.Metadata.ModifiedBy = constant.Empty
	}
}

type GetReviewsResponse struct {
	Success   bool             `json:"success"`
	Reviews   []ReviewResponse `json:"reviews"`
	TotalPage int              `json:"totalPage"`
	TotalData int              `json:"totalData"`
}

func (r *GetReviewsResponse) FromModels(models []model.Review, totalData, limit int) {
	r.Success = true
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reviews = make([]ReviewResponse, len(models))
	for i, mod := range models {
		r.Reviews[i].FromModel(mod)
	}
}
