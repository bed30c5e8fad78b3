package dto

import (
	"time"

	"justhear/internal/domains/slot/model"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	gModel "justhear/shared/model"
	"justhear/shared/timezone"

	"github.com/google/uuid"
)

type CreateSlotRequest struct {
	ListenerID string `json:"listenerId" validate:"required,uuid4"`
	Date       string `json:"date"       validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"startTime"  validate:"required,datetime=15:04"`
	EndTime    string `json:"endTime"    validate:"required,datetime=15:04"`
	PriceCents int64  `json:"priceCents" validate:"omitempty,min=0"`
	Currency   string `json:"currency"   validate:"omitempty,len=3"`
}

func (c *CreateSlotRequest) ToModel(user string, currency string) model.Slot {
	date, _ := timezone.Parse(constant.DateOnlyFormat, c.Date)

	if c.Currency != constant.Empty {
		currency = c.Currency
	}

	return model.Slot{
		ID:         uuid.NewString(),
		ListenerID: c.ListenerID,
		Date:       date,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		Status:     model.StatusAvailable,
		PriceCents: c.PriceCents,
		Currency:   currency,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type TransitionSlotRequest struct {
	Status string `json:"status" validate:"required,oneof=available reserved completed cancelled"`
}

type SlotResponse struct {
	ID              string  `json:"id"`
	ListenerID      string  `json:"listenerId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Status          string  `json:"status"`
	PriceCents      int64   `json:"priceCents"`
	Currency        string  `json:"currency"`
	MeetingLink     *string `json:"meetingLink,omitempty"`
	MeetingProvider *string `json:"meetingProvider,omitempty"`
	gDto.Metadata
}

func (r *SlotResponse) FromModel(mod model.Slot, now time.Time) {
	r.ID = mod.ID
	r.ListenerID = mod.ListenerID
	r.Date = timezone.Format(mod.Date, constant.DateOnlyFormat)
	r.StartTime = mod.StartTime
	r.EndTime = mod.EndTime
	r.Status = mod.EffectiveStatus(now)
	r.PriceCents = mod.PriceCents
	r.Currency = mod.Currency
	r.MeetingLink = mod.MeetingLink
	r.MeetingProvider = mod.MeetingProvider
	r.Metadata.FromModel(mod.Metadata)
}

type GetAvailableSlotsResponse struct {
	Success    bool            `json:"success"`
	Slots      []SlotResponse  `json:"slots"`
	Pagination gDto.Pagination `json:"pagination"`
}

func (r *GetAvailableSlotsResponse) FromModels(models []model.Slot, params gDto.QueryParams, total int) {
	r.Success = true
	r.Pagination = gDto.NewPagination(params, total)

	now := timezone.Now()
	r.Slots = make([]SlotResponse, len(models))
	for i, mod := range models {
		r.Slots[i].FromModel(mod, now)
	}
}
