package model

import (
	"time"

	"justhear/shared/constant"
	"justhear/shared/model"
	"justhear/shared/timezone"
)

const (
	TableName  = "slots"
	EntityName = "slot"

	FieldID              = "id"
	FieldListenerID      = "listener_id"
	FieldDate            = "date"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldStatus          = "status"
	FieldPriceCents      = "price_cents"
	FieldCurrency        = "currency"
	FieldMeetingLink     = "meeting_link"
	FieldMeetingID       = "meeting_id"
	FieldMeetingProvider = "meeting_provider"
)

const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// allowedTransitions holds the slot lifecycle. Completed and cancelled
// are terminal.
var allowedTransitions = map[string][]string{
	StatusAvailable: {StatusReserved, StatusCancelled},
	StatusReserved:  {StatusAvailable, StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
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

type Slot struct {
	ID              string    `db:"id"`
	ListenerID      string    `db:"listener_id"`
	Date            time.Time `db:"date"`
	StartTime       string    `db:"start_time"`
	EndTime         string    `db:"end_time"`
	Status          string    `db:"status"`
	PriceCents      int64     `db:"price_cents"`
	Currency        string    `db:"currency"`
	MeetingLink     *string   `db:"meeting_link"`
	MeetingID       *string   `db:"meeting_id"`
	MeetingProvider *string   `db:"meeting_provider"`
	model.Metadata
}

// StartsAt combines the slot date and start time in the application timezone.
func (s *Slot) StartsAt() time.Time {
	return s.at(s.StartTime)
}

const midnight = "00:00"

// EndsAt combines the slot date and end time in the application timezone.
// Only a literal 00:00 end means midnight of the following day; any other
// end time at or before the start is an invalid range, not an overnight slot.
func (s *Slot) EndsAt() time.Time {
	end := s.at(s.EndTime)
	if s.EndTime == midnight {
		end = end.AddDate(0, 0, 1)
	}

	return end
}

// EndBound is the end time as a comparable HH:MM string. A midnight end
// reads as 24:00 so same-day range comparisons stay ordered.
func (s *Slot) EndBound() string {
	if s.EndTime == midnight {
		return "24:00"
	}

	return s.EndTime
}

func (s *Slot) at(hhmm string) time.Time {
	clock, err := time.Parse(constant.TimeOnlyFormat, hhmm)
	if err != nil {
		return time.Time{}
	}

	loc := timezone.GetLocation()

	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}

// IsPast reports whether the slot has already ended at the given instant.
func (s *Slot) IsPast(now time.Time) bool {
	return !s.EndsAt().After(now)
}

// EffectiveStatus is the status a reader should see. Reserved slots whose
// end time has passed read as completed even before the row is updated.
func (s *Slot) EffectiveStatus(now time.Time) string {
	if s.Status == StatusReserved && s.IsPast(now) {
		return StatusCompleted
	}

	return s.Status
}
