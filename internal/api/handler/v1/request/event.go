package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/portalevent/portal-api/internal/domain"
)

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category" enums:"seminar,competition,workshop"`
	DateTime    time.Time `json:"date_time" format:"date-time"`
	Location    string    `json:"location"`
	Price       int64     `json:"price" minimum:"0"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Category, validation.Required, validation.In("seminar", "competition", "workshop")),
		validation.Field(&req.DateTime, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Price, validation.Min(int64(0))),
	)
}

func (req *CreateEventRequest) ToDomain() domain.Event {
	return domain.Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.EventCategory(req.Category),
		DateTime:    req.DateTime,
		Location:    req.Location,
		Price:       req.Price,
	}
}

// UpdateEventRequest only touches the fields that are present.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category" enums:"seminar,competition,workshop"`
	DateTime    *time.Time `json:"date_time" format:"date-time"`
	Location    *string    `json:"location"`
	Price       *int64     `json:"price" minimum:"0"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&req.Category, validation.NilOrNotEmpty, validation.In("seminar", "competition", "workshop")),
		validation.Field(&req.Location, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&req.Price, validation.Min(int64(0))),
	)
}

func (req *UpdateEventRequest) ToDomain() domain.EventChanges {
	changes := domain.EventChanges{
		Title:       req.Title,
		Description: req.Description,
		DateTime:    req.DateTime,
		Location:    req.Location,
		Price:       req.Price,
	}
	if req.Category != nil {
		category := domain.EventCategory(*req.Category)
		changes.Category = &category
	}

	return changes
}
