package response

import "github.com/portalevent/portal-api/internal/domain"

type RegistrationResponse struct {
	domain.Participant
	TicketURL string `json:"ticket_url"`
}

type BlastEmailResponse struct {
	Recipients int `json:"recipients"`
}

type EventResponse struct {
	domain.Event
	IsFree    bool   `json:"is_free"`
	PosterURL string `json:"poster_url,omitempty"`
}

// NewEventResponse resolves the poster against uploadsPrefix, the path the
// stored files are served under.
func NewEventResponse(e domain.Event, uploadsPrefix string) EventResponse {
	resp := EventResponse{
		Event:  e,
		IsFree: e.IsFree(),
	}
	if e.PosterRef != "" {
		resp.PosterURL = uploadsPrefix + "/" + e.PosterRef
	}

	return resp
}

func NewEventResponses(events []domain.Event, uploadsPrefix string) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e, uploadsPrefix))
	}

	return out
}

type RevenueResponse struct {
	EventID uint  `json:"event_id"`
	Revenue int64 `json:"revenue"`
}
