package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

type Participant struct {
	ID              uint      `json:"id"`
	EventID         uint      `json:"event_id"`
	Event           *Event    `json:"event,omitempty"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Institution     string    `json:"institution,omitempty"`
	PaymentProofRef string    `json:"payment_proof_ref,omitempty"`
	IsVerified      bool      `json:"is_verified"`
	RegisteredAt    time.Time `json:"registered_at"`
	ValidationToken string    `json:"validation_token"`
	TicketImageRef  string    `json:"ticket_image_ref"`
}

func (p Participant) HasTicket() bool {
	return p.ValidationToken != "" && p.TicketImageRef != ""
}

// CertificateID is recomputed from stored fields on every call:
// {registration date}-{SLUGIFIED-NAME}-{zero padded id}.
func (p Participant) CertificateID() string {
	return fmt.Sprintf("%s-%s-%03d",
		p.RegisteredAt.Format("2006-01-02"),
		strings.ToUpper(slug.Make(p.FullName)),
		p.ID,
	)
}

// PaymentStatus is the label used in exports.
func (p Participant) PaymentStatus() string {
	if p.IsVerified {
		return "Paid"
	}
	return "Pending"
}

// TicketIdentity pairs a validation token with its scannable image.
type TicketIdentity struct {
	Token string
	Image []byte
}

// Upload is a file received from a submitter, e.g. a payment proof.
type Upload struct {
	Filename string
	Data     []byte
}

// Registration is what a person submits to register for an event.
type Registration struct {
	FullName     string
	Email        string
	Phone        string
	Institution  string
	PaymentProof *Upload
}
