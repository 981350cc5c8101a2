package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/portalevent/portal-api/internal/domain"
)

type CertificateRenderer interface {
	Render(fields domain.CertificateFields) ([]byte, error)
}

type TicketFinder interface {
	FindByToken(ctx context.Context, token string) (domain.Participant, error)
}

type CertificateService struct {
	participants TicketFinder
	events       EventFinder
	renderer     CertificateRenderer
}

func NewCertificateService(participants TicketFinder, events EventFinder, renderer CertificateRenderer) *CertificateService {
	return &CertificateService{
		participants: participants,
		events:       events,
		renderer:     renderer,
	}
}

// Issue renders the attendance certificate of the ticket holder. The guards
// run in a fixed order: ownership, event finished, payment verified.
func (s *CertificateService) Issue(ctx context.Context, actor domain.User, token string) (domain.Certificate, error) {
	if !actor.IsAuthenticated() {
		return domain.Certificate{}, ErrUnauthenticated
	}

	p, err := s.participants.FindByToken(ctx, token)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("s.participants.FindByToken -> %w", err)
	}

	if !strings.EqualFold(strings.TrimSpace(p.Email), strings.TrimSpace(actor.Email)) {
		return domain.Certificate{}, ErrAccessDenied
	}

	event := domain.Event{}
	if p.Event != nil {
		event = *p.Event
	} else {
		event, err = s.events.FindByID(ctx, p.EventID)
		if err != nil {
			return domain.Certificate{}, fmt.Errorf("s.events.FindByID -> %w", err)
		}
	}

	if event.Status != domain.StatusFinished {
		return domain.Certificate{}, ErrNotReady
	}
	if !p.IsVerified {
		return domain.Certificate{}, ErrNotEligible
	}

	fields := domain.CertificateFields{
		FullName:      p.FullName,
		CertificateID: p.CertificateID(),
		EventTitle:    event.Title,
		EventDate:     event.DateTime,
	}

	content, err := s.renderer.Render(fields)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("s.renderer.Render -> %w", err)
	}

	return domain.Certificate{
		Filename: fmt.Sprintf("certificate-%s.pdf", fields.CertificateID),
		Content:  content,
	}, nil
}
