package service

import (
	"context"
	"sync"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/notify"
	"github.com/portalevent/portal-api/internal/repository"
)

type mockEventRepository struct {
	create          func(event domain.Event) (domain.Event, error)
	update          func(event domain.Event) (domain.Event, error)
	transition      func(id uint, from, to domain.EventStatus) (domain.Event, error)
	findByID        func(id uint) (domain.Event, error)
	findBySlug      func(slug string) (domain.Event, error)
	listActive      func() ([]domain.Event, error)
	listPending     func() ([]domain.Event, error)
	listByOrganizer func(organizerID uint) ([]domain.EventSummary, error)
}

func (m *mockEventRepository) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	return m.create(event)
}

func (m *mockEventRepository) Update(_ context.Context, event domain.Event) (domain.Event, error) {
	return m.update(event)
}

func (m *mockEventRepository) Transition(_ context.Context, id uint, from, to domain.EventStatus) (domain.Event, error) {
	return m.transition(id, from, to)
}

func (m *mockEventRepository) FindByID(_ context.Context, id uint) (domain.Event, error) {
	return m.findByID(id)
}

func (m *mockEventRepository) FindBySlug(_ context.Context, slug string) (domain.Event, error) {
	return m.findBySlug(slug)
}

func (m *mockEventRepository) ListActive(_ context.Context) ([]domain.Event, error) {
	return m.listActive()
}

func (m *mockEventRepository) ListPending(_ context.Context) ([]domain.Event, error) {
	return m.listPending()
}

func (m *mockEventRepository) ListByOrganizer(_ context.Context, organizerID uint) ([]domain.EventSummary, error) {
	return m.listByOrganizer(organizerID)
}

type mockUserRepository struct {
	create      func(user domain.User) (domain.User, error)
	findByID    func(id uint) (domain.User, error)
	findByEmail func(email string) (domain.User, error)
	updateRoles func(user domain.User) (domain.User, error)
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	return m.create(user)
}

func (m *mockUserRepository) FindByID(_ context.Context, id uint) (domain.User, error) {
	return m.findByID(id)
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	return m.findByEmail(email)
}

func (m *mockUserRepository) UpdateRoles(_ context.Context, user domain.User) (domain.User, error) {
	return m.updateRoles(user)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Dispatch(notification notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

type mockBlacklist struct {
	contains func(email string) (bool, error)
}

func (m *mockBlacklist) Contains(_ context.Context, email string) (bool, error) {
	return m.contains(email)
}

type mockTicketIssuer struct {
	issue func() (domain.TicketIdentity, error)
}

func (m *mockTicketIssuer) Issue() (domain.TicketIdentity, error) {
	return m.issue()
}

type mockFileStore struct {
	saveTicketImage  func(token string, png []byte) (string, error)
	savePaymentProof func(upload domain.Upload) (string, error)
	savePoster       func(upload domain.Upload) (string, error)
	read             func(ref string) ([]byte, error)
	removed          []string
}

func (m *mockFileStore) SavePoster(upload domain.Upload) (string, error) {
	return m.savePoster(upload)
}

func (m *mockFileStore) Read(ref string) ([]byte, error) {
	return m.read(ref)
}

func (m *mockFileStore) SaveTicketImage(token string, png []byte) (string, error) {
	return m.saveTicketImage(token, png)
}

func (m *mockFileStore) SavePaymentProof(upload domain.Upload) (string, error) {
	return m.savePaymentProof(upload)
}

func (m *mockFileStore) Remove(ref string) error {
	m.removed = append(m.removed, ref)
	return nil
}

type mockRenderer struct {
	render func(fields domain.CertificateFields) ([]byte, error)
}

func (m *mockRenderer) Render(fields domain.CertificateFields) ([]byte, error) {
	return m.render(fields)
}

// memoryParticipants is an in-memory ParticipantRepository with unique tokens.
type memoryParticipants struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]domain.Participant
	events map[uint]domain.Event
}

func newMemoryParticipants(events ...domain.Event) *memoryParticipants {
	m := &memoryParticipants{
		rows:   make(map[uint]domain.Participant),
		events: make(map[uint]domain.Event),
	}
	for _, e := range events {
		m.events[e.ID] = e
	}

	return m
}

func (m *memoryParticipants) withEvent(p domain.Participant) domain.Participant {
	if e, ok := m.events[p.EventID]; ok {
		p.Event = &e
	}
	return p
}

func (m *memoryParticipants) Create(_ context.Context, p domain.Participant) (domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.ValidationToken == p.ValidationToken {
			return domain.Participant{}, repository.ErrValidationTokenExists
		}
	}

	m.nextID++
	p.ID = m.nextID
	p.Event = nil
	m.rows[p.ID] = p

	return p, nil
}

func (m *memoryParticipants) MarkVerified(_ context.Context, id uint) (domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.rows[id]
	if !ok {
		return domain.Participant{}, ErrParticipantNotFound
	}
	p.IsVerified = true
	m.rows[id] = p

	return m.withEvent(p), nil
}

func (m *memoryParticipants) FindByID(_ context.Context, id uint) (domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.rows[id]
	if !ok {
		return domain.Participant{}, ErrParticipantNotFound
	}

	return m.withEvent(p), nil
}

func (m *memoryParticipants) FindByToken(_ context.Context, token string) (domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.rows {
		if p.ValidationToken == token {
			return m.withEvent(p), nil
		}
	}

	return domain.Participant{}, ErrParticipantNotFound
}

func (m *memoryParticipants) FindByEmail(_ context.Context, email string) ([]domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []domain.Participant
	for _, p := range m.rows {
		if p.Email == email {
			found = append(found, m.withEvent(p))
		}
	}

	return found, nil
}

func (m *memoryParticipants) FindByEvent(_ context.Context, eventID uint) ([]domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []domain.Participant
	for id := uint(1); id <= m.nextID; id++ {
		if p, ok := m.rows[id]; ok && p.EventID == eventID {
			found = append(found, p)
		}
	}

	return found, nil
}

func (m *memoryParticipants) CountVerified(_ context.Context, eventID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, p := range m.rows {
		if p.EventID == eventID && p.IsVerified {
			count++
		}
	}

	return count, nil
}

func (m *memoryParticipants) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type staticEvents map[uint]domain.Event

func (e staticEvents) FindByID(_ context.Context, id uint) (domain.Event, error) {
	event, ok := e[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}
	return event, nil
}

func (e staticEvents) FindBySlug(_ context.Context, slug string) (domain.Event, error) {
	for _, event := range e {
		if event.Slug == slug {
			return event, nil
		}
	}
	return domain.Event{}, ErrEventNotFound
}
