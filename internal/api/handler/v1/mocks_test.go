package v1

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/middleware"
	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	admin     = domain.User{ID: 1, Email: "admin@example.com", Name: "Admin", IsAdmin: true, IsOrganizer: true}
	organizer = domain.User{ID: 2, Email: "org@example.com", Name: "Olivia", IsOrganizer: true}
	attendee  = domain.User{ID: 3, Email: "jane@example.com", Name: "Jane"}
)

type mockUserService map[uint]domain.User

func (m mockUserService) GetUser(_ context.Context, id uint) (domain.User, error) {
	user, ok := m[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}
	return user, nil
}

var users = mockUserService{admin.ID: admin, organizer.ID: organizer, attendee.ID: attendee}

// as authenticates the request as user, bypassing JWT verification.
func as(user domain.User) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if user.ID != 0 {
			ctx.Set(middleware.UserIDKey, user.ID)
		}
		ctx.Next()
	}
}

func serve(r *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

type mockAuthService struct {
	signup func(user domain.User) (domain.User, error)
	login  func(email, password string) (domain.User, error)
}

func (m *mockAuthService) Signup(_ context.Context, user domain.User) (domain.User, error) {
	return m.signup(user)
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (domain.User, error) {
	return m.login(email, password)
}

type mockEventService struct {
	EventService

	submit    func(actor domain.User, event domain.Event) (domain.Event, error)
	finish    func(actor domain.User, id uint) (domain.Event, error)
	getBySlug func(slug string) (domain.Event, error)
}

func (m *mockEventService) Submit(_ context.Context, actor domain.User, event domain.Event) (domain.Event, error) {
	return m.submit(actor, event)
}

func (m *mockEventService) Finish(_ context.Context, actor domain.User, id uint) (domain.Event, error) {
	return m.finish(actor, id)
}

func (m *mockEventService) GetBySlug(_ context.Context, slug string) (domain.Event, error) {
	return m.getBySlug(slug)
}

type mockPosterService struct {
	upload func(actor domain.User, eventID uint, upload domain.Upload) (domain.Event, error)
}

func (m *mockPosterService) Upload(_ context.Context, actor domain.User, eventID uint, upload domain.Upload) (domain.Event, error) {
	return m.upload(actor, eventID, upload)
}

type mockRegistrationService struct {
	RegistrationService

	register func(slug string, reg domain.Registration) (domain.Participant, error)
	export   func(actor domain.User, eventID uint) (string, []byte, error)
	lookup   func(email string) ([]domain.Participant, error)
	proof    func(actor domain.User, participantID uint) (domain.File, error)
}

func (m *mockRegistrationService) PaymentProof(_ context.Context, actor domain.User, participantID uint) (domain.File, error) {
	return m.proof(actor, participantID)
}

func (m *mockRegistrationService) Register(_ context.Context, slug string, reg domain.Registration) (domain.Participant, error) {
	return m.register(slug, reg)
}

func (m *mockRegistrationService) ExportParticipants(_ context.Context, actor domain.User, eventID uint) (string, []byte, error) {
	return m.export(actor, eventID)
}

func (m *mockRegistrationService) LookupByEmail(_ context.Context, email string) ([]domain.Participant, error) {
	return m.lookup(email)
}

type mockCertificateService struct {
	issue func(actor domain.User, token string) (domain.Certificate, error)
}

func (m *mockCertificateService) Issue(_ context.Context, actor domain.User, token string) (domain.Certificate, error) {
	return m.issue(actor, token)
}
