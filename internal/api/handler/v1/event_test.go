package v1

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/service"
)

func newEventRouter(svc EventService, actor domain.User) *gin.Engine {
	return newEventRouterWithPosters(svc, nil, actor)
}

func newEventRouterWithPosters(svc EventService, posters PosterService, actor domain.User) *gin.Engine {
	h := NewEventHandler(svc, posters, users, "/uploads/", 16)

	r := gin.New()
	r.GET("/events/:slug", h.HandleGetEvent)
	r.POST("/dashboard/events", as(actor), h.HandleSubmitEvent)
	r.POST("/dashboard/events/:eventID/finish", as(actor), h.HandleFinishEvent)
	r.PUT("/dashboard/events/:eventID/poster", as(actor), h.HandleUploadPoster)

	return r
}

func TestEventHandler_HandleFinishEvent_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "ok", err: nil, wantCode: http.StatusOK},
		{name: "not owner", err: service.ErrForbidden, wantCode: http.StatusForbidden},
		{name: "not found", err: fmt.Errorf("s.repo.FindByID -> %w", service.ErrEventNotFound), wantCode: http.StatusNotFound},
		{name: "wrong status", err: service.ErrInvalidTransition, wantCode: http.StatusConflict},
		{name: "unexpected", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{finish: func(actor domain.User, id uint) (domain.Event, error) {
				assert.Equal(t, organizer.ID, actor.ID)
				assert.Equal(t, uint(5), id)
				return domain.Event{ID: id, Status: domain.StatusFinished}, tt.err
			}}

			rec := serve(newEventRouter(svc, organizer), http.MethodPost, "/dashboard/events/5/finish", nil, "")
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestEventHandler_RequiresAuthenticatedUser(t *testing.T) {
	svc := &mockEventService{finish: func(domain.User, uint) (domain.Event, error) {
		t.Fatal("service must not be called")
		return domain.Event{}, nil
	}}

	rec := serve(newEventRouter(svc, domain.User{}), http.MethodPost, "/dashboard/events/5/finish", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(newEventRouter(svc, organizer), http.MethodPost, "/dashboard/events/abc/finish", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandler_HandleSubmitEvent(t *testing.T) {
	var got domain.Event
	svc := &mockEventService{submit: func(actor domain.User, event domain.Event) (domain.Event, error) {
		got = event
		event.ID = 1
		event.Slug = "go-workshop-ab12"
		event.Status = domain.StatusPending
		return event, nil
	}}
	r := newEventRouter(svc, organizer)

	body := `{"title":"Go Workshop","category":"workshop","date_time":"2025-03-09T09:00:00Z","location":"Hall A","price":0}`
	rec := serve(r, http.MethodPost, "/dashboard/events", strings.NewReader(body), "application/json")

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.CategoryWorkshop, got.Category)
	assert.Contains(t, rec.Body.String(), `"is_free":true`)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	body = `{"title":"Go Workshop","category":"party","date_time":"2025-03-09T09:00:00Z","location":"Hall A"}`
	rec = serve(r, http.MethodPost, "/dashboard/events", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"title":"Go Workshop","category":"workshop","date_time":"2025-03-09T09:00:00Z","location":"Hall A","price":-1}`
	rec = serve(r, http.MethodPost, "/dashboard/events", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandler_HandleGetEvent_NotFound(t *testing.T) {
	svc := &mockEventService{getBySlug: func(slug string) (domain.Event, error) {
		return domain.Event{}, service.ErrEventNotFound
	}}

	rec := serve(newEventRouter(svc, domain.User{}), http.MethodGet, "/events/missing-ab12", nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing-ab12")
}

func TestEventHandler_HandleUploadPoster(t *testing.T) {
	var got domain.Upload
	posters := &mockPosterService{upload: func(actor domain.User, eventID uint, upload domain.Upload) (domain.Event, error) {
		if actor.ID != organizer.ID {
			return domain.Event{}, service.ErrForbidden
		}
		got = upload
		return domain.Event{ID: eventID, OrganizerID: actor.ID, PosterRef: "posters/p.png"}, nil
	}}

	posterForm := func(field string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		part, err := w.CreateFormFile(field, "poster.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("img"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return body, w.FormDataContentType()
	}

	body, contentType := posterForm("poster")
	rec := serve(newEventRouterWithPosters(nil, posters, organizer), http.MethodPut, "/dashboard/events/10/poster", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "poster.png", got.Filename)
	assert.Equal(t, []byte("img"), got.Data)
	assert.Contains(t, rec.Body.String(), `"poster_url":"/uploads/posters/p.png"`)

	body, contentType = posterForm("image")
	rec = serve(newEventRouterWithPosters(nil, posters, organizer), http.MethodPut, "/dashboard/events/10/poster", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = posterForm("poster")
	rec = serve(newEventRouterWithPosters(nil, posters, attendee), http.MethodPut, "/dashboard/events/10/poster", body, contentType)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
