package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/handler/v1/request"
	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/domain"
)

type EventService interface {
	Submit(ctx context.Context, actor domain.User, event domain.Event) (domain.Event, error)
	Approve(ctx context.Context, actor domain.User, id uint) (domain.Event, error)
	Reject(ctx context.Context, actor domain.User, id uint) (domain.Event, error)
	Finish(ctx context.Context, actor domain.User, id uint) (domain.Event, error)
	Update(ctx context.Context, actor domain.User, id uint, changes domain.EventChanges) (domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (domain.Event, error)
	ListPublic(ctx context.Context) ([]domain.Event, error)
	Dashboard(ctx context.Context, actor domain.User) ([]domain.EventSummary, error)
	ApprovalQueue(ctx context.Context, actor domain.User) ([]domain.Event, error)
}

const posterField = "poster"

type PosterService interface {
	Upload(ctx context.Context, actor domain.User, eventID uint, upload domain.Upload) (domain.Event, error)
}

type EventHandler struct {
	svc            EventService
	posters        PosterService
	uSvc           UserService
	uploadsPrefix  string
	maxUploadBytes int64
}

func NewEventHandler(svc EventService, posters PosterService, uSvc UserService, uploadsPrefix string, maxUploadBytes int64) *EventHandler {
	return &EventHandler{
		svc:            svc,
		posters:        posters,
		uSvc:           uSvc,
		uploadsPrefix:  strings.TrimRight(uploadsPrefix, "/"),
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleListEvents godoc
// @Summary      List active events
// @Description  Public index of approved events, most recent date first.
// @Tags         events
// @Produce      json
// @Success      200  {array}   response.EventResponse
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListPublic(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListEvents -> h.svc.ListPublic", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEventResponses(events, h.uploadsPrefix))
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        slug  path      string  true  "Event slug"
// @Success      200   {object}  response.EventResponse
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{slug} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	event, err := h.svc.GetBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetEvent -> h.svc.GetBySlug", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEventResponse(event, h.uploadsPrefix))
}

// HandleDashboard godoc
// @Summary      List own events
// @Description  Every event submitted by the authenticated organizer with participant counts and revenue.
// @Tags         dashboard
// @Produce      json
// @Success      200  {array}   domain.EventSummary
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dashboard/events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleDashboard(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summaries, err := h.svc.Dashboard(ctx.Request.Context(), user)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleDashboard -> h.svc.Dashboard", err)
		return
	}

	ctx.JSON(http.StatusOK, summaries)
}

// HandleSubmitEvent godoc
// @Summary      Submit an event
// @Description  Organizer submissions wait for admin approval, admin submissions go live immediately.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event details"
// @Success      201    {object}  response.EventResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /dashboard/events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleSubmitEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Submit(ctx.Request.Context(), user, input.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSubmitEvent -> h.svc.Submit", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.NewEventResponse(event, h.uploadsPrefix))
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Partial update by the owning organizer. Slug and status never change.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        input    body      request.UpdateEventRequest  true  "Changed fields"
// @Success      200      {object}  response.EventResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseUintParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Update(ctx.Request.Context(), user, eventID, input.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateEvent -> h.svc.Update", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEventResponse(event, h.uploadsPrefix))
}

// HandleUploadPoster godoc
// @Summary      Upload an event poster
// @Description  Replaces the poster of an event owned by the caller. JPG, PNG or WEBP.
// @Tags         dashboard
// @Accept       multipart/form-data
// @Produce      json
// @Param        eventID  path      int   true  "Event ID"
// @Param        poster   formData  file  true  "Poster image"
// @Success      200      {object}  response.EventResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID}/poster [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUploadPoster(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseUintParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	poster, err := readUpload(ctx, posterField, h.maxUploadBytes)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if poster == nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("%s: a file is required", posterField)))
		return
	}

	event, err := h.posters.Upload(ctx.Request.Context(), user, eventID, *poster)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUploadPoster -> h.posters.Upload", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEventResponse(event, h.uploadsPrefix))
}

// HandleFinishEvent godoc
// @Summary      Finish an event
// @Description  Marks an active event as finished, which unlocks certificates.
// @Tags         dashboard
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.EventResponse
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID}/finish [post]
// @Security     BearerAuth
func (h *EventHandler) HandleFinishEvent(ctx *gin.Context) {
	h.transition(ctx, "v1.HandleFinishEvent -> h.svc.Finish", h.svc.Finish)
}

// HandleApprovalQueue godoc
// @Summary      List pending events
// @Description  Admin approval queue, oldest submission first.
// @Tags         admin
// @Produce      json
// @Success      200  {array}   response.EventResponse
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/events/pending [get]
// @Security     BearerAuth
func (h *EventHandler) HandleApprovalQueue(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.svc.ApprovalQueue(ctx.Request.Context(), user)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleApprovalQueue -> h.svc.ApprovalQueue", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEventResponses(events, h.uploadsPrefix))
}

// HandleApproveEvent godoc
// @Summary      Approve a pending event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.EventResponse
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events/{eventID}/approve [post]
// @Security     BearerAuth
func (h *EventHandler) HandleApproveEvent(ctx *gin.Context) {
	h.transition(ctx, "v1.HandleApproveEvent -> h.svc.Approve", h.svc.Approve)
}

// HandleRejectEvent godoc
// @Summary      Reject a pending event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.EventResponse
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events/{eventID}/reject [post]
// @Security     BearerAuth
func (h *EventHandler) HandleRejectEvent(ctx *gin.Context) {
	h.transition(ctx, "v1.HandleRejectEvent -> h.svc.Reject", h.svc.Reject)
}

type transitionFunc func(ctx context.Context, actor domain.User, id uint) (domain.Event, error)

func (h *EventHandler) transition(ctx *gin.Context, op string, fn transitionFunc) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseUintParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := fn(ctx.Request.Context(), user, eventID)
	if err != nil {
		renderServiceErr(ctx, op, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewEventResponse(event, h.uploadsPrefix))
}
