package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/handler/v1/request"
	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/domain"
)

const (
	paymentProofField = "payment_proof"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type RegistrationService interface {
	Register(ctx context.Context, eventSlug string, reg domain.Registration) (domain.Participant, error)
	VerifyPayment(ctx context.Context, actor domain.User, participantID uint) (domain.Participant, error)
	ScanValidate(ctx context.Context, actor domain.User, token string) (domain.Participant, error)
	LookupByEmail(ctx context.Context, email string) ([]domain.Participant, error)
	MyRegistrations(ctx context.Context, actor domain.User) ([]domain.Participant, error)
	ListParticipants(ctx context.Context, actor domain.User, eventID uint) ([]domain.Participant, error)
	ExportParticipants(ctx context.Context, actor domain.User, eventID uint) (string, []byte, error)
	BlastEmail(ctx context.Context, actor domain.User, eventID uint, subject, message string) (int, error)
	Revenue(ctx context.Context, actor domain.User, eventID uint) (int64, error)
	PaymentProof(ctx context.Context, actor domain.User, participantID uint) (domain.File, error)
}

type RegistrationHandler struct {
	svc            RegistrationService
	uSvc           UserService
	uploadsPrefix  string
	maxUploadBytes int64
}

func NewRegistrationHandler(svc RegistrationService, uSvc UserService, uploadsPrefix string, maxUploadBytes int64) *RegistrationHandler {
	return &RegistrationHandler{
		svc:            svc,
		uSvc:           uSvc,
		uploadsPrefix:  strings.TrimRight(uploadsPrefix, "/"),
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleRegister godoc
// @Summary      Register for an event
// @Description  Multipart form. Paid events require a payment_proof file (JPG, PNG or PDF).
// @Tags         registrations
// @Accept       multipart/form-data
// @Produce      json
// @Param        slug           path      string  true   "Event slug"
// @Param        full_name      formData  string  true   "Full name"
// @Param        email          formData  string  true   "Email"
// @Param        phone          formData  string  true   "Phone"
// @Param        institution    formData  string  false  "Institution"
// @Param        payment_proof  formData  file    false  "Payment proof"
// @Success      201  {object}  response.RegistrationResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{slug}/register [post]
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	var input request.RegisterRequest
	if err := ctx.ShouldBind(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	proof, err := h.readPaymentProof(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	participant, err := h.svc.Register(ctx.Request.Context(), ctx.Param("slug"), domain.Registration{
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		Institution:  input.Institution,
		PaymentProof: proof,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRegister -> h.svc.Register", err)
		return
	}

	ctx.JSON(http.StatusCreated, h.registrationResponse(participant))
}

// HandleLookup godoc
// @Summary      Find tickets by email
// @Description  Returns every registration made with the email, newest first. Rate limited.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        input  body      request.LookupRequest  true  "Email"
// @Success      200    {array}   response.RegistrationResponse
// @Failure      400    {object}  response.Err
// @Failure      429    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /tickets/lookup [post]
func (h *RegistrationHandler) HandleLookup(ctx *gin.Context) {
	var input request.LookupRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	participants, err := h.svc.LookupByEmail(ctx.Request.Context(), input.Email)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleLookup -> h.svc.LookupByEmail", err)
		return
	}

	// Lookup is unauthenticated, so payment proofs never appear in its response.
	for i := range participants {
		participants[i].PaymentProofRef = ""
	}

	ctx.JSON(http.StatusOK, h.registrationResponses(participants))
}

// HandleMyRegistrations godoc
// @Summary      List own registrations
// @Tags         registrations
// @Produce      json
// @Success      200  {array}   response.RegistrationResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /me/registrations [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleMyRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participants, err := h.svc.MyRegistrations(ctx.Request.Context(), user)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleMyRegistrations -> h.svc.MyRegistrations", err)
		return
	}

	ctx.JSON(http.StatusOK, h.registrationResponses(participants))
}

// HandleScan godoc
// @Summary      Validate a scanned ticket
// @Tags         registrations
// @Produce      json
// @Param        token  path      string  true  "Validation token"
// @Success      200    {object}  response.RegistrationResponse
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /scan/{token} [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleScan(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participant, err := h.svc.ScanValidate(ctx.Request.Context(), user, ctx.Param("token"))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleScan -> h.svc.ScanValidate", err)
		return
	}

	ctx.JSON(http.StatusOK, h.registrationResponse(participant))
}

// HandleListParticipants godoc
// @Summary      List participants of an event
// @Tags         dashboard
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   response.RegistrationResponse
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID}/participants [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleListParticipants(ctx *gin.Context) {
	user, eventID, ok := h.actorAndEvent(ctx)
	if !ok {
		return
	}

	participants, err := h.svc.ListParticipants(ctx.Request.Context(), user, eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListParticipants -> h.svc.ListParticipants", err)
		return
	}

	ctx.JSON(http.StatusOK, h.registrationResponses(participants))
}

// HandleExportParticipants godoc
// @Summary      Export participants as a spreadsheet
// @Tags         dashboard
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {file}    file
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID}/participants/export [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleExportParticipants(ctx *gin.Context) {
	user, eventID, ok := h.actorAndEvent(ctx)
	if !ok {
		return
	}

	filename, content, err := h.svc.ExportParticipants(ctx.Request.Context(), user, eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleExportParticipants -> h.svc.ExportParticipants", err)
		return
	}

	attachment(ctx, xlsxContentType, filename, content)
}

// HandleRevenue godoc
// @Summary      Current revenue of an event
// @Tags         dashboard
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.RevenueResponse
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID}/revenue [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleRevenue(ctx *gin.Context) {
	user, eventID, ok := h.actorAndEvent(ctx)
	if !ok {
		return
	}

	revenue, err := h.svc.Revenue(ctx.Request.Context(), user, eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRevenue -> h.svc.Revenue", err)
		return
	}

	ctx.JSON(http.StatusOK, response.RevenueResponse{EventID: eventID, Revenue: revenue})
}

// HandleBlastEmail godoc
// @Summary      Email every participant of an event
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        input    body      request.BlastEmailRequest  true  "Message"
// @Success      202      {object}  response.BlastEmailResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dashboard/events/{eventID}/blast [post]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleBlastEmail(ctx *gin.Context) {
	user, eventID, ok := h.actorAndEvent(ctx)
	if !ok {
		return
	}

	var input request.BlastEmailRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	recipients, err := h.svc.BlastEmail(ctx.Request.Context(), user, eventID, input.Subject, input.Message)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleBlastEmail -> h.svc.BlastEmail", err)
		return
	}

	ctx.JSON(http.StatusAccepted, response.BlastEmailResponse{Recipients: recipients})
}

// HandleVerifyPayment godoc
// @Summary      Verify a participant's payment
// @Tags         dashboard
// @Produce      json
// @Param        participantID  path      int  true  "Participant ID"
// @Success      200            {object}  response.RegistrationResponse
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /dashboard/participants/{participantID}/verify [post]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleVerifyPayment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participantID, respErr := parseUintParam(ctx, "participantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participant, err := h.svc.VerifyPayment(ctx.Request.Context(), user, participantID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleVerifyPayment -> h.svc.VerifyPayment", err)
		return
	}

	ctx.JSON(http.StatusOK, h.registrationResponse(participant))
}

// HandleDownloadPaymentProof godoc
// @Summary      Download a participant's payment proof
// @Description  Available to the event's organizer and admins.
// @Tags         dashboard
// @Produce      octet-stream
// @Param        participantID  path      int  true  "Participant ID"
// @Success      200            {file}    file
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /dashboard/participants/{participantID}/payment-proof [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleDownloadPaymentProof(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participantID, respErr := parseUintParam(ctx, "participantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	file, err := h.svc.PaymentProof(ctx.Request.Context(), user, participantID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleDownloadPaymentProof -> h.svc.PaymentProof", err)
		return
	}

	attachment(ctx, http.DetectContentType(file.Content), file.Filename, file.Content)
}

func (h *RegistrationHandler) actorAndEvent(ctx *gin.Context) (domain.User, uint, bool) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return domain.User{}, 0, false
	}

	eventID, respErr := parseUintParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return domain.User{}, 0, false
	}

	return user, eventID, true
}

func (h *RegistrationHandler) readPaymentProof(ctx *gin.Context) (*domain.Upload, error) {
	return readUpload(ctx, paymentProofField, h.maxUploadBytes)
}

func (h *RegistrationHandler) registrationResponse(p domain.Participant) response.RegistrationResponse {
	return response.RegistrationResponse{
		Participant: p,
		TicketURL:   h.uploadsPrefix + "/" + p.TicketImageRef,
	}
}

func (h *RegistrationHandler) registrationResponses(participants []domain.Participant) []response.RegistrationResponse {
	out := make([]response.RegistrationResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, h.registrationResponse(p))
	}

	return out
}
