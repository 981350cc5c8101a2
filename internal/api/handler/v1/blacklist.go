package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/handler/v1/request"
	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/domain"
)

type BlacklistService interface {
	Add(ctx context.Context, actor domain.User, email, reason string) (domain.BlacklistEntry, error)
	Remove(ctx context.Context, actor domain.User, email string) error
	List(ctx context.Context, actor domain.User) ([]domain.BlacklistEntry, error)
}

type BlacklistHandler struct {
	svc  BlacklistService
	uSvc UserService
}

func NewBlacklistHandler(svc BlacklistService, uSvc UserService) *BlacklistHandler {
	return &BlacklistHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListBlacklist godoc
// @Summary      List blacklisted emails
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.BlacklistEntry
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/blacklist [get]
// @Security     BearerAuth
func (h *BlacklistHandler) HandleListBlacklist(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entries, err := h.svc.List(ctx.Request.Context(), user)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListBlacklist -> h.svc.List", err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

// HandleAddBlacklist godoc
// @Summary      Blacklist an email
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      request.BlacklistRequest  true  "Entry"
// @Success      201    {object}  domain.BlacklistEntry
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /admin/blacklist [post]
// @Security     BearerAuth
func (h *BlacklistHandler) HandleAddBlacklist(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.BlacklistRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.Add(ctx.Request.Context(), user, input.Email, input.Reason)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleAddBlacklist -> h.svc.Add", err)
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandleRemoveBlacklist godoc
// @Summary      Remove an email from the blacklist
// @Tags         admin
// @Param        email  path  string  true  "Email"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/blacklist/{email} [delete]
// @Security     BearerAuth
func (h *BlacklistHandler) HandleRemoveBlacklist(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Remove(ctx.Request.Context(), user, ctx.Param("email")); err != nil {
		renderServiceErr(ctx, "v1.HandleRemoveBlacklist -> h.svc.Remove", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
