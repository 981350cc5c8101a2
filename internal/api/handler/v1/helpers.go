package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/api/middleware"
	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	userID := ctx.GetUint(middleware.UserIDKey)
	if userID == 0 {
		return domain.User{}, response.ErrUnauthenticated(service.ErrUnauthenticated)
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrInvalidToken(fmt.Errorf("user %v no longer exists", userID))
		}

		err = fmt.Errorf("getUserFromContext -> uSvc.GetUser -> %w", err)
		return domain.User{}, response.ErrInternalServerError(err)
	}

	return user, nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, *response.Err) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || value == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, ctx.Param(name)))
	}

	return uint(value), nil
}

// renderServiceErr maps service sentinels onto HTTP errors. op names the
// failing call for the log line of unexpected errors.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.RenderErr(ctx, response.ErrBadRequest(validationErr.Err))
	case errors.Is(err, service.ErrUserEmailExists):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserEmailExists))
	case errors.Is(err, service.ErrUnauthenticated):
		response.RenderErr(ctx, response.ErrUnauthenticated(service.ErrUnauthenticated))
	case errors.Is(err, service.ErrBlacklisted):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrBlacklisted))
	case errors.Is(err, service.ErrForbidden):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
	case errors.Is(err, service.ErrAccessDenied):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrAccessDenied))
	case errors.Is(err, service.ErrNotReady):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotReady))
	case errors.Is(err, service.ErrNotEligible):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotEligible))
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "key", eventKey(ctx)))
	case errors.Is(err, service.ErrParticipantNotFound):
		response.RenderErr(ctx, response.ErrNotFound("participant", "key", participantKey(ctx)))
	case errors.Is(err, service.ErrNoPaymentProof):
		response.RenderErr(ctx, &response.Err{
			Err:            service.ErrNoPaymentProof,
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found.",
			ErrorText:      service.ErrNoPaymentProof.Error(),
		})
	case errors.Is(err, service.ErrBlacklistEntryNotFound):
		response.RenderErr(ctx, response.ErrNotFound("blacklist entry", "email", ctx.Param("email")))
	case errors.Is(err, service.ErrInvalidTransition):
		response.RenderErr(ctx, response.ErrConflict(service.ErrInvalidTransition))
	case errors.Is(err, service.ErrBlacklistEntryExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrBlacklistEntryExists))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func eventKey(ctx *gin.Context) string {
	if slug := ctx.Param("slug"); slug != "" {
		return slug
	}

	return ctx.Param("eventID")
}

func participantKey(ctx *gin.Context) string {
	if token := ctx.Param("token"); token != "" {
		return token
	}

	return ctx.Param("participantID")
}

// readUpload returns nil when no file was sent in field. Reads stop one byte
// past max so the store can reject oversized files.
func readUpload(ctx *gin.Context, field string, max int64) (*domain.Upload, error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("header.Open -> %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if max > 0 {
		r = io.LimitReader(file, max+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll -> %w", err)
	}

	return &domain.Upload{
		Filename: header.Filename,
		Data:     data,
	}, nil
}

func attachment(ctx *gin.Context, contentType, filename string, content []byte) {
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, contentType, content)
}
