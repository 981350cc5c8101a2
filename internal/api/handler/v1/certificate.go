package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/domain"
)

type CertificateService interface {
	Issue(ctx context.Context, actor domain.User, token string) (domain.Certificate, error)
}

type CertificateHandler struct {
	svc  CertificateService
	uSvc UserService
}

func NewCertificateHandler(svc CertificateService, uSvc UserService) *CertificateHandler {
	return &CertificateHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleDownloadCertificate godoc
// @Summary      Download an attendance certificate
// @Description  Only the ticket holder may download, once the event has finished and the payment is verified.
// @Tags         certificates
// @Produce      application/pdf
// @Param        token  path      string  true  "Validation token"
// @Success      200    {file}    file
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /certificates/{token} [get]
// @Security     BearerAuth
func (h *CertificateHandler) HandleDownloadCertificate(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cert, err := h.svc.Issue(ctx.Request.Context(), user, ctx.Param("token"))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleDownloadCertificate -> h.svc.Issue", err)
		return
	}

	attachment(ctx, "application/pdf", cert.Filename, cert.Content)
}
