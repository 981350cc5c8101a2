// Package ticket mints ticket identities: an opaque validation token and a
// QR code encoding the URL staff scan at the door.
package ticket

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/portalevent/portal-api/internal/domain"
)

const imageSize = 256

type Generator struct {
	publicURL string
}

// NewGenerator builds a generator whose verification URLs live under
// publicURL (scheme://host).
func NewGenerator(publicURL string) *Generator {
	return &Generator{
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// VerificationURL returns {scheme}://{host}/scan/{token}/.
func (g *Generator) VerificationURL(token string) string {
	return fmt.Sprintf("%s/scan/%s/", g.publicURL, token)
}

func (g *Generator) Issue() (domain.TicketIdentity, error) {
	token := uuid.NewString()

	png, err := qrcode.Encode(g.VerificationURL(token), qrcode.Low, imageSize)
	if err != nil {
		return domain.TicketIdentity{}, fmt.Errorf("qrcode.Encode -> %w", err)
	}

	return domain.TicketIdentity{
		Token: token,
		Image: png,
	}, nil
}
