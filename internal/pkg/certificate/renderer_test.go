package certificate

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/domain"
)

func TestRenderer_Render(t *testing.T) {
	fields := domain.CertificateFields{
		FullName:      "Jane Doe",
		CertificateID: "2025-03-02-JANE-DOE-007",
		EventTitle:    "Go Workshop",
		EventDate:     time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC),
	}

	out, err := NewRenderer().Render(fields)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("JANE DOE")))
	assert.True(t, bytes.Contains(out, []byte("Go Workshop")))
	assert.True(t, bytes.Contains(out, []byte("2025-03-02-JANE-DOE-007")))

	again, err := NewRenderer().Render(fields)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRenderer_Render_Accents(t *testing.T) {
	fields := domain.CertificateFields{
		FullName:      "José Müller",
		CertificateID: "2025-03-02-JOSE-MULLER-011",
		EventTitle:    "Café Résumé Clinic",
		EventDate:     time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC),
	}

	out, err := NewRenderer().Render(fields)
	require.NoError(t, err)

	// core fonts are cp1252 encoded
	assert.True(t, bytes.Contains(out, []byte("JOS\xc9 M\xdcLLER")))
	assert.True(t, bytes.Contains(out, []byte("Caf\xe9 R\xe9sum\xe9 Clinic")))
	assert.False(t, bytes.Contains(out, []byte("JOS\xc3\x89")))
}
