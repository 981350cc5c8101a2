package filestore

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/domain"
)

func TestStore_SaveTicketImage(t *testing.T) {
	s := New(afero.NewMemMapFs(), 0)

	ref, err := s.SaveTicketImage("abc", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "tickets/abc.png", ref)

	data, err := s.Read(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, s.Remove(ref))
	_, err = s.Read(ref)
	assert.Error(t, err)
}

func TestStore_SavePaymentProof(t *testing.T) {
	tests := []struct {
		name    string
		upload  domain.Upload
		wantErr error
	}{
		{name: "jpeg", upload: domain.Upload{Filename: "receipt.JPG", Data: []byte("x")}},
		{name: "pdf", upload: domain.Upload{Filename: "receipt.pdf", Data: []byte("x")}},
		{name: "empty", upload: domain.Upload{Filename: "receipt.png"}, wantErr: ErrEmptyFile},
		{name: "too large", upload: domain.Upload{Filename: "receipt.png", Data: make([]byte, 11)}, wantErr: ErrFileTooLarge},
		{name: "executable", upload: domain.Upload{Filename: "receipt.exe", Data: []byte("x")}, wantErr: ErrUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(afero.NewMemMapFs(), 10)

			ref, err := s.SavePaymentProof(tt.upload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(ref, "payment_proofs/"))
			assert.Equal(t, strings.ToLower(tt.upload.Filename[strings.LastIndex(tt.upload.Filename, "."):]), ref[strings.LastIndex(ref, "."):])
		})
	}
}

func TestStore_RemoveEmptyRef(t *testing.T) {
	assert.NoError(t, New(afero.NewMemMapFs(), 0).Remove(""))
}

func TestStore_SavePoster(t *testing.T) {
	s := New(afero.NewMemMapFs(), 10)

	ref, err := s.SavePoster(domain.Upload{Filename: "poster.WEBP", Data: []byte("img")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "posters/"))
	assert.True(t, strings.HasSuffix(ref, ".webp"))

	_, err = s.SavePoster(domain.Upload{Filename: "poster.pdf", Data: []byte("img")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = s.SavePoster(domain.Upload{Filename: "poster.png", Data: make([]byte, 11)})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestStore_PublicFileSystem(t *testing.T) {
	s := New(afero.NewMemMapFs(), 0)
	ref, err := s.SaveTicketImage("abc", []byte("png-bytes"))
	require.NoError(t, err)
	proofRef, err := s.SavePaymentProof(domain.Upload{Filename: "receipt.png", Data: []byte("receipt")})
	require.NoError(t, err)

	tickets := s.PublicFileSystem(TicketDir)

	f, err := tickets.Open("/" + strings.TrimPrefix(ref, TicketDir+"/"))
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, err = tickets.Open("/missing.png")
	assert.Error(t, err)

	// directories are not listed
	_, err = tickets.Open("/")
	assert.Error(t, err)

	// nothing outside the public dir is reachable
	_, err = tickets.Open("/../" + proofRef)
	assert.Error(t, err)
	_, err = s.PublicFileSystem(PosterDir).Open("/../" + proofRef)
	assert.Error(t, err)
}
