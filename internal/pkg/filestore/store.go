package filestore

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/portalevent/portal-api/internal/domain"
)

// Ticket images and posters are public. Payment proofs are not.
const (
	TicketDir       = "tickets"
	PosterDir       = "posters"
	paymentProofDir = "payment_proofs"

	DefaultMaxFileSize = 5 * 1024 * 1024
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFileType = errors.New("file type is not allowed, use JPG, PNG or PDF")
	ErrUnsupportedImage    = errors.New("image type is not allowed, use JPG, PNG or WEBP")
	ErrEmptyFile           = errors.New("file is empty")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store keeps uploaded and generated files. References it hands out are
// slash separated paths relative to the root of fs.
type Store struct {
	fs          afero.Fs
	maxFileSize int64
}

func New(fs afero.Fs, maxFileSize int64) *Store {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	return &Store{
		fs:          fs,
		maxFileSize: maxFileSize,
	}
}

// NewOnDisk stores files below root on the local filesystem.
func NewOnDisk(root string, maxFileSize int64) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), maxFileSize)
}

func (s *Store) SaveTicketImage(token string, png []byte) (string, error) {
	ref := path.Join(TicketDir, token+".png")
	if err := s.write(ref, png); err != nil {
		return "", err
	}

	return ref, nil
}

func (s *Store) SavePaymentProof(upload domain.Upload) (string, error) {
	return s.saveUpload(paymentProofDir, upload, allowedExtensions, ErrUnsupportedFileType)
}

func (s *Store) SavePoster(upload domain.Upload) (string, error) {
	return s.saveUpload(PosterDir, upload, imageExtensions, ErrUnsupportedImage)
}

func (s *Store) saveUpload(dir string, upload domain.Upload, extensions map[string]bool, errExt error) (string, error) {
	if len(upload.Data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(upload.Data)) > s.maxFileSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(path.Ext(upload.Filename))
	if !extensions[ext] {
		return "", errExt
	}

	ref := path.Join(dir, uuid.NewString()+ext)
	if err := s.write(ref, upload.Data); err != nil {
		return "", err
	}

	return ref, nil
}

func (s *Store) Read(ref string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, rooted(ref))
	if err != nil {
		return nil, fmt.Errorf("afero.ReadFile -> %w", err)
	}

	return data, nil
}

func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.fs.Remove(rooted(ref)); err != nil {
		return fmt.Errorf("fs.Remove -> %w", err)
	}

	return nil
}

// PublicFileSystem serves the files stored below dir. Directories are
// reported as missing so their contents cannot be listed.
func (s *Store) PublicFileSystem(dir string) http.FileSystem {
	return filesOnly{afero.NewHttpFs(afero.NewBasePathFs(s.fs, rooted(dir))).Dir("/")}
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}

	return file, nil
}

func (s *Store) write(ref string, data []byte) error {
	name := rooted(ref)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("fs.MkdirAll -> %w", err)
	}
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return fmt.Errorf("afero.WriteFile -> %w", err)
	}

	return nil
}

// rooted maps a ref onto the absolute name used by the fs.
func rooted(ref string) string {
	return path.Join("/", ref)
}
