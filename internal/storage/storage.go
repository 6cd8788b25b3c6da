// Package storage keeps uploaded images. Uploads are checked against an
// allow-list of image types, both as declared by the client and as sniffed
// from the first bytes, and renamed to a random hex name.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/frahmantamala/mastersight/internal"
)

const (
	DefaultMaxBytes int64 = 5 << 20
	FormField             = "file"
	sniffLen              = 512
)

type Folder string

const (
	FolderCompanies Folder = "images/companies"
	FolderUsers     Folder = "images/users"
)

var allowed = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/webp": "webp",
}

var (
	ErrNoFile        = internal.NewValidationError("multipart field file is missing", internal.ErrCodeNoFile)
	ErrInvalidFormat = internal.NewValidationError("only png, jpeg and webp images are accepted", internal.ErrCodeInvalidFormat)
	ErrFileTooLarge  = internal.NewValidationError("image exceeds the size limit", internal.ErrCodeFileTooLarge)
)

// Backend writes objects under a key such as images/users/<hash>.png.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

type Uploader struct {
	backend  Backend
	maxBytes int64
	logger   *slog.Logger
}

func NewUploader(backend Backend, maxBytes int64, logger *slog.Logger) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{backend: backend, maxBytes: maxBytes, logger: logger}
}

// FromRequest stores the multipart file field of r and returns the stored
// file name (hash plus extension).
func (u *Uploader) FromRequest(w http.ResponseWriter, r *http.Request, folder Folder) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes+1<<20)
	if err := r.ParseMultipartForm(u.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", ErrFileTooLarge
		}
		return "", ErrNoFile.WithCause(err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		return "", ErrNoFile
	}
	defer file.Close()

	return u.Store(r.Context(), folder, header.Header.Get("Content-Type"), header.Size, file)
}

// Store checks declared against the sniffed type and writes the content.
func (u *Uploader) Store(ctx context.Context, folder Folder, declared string, size int64, file io.Reader) (string, error) {
	ext, ok := allowed[declared]
	if !ok {
		return "", ErrInvalidFormat
	}
	if size > u.maxBytes {
		return "", ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", internal.NewInternalError("failed to read upload", err)
	}
	head = head[:n]
	if http.DetectContentType(head) != declared {
		return "", ErrInvalidFormat
	}

	name, err := randomName(ext)
	if err != nil {
		return "", internal.NewInternalError("failed to name upload", err)
	}
	key := path.Join(string(folder), name)

	body := io.MultiReader(bytes.NewReader(head), file)
	if err := u.backend.Put(ctx, key, body, size, declared); err != nil {
		return "", internal.NewInternalError("failed to store upload", err)
	}

	u.logger.Info("image stored", "key", key, "size", size, "content_type", declared)
	return name, nil
}

func randomName(ext string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b) + "." + ext, nil
}
