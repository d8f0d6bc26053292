package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

// ImageUploader stores images posted as multipart file fields.
type ImageUploader struct {
	store    ports.FileStore
	maxBytes int64
	log      zerolog.Logger
}

func NewImageUploader(store ports.FileStore, maxBytes int64, log zerolog.Logger) *ImageUploader {
	return &ImageUploader{store: store, maxBytes: maxBytes, log: log}
}

// Upload is an image stored while serving one request.
type Upload struct {
	URL    string
	Key    string
	prefix string
}

// url returns the public URL of up, or "" when nothing was uploaded.
func (up *Upload) url() string {
	if up == nil {
		return ""
	}
	return up.URL
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// Save stores the file posted under field. It returns nil when the request
// carries no such file. The content must sniff as an image regardless of the
// declared type or file name.
func (u *ImageUploader) Save(c echo.Context, field, prefix string) (*Upload, error) {
	if u == nil || u.store == nil || !isMultipart(c) {
		return nil, nil
	}

	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ValidationError(field + " could not be read")
	}
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		metrics.UploadsTotal.WithLabelValues(prefix, "rejected").Inc()
		return nil, domain.ValidationError(field + " is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, domain.Internal("open upload", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, domain.Internal("detect upload type", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		metrics.UploadsTotal.WithLabelValues(prefix, "rejected").Inc()
		return nil, domain.ValidationError(field + " must be an image")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, domain.Internal("rewind upload", err)
	}

	key := prefix + "/" + uuid.NewString() + mt.Extension()
	url, err := u.store.Save(c.Request().Context(), key, f, mt.String())
	if err != nil {
		return nil, domain.Internal("store upload", err)
	}

	metrics.UploadsTotal.WithLabelValues(prefix, "stored").Inc()
	return &Upload{URL: url, Key: key, prefix: prefix}, nil
}

// Discard deletes an upload whose request failed after the file was stored.
// A nil upload is a no-op.
func (u *ImageUploader) Discard(ctx context.Context, up *Upload) {
	if u == nil || u.store == nil || up == nil {
		return
	}
	if err := u.store.Delete(context.WithoutCancel(ctx), up.Key); err != nil {
		u.log.Warn().Err(err).Str("key", up.Key).Msg("failed to discard upload")
		return
	}
	metrics.UploadsTotal.WithLabelValues(up.prefix, "discarded").Inc()
}
