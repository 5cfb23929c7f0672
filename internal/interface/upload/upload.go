// Package upload accepts a single image per request, validates it and
// hands a stored reference to downstream handlers.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/internal/domain/entity"
	"github.com/oksasatya/user-records/internal/infrastructure/filestore"
	"github.com/oksasatya/user-records/pkg/response"
)

// FieldName is the only multipart field accepted as a file.
const FieldName = "image"

const (
	multipartOverhead = 1 << 20
	ctxKey            = "upload.file"

	MsgTooLarge     = "File is too large. Maximum size is 5MB"
	MsgNotImage     = "Only image files are allowed!"
	MsgTooManyFiles = "Only one image may be uploaded"
	MsgUnexpected   = "Unexpected field"
)

// File is an image that has been validated and stored.
type File struct {
	Name        string
	ContentType string
	Size        int64
	URL         string
}

type Handler struct {
	Store    filestore.Store
	Logger   *logrus.Logger
	MaxBytes int64
}

func New(store filestore.Store, logger *logrus.Logger) *Handler {
	return &Handler{Store: store, Logger: logger, MaxBytes: entity.MaxImageBytes}
}

// Middleware validates and stores the image of a multipart request.
// Requests without a multipart body pass through untouched.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+multipartOverhead)
		if err := c.Request.ParseMultipartForm(h.MaxBytes); err != nil {
			if isTooLarge(err) {
				response.Error(c, http.StatusBadRequest, MsgTooLarge, FieldName)
				return
			}
			response.Error(c, http.StatusBadRequest, "Invalid multipart form", "")
			return
		}

		form := c.Request.MultipartForm
		for field := range form.File {
			if field != FieldName {
				response.Error(c, http.StatusBadRequest, MsgUnexpected, field)
				return
			}
		}
		files := form.File[FieldName]
		if len(files) == 0 {
			c.Next()
			return
		}
		if len(files) > 1 {
			response.Error(c, http.StatusBadRequest, MsgTooManyFiles, FieldName)
			return
		}

		fh := files[0]
		if fh.Size > h.MaxBytes {
			response.Error(c, http.StatusBadRequest, MsgTooLarge, FieldName)
			return
		}
		if !entity.IsAllowedImageType(fh.Header.Get("Content-Type")) {
			response.Error(c, http.StatusBadRequest, MsgNotImage, FieldName)
			return
		}

		f, err := fh.Open()
		if err != nil {
			response.Internal(c, err.Error())
			return
		}
		defer func() { _ = f.Close() }()

		detected, err := mimetype.DetectReader(f)
		if err != nil || !entity.IsAllowedImageType(detected.String()) {
			response.Error(c, http.StatusBadRequest, MsgNotImage, FieldName)
			return
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			response.Internal(c, err.Error())
			return
		}

		name := GenerateName(FieldName, fh.Filename, detected.String(), time.Now())
		if err := h.Store.Save(c.Request.Context(), name, detected.String(), f); err != nil {
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("store upload failed")
			}
			response.Internal(c, "failed to store upload")
			return
		}

		c.Set(ctxKey, &File{
			Name:        name,
			ContentType: detected.String(),
			Size:        fh.Size,
			URL:         h.Store.URL(BaseURL(c), name),
		})
		c.Next()
	}
}

// FromContext returns the image stored for this request, if any.
func FromContext(c *gin.Context) (*File, bool) {
	v, ok := c.Get(ctxKey)
	if !ok {
		return nil, false
	}
	f, ok := v.(*File)
	return f, ok && f != nil
}

// Discard removes a stored image whose request was rejected downstream.
func (h *Handler) Discard(ctx context.Context, f *File) {
	if f == nil {
		return
	}
	if err := h.Store.Remove(ctx, f.Name); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("file", f.Name).Warn("discard upload failed")
	}
}

// GenerateName builds <field>-<unixMillis>-<random><ext>. The original
// extension is kept only when it maps to contentType; otherwise the
// extension registered for contentType is used.
func GenerateName(field, original, contentType string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), rand.Int64N(1_000_000_000), extensionFor(original, contentType))
}

func extensionFor(original, contentType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext != "" {
		if byExt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && byExt == contentType {
			return ext
		}
	}
	if m := mimetype.Lookup(contentType); m != nil {
		return m.Extension()
	}
	return ""
}

func isTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large")
}

// BaseURL is scheme://host of the current request.
func BaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
