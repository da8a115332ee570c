package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

// DefaultUploadLimit caps a single uploaded file.
const DefaultUploadLimit int64 = 5 << 20

// readUpload reads one named file field. Only images and PDF are accepted;
// the type is sniffed from content, not taken from the client. A missing
// optional file yields nil.
func readUpload(c echo.Context, field string, required bool, limit int64) (*ports.FilePart, error) {
	if limit <= 0 {
		limit = DefaultUploadLimit
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, field+" is required")
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	if fh.Size > limit {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("%s exceeds %d bytes", field, limit))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if int64(len(data)) > limit {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("%s exceeds %d bytes", field, limit))
	}

	mt := mimetype.Detect(data)
	if !acceptedUpload(mt) {
		return nil, fmt.Errorf("%w: %s is %s, expected an image or PDF", domain.ErrUnsupportedUpload, field, mt.String())
	}
	return &ports.FilePart{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: mt.String(),
		Content:     bytes.NewReader(data),
	}, nil
}

func acceptedUpload(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/pdf") || strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
