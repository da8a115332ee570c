package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/galacash/gateway/internal/core/ports"
)

// encodeMultipart renders text fields (sorted, for stable bodies) and at most
// one file part. The file is buffered so the body can be replayed after a
// token refresh.
func encodeMultipart(form map[string]string, file *ports.FilePart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, form[name]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if file != nil && file.Content != nil {
		data, err := io.ReadAll(file.Content)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", file.Field, err)
		}
		contentType := file.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = mimetype.Detect(data).String()
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.Field, err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", file.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
