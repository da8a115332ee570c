package ports

import (
	"context"
	"io"
	"net/url"
)

// FilePart is a single named file field of a multipart upload.
type FilePart struct {
	Field       string // "attachment", "paymentProof" or "avatar"
	Filename    string
	ContentType string
	Content     io.Reader
}

// Request describes one backend call. Exactly one of JSON or Form/File is
// used as the body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	JSON   any
	Form   map[string]string
	File   *FilePart
	// FromSignIn marks calls issued by the sign-in flow itself. Auth errors
	// on such calls propagate without triggering the sign-in redirect.
	FromSignIn bool
}

// Blob is an opaque download (spreadsheet export).
type Blob struct {
	ContentType string
	Filename    string
	Data        []byte
}

// APIClient is the single entry point for backend HTTP calls. out receives
// the unwrapped `data` member of the response envelope; pass a
// *json.RawMessage to keep it undecoded.
type APIClient interface {
	Do(ctx context.Context, req Request, out any) error
	Download(ctx context.Context, req Request) (*Blob, error)
}
