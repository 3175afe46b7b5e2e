package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Kind classifies an uploaded blob.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ErrUnsupportedMedia is returned for blobs that are neither image nor video.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Reference is the result of resolving an uploaded blob: a public URL plus
// the detected kind. The core only ever consumes this pair.
type Reference struct {
	URL  string
	Kind Kind
}

// Resolver stores an uploaded blob and returns a reference to it.
type Resolver interface {
	Resolve(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*Reference, error)
}

// detectKind classifies a blob by its declared content type, falling back to
// sniffing the first bytes when the declaration is missing or generic.
// Returns the kind and the effective content type.
func detectKind(contentType string, sniff []byte) (Kind, string, error) {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(sniff)
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage, contentType, nil
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo, contentType, nil
	default:
		return "", contentType, ErrUnsupportedMedia
	}
}
