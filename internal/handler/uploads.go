package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/disintegration/imaging"

	"github.com/hmpc-qa/inspection-api/internal/service"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

// UploadPolicy validates incoming image files before they reach storage.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

func (p UploadPolicy) allows(mime string) bool {
	for _, allowed := range p.AllowedMIMEs {
		if allowed == mime {
			return true
		}
	}
	return false
}

// Read pulls one multipart file through the policy: size ceiling, MIME
// whitelist against sniffed content, and a full decode to reject files that
// merely carry an image extension.
func (p UploadPolicy) Read(header *multipart.FileHeader) (*service.ImagePayload, error) {
	if p.MaxBytes > 0 && header.Size > p.MaxBytes {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("file exceeds the %d byte limit", p.MaxBytes))
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
	}
	defer file.Close()

	limit := p.MaxBytes
	if limit <= 0 {
		limit = 32 << 20
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file")
	}
	if int64(len(data)) > limit {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("file exceeds the %d byte limit", limit))
	}

	mime := http.DetectContentType(data)
	if len(p.AllowedMIMEs) > 0 && !p.allows(mime) {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, "only JPG, PNG, and GIF files are allowed")
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, "file is not a decodable image")
	}

	return &service.ImagePayload{Data: data, Filename: header.Filename}, nil
}

// optionalFile reads a named multipart file when present, nil when absent.
func (p UploadPolicy) optionalFile(form *multipart.Form, field string) (*service.ImagePayload, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return p.Read(files[0])
}
