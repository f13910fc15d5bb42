package usecase

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

const defaultImageContentType = "image/jpeg"

// ParseImagePayload accepts raw base64, a data URI or an http(s) URL and
// returns the decoded bytes plus an embeddable reference for the model.
func ParseImagePayload(raw string, maxBytes int) (*domain.ImagePayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrMissingImage
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return &domain.ImagePayload{URL: raw}, nil
	}

	contentType := ""
	data := raw
	if strings.HasPrefix(raw, "data:") {
		meta, encoded, ok := strings.Cut(raw, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: image data URI must be base64 encoded", domain.ErrInvalidRequest)
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		data = encoded
	}

	decoded, err := decodeBase64(data)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64: %v", domain.ErrInvalidRequest, err)
	}
	if len(decoded) == 0 {
		return nil, domain.ErrMissingImage
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return nil, fmt.Errorf("%w: image is %d bytes, limit is %d", domain.ErrInvalidRequest, len(decoded), maxBytes)
	}

	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(decoded)
		if !strings.HasPrefix(contentType, "image/") {
			contentType = defaultImageContentType
		}
	}

	return &domain.ImagePayload{
		Data:        decoded,
		ContentType: contentType,
		URL:         fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(decoded)),
	}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
