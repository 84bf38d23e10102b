package imageutil

import (
	"encoding/base64"
	"errors"
	"strings"
)

const defaultMIME = "image/jpeg"

// ErrEmptyImage is returned when no image payload was supplied.
var ErrEmptyImage = errors.New("empty image payload")

// DecodeDataURL accepts either a data URL (data:image/jpeg;base64,...)
// or a bare base64 string and returns the MIME type and raw bytes.
func DecodeDataURL(payload string) (string, []byte, error) {
	if payload == "" {
		return "", nil, ErrEmptyImage
	}

	mime := defaultMIME
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		header, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return "", nil, errors.New("malformed data URL")
		}
		encoded = rest
		if m := parseMIME(header); m != "" {
			mime = m
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, ErrEmptyImage
	}
	return mime, data, nil
}

// parseMIME extracts the media type from a data URL header
// such as "data:image/png;base64".
func parseMIME(header string) string {
	header = strings.TrimPrefix(header, "data:")
	mime, _, _ := strings.Cut(header, ";")
	return mime
}
