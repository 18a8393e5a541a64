// Package imaging decodes client-submitted image payloads.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Registered formats for image.DecodeConfig. Clients submit whatever
	// their camera pipeline produces; webp shows up on Android.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DecodeBase64 converts a base64 string (optionally a data URL such as
// "data:image/jpeg;base64,...") into raw image bytes.
func DecodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty image payload")
	}
	if strings.HasPrefix(s, "data:image") {
		_, rest, found := strings.Cut(s, ",")
		if !found {
			return nil, errors.New("malformed data URL")
		}
		s = rest
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 image: %w", err)
	}
	return data, nil
}

// Validate checks that the payload is a decodable image in a supported
// format before it is shipped to the face model.
func Validate(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("unrecognized image data: %w", err)
	}
	return nil
}
