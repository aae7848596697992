package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes caps the decoded size of an uploaded photo.
const MaxImageBytes = 8 << 20

var (
	ErrEmptyImage    = errors.New("image payload is empty")
	ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	ErrNotAnImage    = errors.New("payload is not an image")
)

// Image is a decoded photo upload.
type Image struct {
	Data     []byte
	MIMEType string
}

// DecodeImage accepts either a data URL ("data:image/jpeg;base64,...") or bare
// base64 and returns the decoded bytes. The content type is sniffed from the
// bytes; whatever the header claims is ignored.
func DecodeImage(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && i >= 0 {
		payload = payload[i+1:]
	}
	if payload == "" {
		return Image{}, ErrEmptyImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("decode image: %w", err)
		}
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("%w: detected %s", ErrNotAnImage, mt.String())
	}
	return Image{Data: data, MIMEType: mt.String()}, nil
}

// DataURL renders the image as a data URL suitable for an <img> src.
func (img Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
