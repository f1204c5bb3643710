// Package qrcode renders provisioning URIs as PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the default PNG edge length in pixels.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qrcode: empty content")

// Encoder renders text as a QR code image.
type Encoder interface {
	PNG(content string) ([]byte, error)
	DataURI(content string) (string, error)
}

// PNGEncoder encodes with medium error recovery at a fixed size.
type PNGEncoder struct {
	size int
}

// NewPNGEncoder returns an encoder producing size x size images. Non-positive
// sizes fall back to DefaultSize.
func NewPNGEncoder(size int) *PNGEncoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &PNGEncoder{size: size}
}

// PNG returns the raw PNG bytes for content.
func (e *PNGEncoder) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	b, err := qr.Encode(content, qr.Medium, e.size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}
	return b, nil
}

// DataURI returns the PNG as a base64 data URI suitable for an <img> tag.
func (e *PNGEncoder) DataURI(content string) (string, error) {
	b, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(b), nil
}
