package preview

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
)

var (
	errNoImage      = errors.New("decoder returned no image")
	errMissingMedia = errors.New("clip media not in library")
)

const jpegQuality = 85

// EncodeJPEG writes img as a JPEG suitable for the preview pane.
func EncodeJPEG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errNoImage
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeDataURI returns the frame as an inline data URI, or "" for a nil
// frame or an image that cannot be encoded.
func EncodeDataURI(f *Frame) string {
	if f == nil {
		return ""
	}
	data, err := EncodeJPEG(f.Image)
	if err != nil {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
