// Package frameio converts frames between wire encodings (JPEG bytes,
// base64 data URLs) and the mutable RGBA form the pipeline draws on.
package frameio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"purity-vision-be/pkg/annotate"
)

func DecodeJPEG(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return annotate.ToRGBA(img), nil
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDataURL accepts either a bare base64 JPEG or a browser-style
// "data:image/jpeg;base64,..." payload.
func DecodeDataURL(s string) (*image.RGBA, error) {
	if idx := strings.IndexByte(s, ','); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64 frame: %w", err)
	}
	return DecodeJPEG(raw)
}

func EncodeDataURL(img image.Image, quality int) (string, error) {
	raw, err := EncodeJPEG(img, quality)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw), nil
}
