package frameio

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 10), B: 40, A: 255})
		}
	}
	return img
}

func TestJPEGRoundTrip(t *testing.T) {
	data, err := EncodeJPEG(testImage(), 80)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), data[0])
	require.Equal(t, byte(0xD8), data[1])

	decoded, err := DecodeJPEG(data)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 24), decoded.Bounds())
}

func TestDecodeJPEGRejectsGarbage(t *testing.T) {
	_, err := DecodeJPEG([]byte("not a jpeg"))
	require.Error(t, err)
}

func TestDataURLRoundTrip(t *testing.T) {
	encoded, err := EncodeDataURL(testImage(), 80)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "data:image/jpeg;base64,"))

	decoded, err := DecodeDataURL(encoded)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 24), decoded.Bounds())
}

func TestDecodeDataURLAcceptsBareBase64(t *testing.T) {
	encoded, err := EncodeDataURL(testImage(), 80)
	require.NoError(t, err)

	bare := strings.TrimPrefix(encoded, "data:image/jpeg;base64,")
	decoded, err := DecodeDataURL(bare)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 24), decoded.Bounds())
}

func TestDecodeDataURLRejectsBadBase64(t *testing.T) {
	_, err := DecodeDataURL("data:image/jpeg;base64,@@@not-base64@@@")
	require.Error(t, err)
}
