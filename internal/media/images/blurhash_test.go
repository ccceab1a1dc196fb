package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 120, A: 255})
		}
	}
	return img
}

func TestComputeBlurHash_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(200, 300)))

	hash, err := ComputeBlurHash(&buf)
	require.NoError(t, err)
	// 4x3 components: 1 size + 1 max AC + 4 DC + 2 per AC component (11).
	assert.Len(t, hash, 28)
}

func TestComputeBlurHash_Deterministic(t *testing.T) {
	img := gradient(120, 80)
	a, err := BlurHashFromImage(img)
	require.NoError(t, err)
	b, err := BlurHashFromImage(img)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeBlurHash_NotAnImage(t *testing.T) {
	_, err := ComputeBlurHash(strings.NewReader("<html>not found</html>"))
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"small kept", 40, 60, 40, 60},
		{"portrait", 600, 900, 42, 64},
		{"landscape", 900, 300, 64, 21},
		{"very thin", 6400, 10, 64, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := thumbnail(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))).Bounds()
			assert.Equal(t, tt.wantW, got.Dx())
			assert.Equal(t, tt.wantH, got.Dy())
		})
	}
}
