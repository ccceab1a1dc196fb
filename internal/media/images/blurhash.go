// Package images computes image-derived metadata for book covers.
package images

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the longest edge of the thumbnail the hash is computed from.
const blurHashSize = 64

// Components used for cover placeholders.
const (
	xComponents = 4
	yComponents = 3
)

// ComputeBlurHash decodes an image and returns its BlurHash.
// The format is sniffed from the data; JPEG, PNG, GIF and WebP are supported.
func ComputeBlurHash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return BlurHashFromImage(img)
}

// BlurHashFromImage returns the BlurHash of an already decoded image.
func BlurHashFromImage(img image.Image) (string, error) {
	hash, err := blurhash.Encode(xComponents, yComponents, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img down so its longest edge is blurHashSize, using
// nearest-neighbor sampling. Small images are returned as is.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	dw, dh := blurHashSize, blurHashSize
	if w > h {
		dh = max(1, h*blurHashSize/w)
	} else {
		dw = max(1, w*blurHashSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range dh {
		sy := b.Min.Y + y*h/dh
		for x := range dw {
			dst.Set(x, y, img.At(b.Min.X+x*w/dw, sy))
		}
	}
	return dst
}
