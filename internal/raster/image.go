package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxImageSide caps the longest side of an image sent for extraction.
const maxImageSide = 4096

// passthrough lists formats the extraction providers accept as-is.
var passthrough = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
}

var convertible = map[string]bool{
	"image/tiff":     true,
	"image/tif":      true,
	"image/bmp":      true,
	"image/x-ms-bmp": true,
}

func isImage(mimeType string) bool {
	return passthrough[mimeType] || convertible[mimeType]
}

// normalizeImage re-encodes formats the providers do not accept, and
// oversized images, as PNG.
func normalizeImage(data []byte, mimeType string) ([]byte, string, error) {
	if passthrough[mimeType] {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s header: %w", mimeType, err)
		}
		if cfg.Width <= maxImageSide && cfg.Height <= maxImageSide {
			if mimeType == "image/jpg" {
				mimeType = "image/jpeg"
			}
			return data, mimeType, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", mimeType, err)
	}
	img = fitWithin(img, maxImageSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

func fitWithin(img image.Image, side int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= side && h <= side {
		return img
	}
	if w >= h {
		h = h * side / w
		w = side
	} else {
		w = w * side / h
		h = side
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
