// Package imaging loads board images and prepares them for vectorization:
// decoding (PNG, JPEG, BMP, SVG), grayscale conversion and Otsu threshold
// selection. Dark pixels are the features to engrave.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Load decodes the image at path, dispatching on the file extension.
// SVG input is rasterized at its viewbox size onto a white background.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return loadSVG(data)
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".jpg", ".jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case ".bmp":
		return bmp.Decode(bytes.NewReader(data))
	default:
		return nil, errors.New("unsupported image format: " + ext)
	}
}

// Grayscale converts img with the usual luma weights. Transparent pixels
// become white, i.e. background.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				dst.SetGray(x, y, color.Gray{Y: 255})
				continue
			}
			if a < 0xffff {
				r = r * 0xffff / a
				g = g * 0xffff / a
				b = b * 0xffff / a
			}
			dst.SetGray(x, y, color.Gray{Y: uint8(((299*r + 587*g + 114*b) / 1000) >> 8)})
		}
	}
	return dst
}

// Otsu picks the global threshold maximizing between-class variance over
// the gray histogram. Pixels strictly below the returned value count as
// material.
func Otsu(g *image.Gray) uint8 {
	var hist [256]int
	total := 0
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	sum := 0.0
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}
	var (
		sumBg, wBg float64
		bestVar    float64
		bestThresh int
	)
	for t := 0; t < 256; t++ {
		wBg += float64(hist[t])
		if wBg == 0 {
			continue
		}
		wFg := float64(total) - wBg
		if wFg == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])
		mBg := sumBg / wBg
		mFg := (sum - sumBg) / wFg
		v := wBg * wFg * (mBg - mFg) * (mBg - mFg)
		if v > bestVar {
			bestVar = v
			bestThresh = t
		}
	}
	return uint8(bestThresh + 1)
}
