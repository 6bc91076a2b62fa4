package thumbs

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Maker writes a square thumbnail of src to dst, at most size pixels on a side.
type Maker interface {
	Make(src, dst string, size int) error
}

// JPEGQuality is the encoder quality used for JPEG thumbnails.
const JPEGQuality = 90

// ImageMaker is the default Maker. It center-crops the source to a square of
// side min(width, height) and scales it down with Catmull-Rom resampling.
// Images smaller than size are cropped but never enlarged. The output format
// follows dst's extension.
type ImageMaker struct{}

// Make implements Maker.
func (ImageMaker) Make(src, dst string, size int) error {
	enc, err := encoderFor(dst)
	if err != nil {
		return err
	}

	// #nosec G304 -- src is resolved inside the configured image root.
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	thumb := SquareThumbnail(img, size)

	// #nosec G304 -- dst is a temp file created by the cache.
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := enc(out, thumb); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	return out.Close()
}

// SquareThumbnail crops img to a centered square and scales it to fit size.
func SquareThumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	target := side
	if size > 0 && size < side {
		target = size
	}
	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return dst
}

type encodeFunc func(f *os.File, img image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".jpg", ".jpeg":
		return func(f *os.File, img image.Image) error {
			return jpeg.Encode(f, img, &jpeg.Options{Quality: JPEGQuality})
		}, nil
	case ".gif":
		return func(f *os.File, img image.Image) error { return gif.Encode(f, img, nil) }, nil
	default:
		return nil, fmt.Errorf("unsupported thumbnail format %q", filepath.Ext(path))
	}
}
