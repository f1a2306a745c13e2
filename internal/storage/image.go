package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	ErrTooLarge     = errors.New("file too large")
	ErrInvalidImage = errors.New("invalid image")
	ErrUnsupported  = errors.New("unsupported image type")
)

// AvatarOptions bounds what an uploaded profile picture may be and what
// comes out the other end. Output is always an opaque square JPEG.
type AvatarOptions struct {
	MaxBytes int64
	// SideLength is the edge of the square output. Smaller sources are
	// kept at their own size, never upscaled.
	SideLength  int
	JPEGQuality int
}

func DefaultAvatarOptions() AvatarOptions {
	return AvatarOptions{
		MaxBytes:    5 * 1024 * 1024,
		SideLength:  512,
		JPEGQuality: 85,
	}
}

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}
var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// sniffImageType identifies the upload by magic bytes. Content-Type headers
// from clients are not trusted.
func sniffImageType(header []byte) (string, error) {
	if len(header) < 12 {
		return "", ErrInvalidImage
	}
	switch {
	case bytes.HasPrefix(header, jpegMagic):
		return "image/jpeg", nil
	case bytes.HasPrefix(header, pngMagic):
		return "image/png", nil
	case bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WEBP")):
		return "image/webp", nil
	}
	return "", ErrUnsupported
}

func decodeImage(kind string, data []byte) (image.Image, error) {
	switch kind {
	case "image/jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		return png.Decode(bytes.NewReader(data))
	case "image/webp":
		return webp.Decode(bytes.NewReader(data))
	}
	return nil, ErrUnsupported
}

// squareCrop returns the largest centered square inside bounds.
func squareCrop(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := bounds.Min.X + (w-side)/2
	y0 := bounds.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// ProcessAvatarImage validates an uploaded image, center-crops it to a
// square, downscales it to the configured side length and re-encodes it as
// an opaque JPEG. Transparency is flattened onto white.
func ProcessAvatarImage(r io.Reader, opts AvatarOptions) ([]byte, string, int64, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 * 1024 * 1024
	}
	if opts.SideLength <= 0 {
		opts.SideLength = 512
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 85
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, "", 0, err
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, "", 0, ErrTooLarge
	}
	if len(data) < 12 {
		return nil, "", 0, ErrInvalidImage
	}

	kind, err := sniffImageType(data[:12])
	if err != nil {
		return nil, "", 0, err
	}
	img, err := decodeImage(kind, data)
	if err != nil {
		return nil, "", 0, fmt.Errorf("decode: %w", err)
	}

	crop := squareCrop(img.Bounds())
	if crop.Dx() <= 0 {
		return nil, "", 0, ErrInvalidImage
	}

	side := crop.Dx()
	if side > opts.SideLength {
		side = opts.SideLength
	}

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, "", 0, fmt.Errorf("encode: %w", err)
	}
	return out.Bytes(), "image/jpeg", int64(out.Len()), nil
}
