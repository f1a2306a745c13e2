package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessAvatarImage_PNGToSquareJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	out, ct, _, err := ProcessAvatarImage(bytes.NewReader(encodePNG(t, img)), DefaultAvatarOptions())
	if err != nil {
		t.Fatalf("ProcessAvatarImage: %v", err)
	}
	if ct != "image/jpeg" {
		t.Fatalf("content type = %q, want image/jpeg", ct)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	// 120x60 center-cropped to 60x60, below the default side length so
	// it stays at its own size.
	if decoded.Bounds().Dx() != 60 || decoded.Bounds().Dy() != 60 {
		t.Fatalf("dims = %dx%d, want 60x60", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessAvatarImage_DownscalesToSideLength(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))

	opts := DefaultAvatarOptions()
	opts.SideLength = 100
	out, _, _, err := ProcessAvatarImage(bytes.NewReader(encodePNG(t, img)), opts)
	if err != nil {
		t.Fatalf("ProcessAvatarImage: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if decoded.Bounds().Dx() != 100 || decoded.Bounds().Dy() != 100 {
		t.Fatalf("dims = %dx%d, want 100x100", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessAvatarImage_NeverUpscales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))

	out, _, _, err := ProcessAvatarImage(bytes.NewReader(encodePNG(t, img)), DefaultAvatarOptions())
	if err != nil {
		t.Fatalf("ProcessAvatarImage: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 40 {
		t.Fatalf("dims = %dx%d, want 40x40", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessAvatarImage_TooLarge(t *testing.T) {
	opts := DefaultAvatarOptions()
	opts.MaxBytes = 10
	payload := bytes.Repeat([]byte{0x00}, 11)
	_, _, _, err := ProcessAvatarImage(bytes.NewReader(payload), opts)
	if err != ErrTooLarge {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestProcessAvatarImage_UnsupportedMagic(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 128)
	_, _, _, err := ProcessAvatarImage(bytes.NewReader(payload), DefaultAvatarOptions())
	if err != ErrUnsupported {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestSafeJoinAvatarPath(t *testing.T) {
	if _, err := SafeJoinAvatarPath("", "../x"); err == nil {
		t.Fatalf("expected error for traversal")
	}
	if _, err := SafeJoinAvatarPath("", "..\\x"); err == nil {
		t.Fatalf("expected error for backslash")
	}
	key, err := SafeJoinAvatarPath("", "/avatars/1/a.jpg")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "avatars/1/a.jpg" {
		t.Fatalf("key = %q", key)
	}
	key, err = SafeJoinAvatarPath("media", "avatars/1/a.jpg")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "media/avatars/1/a.jpg" {
		t.Fatalf("key = %q", key)
	}
}
