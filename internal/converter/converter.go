// Package converter re-encodes WebP images as JPEG next to the original file.
package converter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/webp"
)

// JPEGQuality is the quality used for every written JPEG.
const JPEGQuality = 90

var (
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
	ErrWrite  = errors.New("write error")
	ErrDelete = errors.New("delete error")
)

// removeFile deletes the source once the JPEG is written.
var removeFile = os.Remove

// Convert decodes the image at path, optionally crops it to a centred
// square, writes it as JPEG beside the source and removes the source.
//
// Only images wider than they are tall are cropped. If removing the source
// fails the JPEG has already been written and both files remain.
func Convert(path string, crop bool) error {
	log.Infof("Converting: %s", path)

	img, err := decode(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	if crop {
		img = CropSquare(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}

	out := OutputPath(path)
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, out, err)
	}
	log.Infof("Converted to: %s", out)

	if err := removeFile(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDelete, path, err)
	}
	log.Debugf("Removed %s", path)

	return nil
}

// decode reads path as WebP regardless of what the content sniffs as, so
// only files the name filter accepts are converted.
func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return webp.Decode(f)
}

// CropSquare cuts equal slices from the left and right of a landscape image
// so that it becomes height x height. Other images are returned unchanged.
func CropSquare(img image.Image) image.Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= height {
		return img
	}

	offset := (width - height) / 2
	rect := image.Rect(offset, 0, offset+height, height).Add(b.Min)
	return imaging.Crop(img, rect)
}

// OutputPath replaces the extension of path with "jpg".
func OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
}
