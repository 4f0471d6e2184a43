package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// MaxDimension is the maximum width or height of an uploaded image.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// DefaultParallelism bounds how many images PrepareAll decodes at once.
const DefaultParallelism = 4

// ErrUnsupported is returned for files that are not JPEG or PNG images.
var ErrUnsupported = errors.New("unsupported image type (only jpg, jpeg and png accepted)")

// AllowedExtensions lists the accepted file extensions, lower case.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AllowedMIME lists the accepted sniffed MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// File is a named image payload.
type File struct {
	Name string
	Data []byte
}

// CheckName rejects file names without an accepted extension.
func CheckName(name string) error {
	if !AllowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return fmt.Errorf("%s: %w", name, ErrUnsupported)
	}
	return nil
}

// Sniff returns the MIME type detected from the payload bytes, failing if
// it is not an accepted image type.
func Sniff(data []byte) (string, error) {
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return "", fmt.Errorf("detected %s: %w", detected, ErrUnsupported)
	}
	return detected, nil
}

// Prepare validates a file by name and content, downscales it if larger
// than MaxDimension, and re-encodes it as JPEG. The returned file keeps the
// base name with a .jpg extension.
func Prepare(f File) (File, error) {
	if err := CheckName(f.Name); err != nil {
		return File{}, err
	}
	if _, err := Sniff(f.Data); err != nil {
		return File{}, fmt.Errorf("%s: %w", f.Name, err)
	}

	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return File{}, fmt.Errorf("decoding %s: %w", f.Name, err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return File{}, fmt.Errorf("encoding %s: %w", f.Name, err)
	}

	base := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
	return File{Name: base + ".jpg", Data: buf.Bytes()}, nil
}

// PrepareAll prepares files concurrently, at most limit at a time (limit <= 0
// means DefaultParallelism). The result has the same order as the input.
// Any failure fails the whole batch.
func PrepareAll(ctx context.Context, files []File, limit int) ([]File, error) {
	if limit <= 0 {
		limit = DefaultParallelism
	}

	out := make([]File, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prepared, err := Prepare(f)
			if err != nil {
				return err
			}
			out[i] = prepared
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// downscale resizes the image so neither dimension exceeds maxDim, using
// Catmull-Rom interpolation. Images already within bounds are returned as is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
