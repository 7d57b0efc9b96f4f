// Package imaging prepares item photos for upload.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/erazemk/menjava/internal/model"
)

// MaxDimension is the maximum width or height sent to the backend.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ErrUnsupportedFormat is returned for files that are not an accepted image type.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Result is a photo ready for upload.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	// Source is the detected input type.
	Source string
}

// Process sniffs the image type from its bytes, downscales it to fit
// MaxDimension and re-encodes it as JPEG.
func Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	// Client-declared types are ignored.
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s (JPEG, PNG, GIF or WebP accepted)", ErrUnsupportedFormat, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
		Source: detected,
	}, nil
}

// PrepareUploads checks the photo count and processes every photo.
// File names keep their base name with a .jpg extension.
func PrepareUploads(uploads []model.Upload) ([]model.Upload, error) {
	if err := model.ValidateImageCount(len(uploads)); err != nil {
		return nil, err
	}

	out := make([]model.Upload, 0, len(uploads))
	for i, u := range uploads {
		res, err := Process(u.Data)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i+1, u.Name, err)
		}
		out = append(out, model.Upload{
			Name: jpegName(u.Name, i),
			MIME: res.MIME,
			Data: bytes.NewReader(res.Data),
		})
	}
	return out, nil
}

func jpegName(name string, i int) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = fmt.Sprintf("image-%d", i+1)
	}
	return base + ".jpg"
}

// downscale resizes the image so neither dimension exceeds maxDim,
// using Catmull-Rom interpolation. Smaller images are returned as is.
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
	image.RegisterFormat("gif", "GIF8?a", gif.Decode, gif.DecodeConfig)
	image.RegisterFormat("webp", "RIFF????WEBPVP8", webp.Decode, webp.DecodeConfig)
}
