package imagex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var ErrUnsupported = errors.New("unsupported image format")

type Options struct {
	MaxW int
	MaxH int
	// Quality is the lossy WebP quality, 1..100. Zero means 80.
	Quality float32
}

// Result is a normalised image ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Sniff reports the detected content type of data.
func Sniff(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	// Scanned slides often arrive as TIFF, which DetectContentType misses.
	if bytes.HasPrefix(head, []byte("II*\x00")) || bytes.HasPrefix(head, []byte("MM\x00*")) {
		return "image/tiff"
	}
	return http.DetectContentType(head)
}

// IsImage reports whether data looks like a decodable raster image.
func IsImage(data []byte) bool {
	ct := Sniff(data)
	return strings.HasPrefix(ct, "image/") && ct != "image/svg+xml"
}

func decode(data []byte) (image.Image, error) {
	ct := Sniff(data)
	switch {
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(data))
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"), strings.Contains(ct, "gif"),
		strings.Contains(ct, "bmp"), strings.Contains(ct, "tiff"):
		return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ct)
	}
}

// Normalize decodes data, shrinks it to fit within MaxW x MaxH keeping the
// aspect ratio and re-encodes it as lossy WebP. Images already inside the
// bounds are not resampled.
func Normalize(data []byte, opt Options) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if needsFit(b.Dx(), b.Dy(), opt.MaxW, opt.MaxH) {
		maxW, maxH := opt.MaxW, opt.MaxH
		if maxW <= 0 {
			maxW = b.Dx()
		}
		if maxH <= 0 {
			maxH = b.Dy()
		}
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}

	q := opt.Quality
	if q <= 0 || q > 100 {
		q = 80
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	out := img.Bounds()
	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/webp",
		Ext:         ".webp",
		Width:       out.Dx(),
		Height:      out.Dy(),
	}, nil
}

func needsFit(w, h, maxW, maxH int) bool {
	return (maxW > 0 && w > maxW) || (maxH > 0 && h > maxH)
}
