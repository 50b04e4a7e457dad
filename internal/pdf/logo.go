package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// ErrUnsupportedLogo is returned for bytes no registered decoder accepts.
var ErrUnsupportedLogo = errors.New("unsupported logo image")

// MaxLogoPixels bounds width×height so a small compressed file cannot
// declare dimensions that blow up memory on decode.
const MaxLogoPixels = 4096 * 4096

// preparedLogo is an image gofpdf can register directly.
type preparedLogo struct {
	data          []byte
	imageType     string // "PNG" or "JPG"
	width, height int
}

// prepareLogo sniffs the logo format. JPEG is passed through; every other
// format (PNG, GIF, WebP) is decoded and re-encoded as 8-bit non-interlaced
// PNG, which is the only PNG flavour gofpdf parses reliably.
func prepareLogo(raw []byte) (*preparedLogo, error) {
	if len(raw) == 0 {
		return nil, ErrUnsupportedLogo
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLogo, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUnsupportedLogo
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxLogoPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrUnsupportedLogo, cfg.Width, cfg.Height)
	}
	if format == "jpeg" {
		return &preparedLogo{data: raw, imageType: "JPG", width: cfg.Width, height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLogo, err)
	}
	b := img.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, fmt.Errorf("re-encode logo: %w", err)
	}
	return &preparedLogo{data: buf.Bytes(), imageType: "PNG", width: b.Dx(), height: b.Dy()}, nil
}

// fit scales w×h to fit inside maxW×maxH keeping the aspect ratio.
func fit(w, h int, maxW, maxH float64) (float64, float64) {
	fw, fh := float64(w), float64(h)
	scale := maxW / fw
	if fh*scale > maxH {
		scale = maxH / fh
	}
	return fw * scale, fh * scale
}

// CheckLogo reports whether raw is an image the renderer can print.
func CheckLogo(raw []byte) error {
	_, err := prepareLogo(raw)
	return err
}
