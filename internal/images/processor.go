package images

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// maxDimension caps the longest side of processed images; larger inputs are
// downscaled before enhancement to bound memory use.
const maxDimension = 1024

const jpegQuality = 95

// Processor applies the placeholder low-light enhancement: a fixed
// brightness/contrast transform in normalized [-1,1] space.
type Processor struct{}

// NewProcessor constructs a Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Enhance decodes the input image, applies the transform and encodes the
// result to out in the format implied by ext (".jpg", ".jpeg" or ".png").
func (p *Processor) Enhance(in io.Reader, out io.Writer, ext string) error {
	src, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("images: decode: %w", err)
	}

	src = downscale(src)
	enhanced := enhanceRGBA(src)

	switch strings.ToLower(ext) {
	case ".png":
		if err := png.Encode(out, enhanced); err != nil {
			return fmt.Errorf("images: encode png: %w", err)
		}
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(out, enhanced, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("images: encode jpeg: %w", err)
		}
	default:
		return fmt.Errorf("images: unsupported output format %q", ext)
	}
	return nil
}

// downscale shrinks images whose longest side exceeds maxDimension,
// preserving aspect ratio.
func downscale(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxDimension {
		return src
	}

	scale := float64(maxDimension) / float64(longest)
	dstW := int(float64(width) * scale)
	dstH := int(float64(height) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// enhanceRGBA runs the per-channel linear transform: normalize to [-1,1],
// brightness x1.5, contrast (v-0.5)x1.2+0.5, clamp, denormalize.
func enhanceRGBA(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			offset := dst.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)
			dst.Pix[offset+0] = enhanceChannel(r)
			dst.Pix[offset+1] = enhanceChannel(g)
			dst.Pix[offset+2] = enhanceChannel(b)
			dst.Pix[offset+3] = uint8(a >> 8)
		}
	}
	return dst
}

func enhanceChannel(c uint32) uint8 {
	v := float64(c)/65535.0*2.0 - 1.0
	v *= 1.5
	v = (v-0.5)*1.2 + 0.5
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return uint8(((v + 1.0) / 2.0) * 255.0)
}
