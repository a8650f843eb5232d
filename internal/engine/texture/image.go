// Package texture decodes 8-bit and HDR images into tightly packed pixels
// ready for GPU upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode marks an image that could not be decoded.
var ErrDecode = errors.New("image decode failed")

// Image is a decoded 8-bit image, rows top-down, 1 to 4 channels.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// DecodeImage decodes an 8-bit image. ext (".tga", ".png", ...) selects the
// TGA decoder, which has no magic number; every other format is sniffed.
func DecodeImage(data []byte, ext string) (*Image, error) {
	if strings.EqualFold(ext, ".tga") {
		return DecodeTGA(data)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: empty image: %w", format, ErrDecode)
	}
	return FromImage(img), nil
}

// FromImage packs any image.Image. Grayscale stays single-channel, opaque
// color images become RGB and everything else RGBA.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out := &Image{Width: w, Height: h, Channels: 1, Pix: make([]byte, w*h)}
		for y := 0; y < h; y++ {
			copy(out.Pix[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return out
	case *image.Gray16:
		out := &Image{Width: w, Height: h, Channels: 1, Pix: make([]byte, w*h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			}
		}
		return out
	}

	rgba := make([]byte, w*h*4)
	opaque := true
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (y*w + x) * 4
			rgba[i], rgba[i+1], rgba[i+2], rgba[i+3] = c.R, c.G, c.B, c.A
			if c.A != 255 {
				opaque = false
			}
		}
	}

	if !opaque {
		return &Image{Width: w, Height: h, Channels: 4, Pix: rgba}
	}

	rgb := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		copy(rgb[i*3:i*3+3], rgba[i*4:i*4+3])
	}
	return &Image{Width: w, Height: h, Channels: 3, Pix: rgb}
}
