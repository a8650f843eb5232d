package texture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
)

// MaxHDRSide bounds each dimension of a decoded HDR image.
const MaxHDRSide = 32768

// FloatImage is a decoded HDR image: RGB floats, rows top-down.
type FloatImage struct {
	Width  int
	Height int
	Pix    []float32
}

// FlipVertical reverses the row order in place, converting between top-down
// rows and the bottom-up order the GPU expects.
func (f *FloatImage) FlipVertical() {
	stride := f.Width * 3
	tmp := make([]float32, stride)
	for top, bottom := 0, f.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := f.Pix[top*stride : (top+1)*stride]
		b := f.Pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// DecodeHDR decodes a Radiance RGBE (.hdr) image, flat or new-style RLE.
// Only the standard -Y H +X W orientation is accepted.
func DecodeHDR(data []byte) (*FloatImage, error) {
	width, height, body, err := hdrHeader(data)
	if err != nil {
		return nil, err
	}

	// The pixel stream goes to the codec behind a canonical header.
	canonical := fmt.Sprintf("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", height, width)
	src, err := rgbe.Decode(io.MultiReader(strings.NewReader(canonical), bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("hdr: %v: %w", err, ErrDecode)
	}
	himg, ok := src.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("hdr: unexpected image type %T: %w", src, ErrDecode)
	}
	b := himg.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("hdr: decoded %dx%d, header says %dx%d: %w", b.Dx(), b.Dy(), width, height, ErrDecode)
	}

	img := &FloatImage{Width: width, Height: height, Pix: make([]float32, width*height*3)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, bl, _ := himg.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
			i := (y*width + x) * 3
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = float32(r), float32(g), float32(bl)
		}
	}
	return img, nil
}

// hdrHeader validates the signature, format and resolution lines and
// returns the image size plus the remaining pixel bytes.
func hdrHeader(data []byte) (width, height int, body []byte, err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	consumed := 0
	next := func() (string, error) {
		line, err := r.ReadString('\n')
		consumed += len(line)
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	magic, err := next()
	if err != nil || (magic != "#?RADIANCE" && magic != "#?RGBE") {
		return 0, 0, nil, fmt.Errorf("hdr: missing radiance signature: %w", ErrDecode)
	}
	for {
		line, err := next()
		if err != nil {
			return 0, 0, nil, fmt.Errorf("hdr: header: %w", ErrDecode)
		}
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "FORMAT=") && line != "FORMAT=32-bit_rle_rgbe" {
			return 0, 0, nil, fmt.Errorf("hdr: unsupported %s: %w", line, ErrDecode)
		}
	}

	res, err := next()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("hdr: resolution: %w", ErrDecode)
	}
	var yTag, xTag string
	if _, err := fmt.Sscanf(res, "%s %d %s %d", &yTag, &height, &xTag, &width); err != nil {
		return 0, 0, nil, fmt.Errorf("hdr: resolution %q: %w", res, ErrDecode)
	}
	if yTag != "-Y" || xTag != "+X" {
		return 0, 0, nil, fmt.Errorf("hdr: unsupported orientation %q: %w", res, ErrDecode)
	}
	if width <= 0 || height <= 0 || width > MaxHDRSide || height > MaxHDRSide {
		return 0, 0, nil, fmt.Errorf("hdr: size %dx%d out of range: %w", width, height, ErrDecode)
	}
	body = data[consumed:]
	if len(body) < minHDRBody(width, height) {
		return 0, 0, nil, fmt.Errorf("hdr: %d pixel bytes cannot hold %dx%d: %w", len(body), width, height, ErrDecode)
	}
	return width, height, body, nil
}

// minHDRBody is the smallest pixel stream that can encode width x height:
// flat scanlines below 8 pixels, otherwise one 127-pixel run per chunk and
// channel after the 4-byte scanline marker.
func minHDRBody(width, height int) int {
	if width < 8 || width > 0x7fff {
		return width * height * 4
	}
	runs := (width + 126) / 127
	return height * (4 + 4*2*runs)
}
