package texture

import (
	"fmt"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

// DecodeTGA decodes a TGA file into top-down pixels.
// Supports uncompressed and RLE true-color (24/32-bit) and grayscale (8-bit).
func DecodeTGA(data []byte) (*Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga: header too short: %w", ErrDecode)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported: %w", ErrDecode)
	}

	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	rle := imageType == TGATypeRLE || imageType == TGATypeGrayRLE
	switch {
	case gray && bpp == 8:
	case !gray && (imageType == TGATypeUncompressed || imageType == TGATypeRLE) && (bpp == 24 || bpp == 32):
	default:
		return nil, fmt.Errorf("tga: unsupported type %d at %d bpp: %w", imageType, bpp, ErrDecode)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("tga: empty image: %w", ErrDecode)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga: data truncated: %w", ErrDecode)
	}
	pixelData := data[offset:]

	// Check the payload can cover the image before allocating for it.
	bytesPerPixel := bpp / 8
	need := width * height * bytesPerPixel
	if rle {
		need = (width*height + 127) / 128 * (1 + bytesPerPixel)
	}
	if len(pixelData) < need {
		return nil, fmt.Errorf("tga: %d pixel bytes cannot hold %dx%d: %w", len(pixelData), width, height, ErrDecode)
	}

	img := &Image{
		Width:    width,
		Height:   height,
		Channels: bytesPerPixel,
		Pix:      make([]byte, width*height*bytesPerPixel),
	}

	// Bit 5 of the descriptor: rows stored top-to-bottom.
	topToBottom := (descriptor & 0x20) != 0

	put := func(pixelIdx int, src []byte) {
		x := pixelIdx % width
		y := pixelIdx / width
		if !topToBottom {
			y = height - 1 - y
		}
		dst := img.Pix[(y*width+x)*bytesPerPixel:]
		if bytesPerPixel == 1 {
			dst[0] = src[0]
			return
		}
		// BGR(A) to RGB(A)
		dst[0], dst[1], dst[2] = src[2], src[1], src[0]
		if bytesPerPixel == 4 {
			dst[3] = src[3]
		}
	}

	if !rle {
		for i := 0; i < width*height; i++ {
			put(i, pixelData[i*bytesPerPixel:])
		}
		return img, nil
	}

	if err := decodeTGARLE(pixelData, width*height, bytesPerPixel, put); err != nil {
		return nil, err
	}
	return img, nil
}

// decodeTGARLE expands RLE packets, calling put for each pixel in file order.
func decodeTGARLE(pixelData []byte, pixelCount, bytesPerPixel int, put func(int, []byte)) error {
	pixelIdx := 0
	dataIdx := 0

	for pixelIdx < pixelCount {
		if dataIdx >= len(pixelData) {
			return fmt.Errorf("tga: RLE data ends at pixel %d of %d: %w", pixelIdx, pixelCount, ErrDecode)
		}
		packet := pixelData[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated
			if dataIdx+bytesPerPixel > len(pixelData) {
				return fmt.Errorf("tga: truncated run packet: %w", ErrDecode)
			}
			src := pixelData[dataIdx : dataIdx+bytesPerPixel]
			dataIdx += bytesPerPixel
			for i := 0; i < count && pixelIdx < pixelCount; i++ {
				put(pixelIdx, src)
				pixelIdx++
			}
			continue
		}

		// Raw packet: count literal pixels
		for i := 0; i < count && pixelIdx < pixelCount; i++ {
			if dataIdx+bytesPerPixel > len(pixelData) {
				return fmt.Errorf("tga: truncated raw packet: %w", ErrDecode)
			}
			put(pixelIdx, pixelData[dataIdx:dataIdx+bytesPerPixel])
			dataIdx += bytesPerPixel
			pixelIdx++
		}
	}

	return nil
}
