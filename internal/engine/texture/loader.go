package texture

import (
	"fmt"
	"path/filepath"
)

// FileReader reads asset bytes by path.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Loader reads and decodes images through a FileReader.
type Loader struct {
	files FileReader
}

// NewLoader creates a loader over files.
func NewLoader(files FileReader) *Loader {
	return &Loader{files: files}
}

// LoadImage reads and decodes an 8-bit image.
func (l *Loader) LoadImage(path string) (*Image, error) {
	data, err := l.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	img, err := DecodeImage(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	return img, nil
}

// LoadHDR reads and decodes a Radiance HDR image, rows bottom-up for upload.
func (l *Loader) LoadHDR(path string) (*FloatImage, error) {
	data, err := l.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load hdr %s: %w", path, err)
	}
	img, err := DecodeHDR(data)
	if err != nil {
		return nil, fmt.Errorf("load hdr %s: %w", path, err)
	}
	img.FlipVertical()
	return img, nil
}
