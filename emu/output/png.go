package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// SavePNG encodes img as PNG to the file at path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return f.Close()
}
