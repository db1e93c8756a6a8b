package nasa

import (
	"bytes"
	"image"
	"image/color"

	// Register the decoders the rover and EPIC archives actually serve.
	_ "image/jpeg"
	_ "image/png"
)

// minPhotoSide is the minimum acceptable width and height in pixels.
const minPhotoSide = 1024

// validatePhoto checks the downloaded image header against the quality rules:
// both sides at least minPhotoSide, and, when colorOnly is set, a
// non-grayscale color mode. Only the header is decoded, not the full image.
func validatePhoto(data []byte, colorOnly bool) bool {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false
	}
	if cfg.Width < minPhotoSide || cfg.Height < minPhotoSide {
		return false
	}
	if colorOnly && isGrayscale(cfg.ColorModel) {
		return false
	}
	return true
}

func isGrayscale(m color.Model) bool {
	return m == color.GrayModel || m == color.Gray16Model
}
