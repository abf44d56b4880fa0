package assetmodule

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const thumbPrefix = "thumb_"

// ImageProcessor renders thumbnails of uploaded images
type ImageProcessor struct {
	width   int
	quality float32
}

// NewImageProcessor creates a processor producing thumbnails width pixels
// wide at the given webp quality (1-100)
func NewImageProcessor(width, quality int) *ImageProcessor {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return &ImageProcessor{width: width, quality: float32(quality)}
}

// Thumbnail scales the image down to the configured width, keeping its
// aspect ratio, and encodes it as webp. Smaller images keep their size.
func (ip *ImageProcessor) Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if ip.width > 0 && img.Bounds().Dx() > ip.width {
		img = imaging.Resize(img, ip.width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: ip.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailName returns the thumbnail file name of a stored image
func ThumbnailName(filename string) string {
	return thumbPrefix + strings.TrimSuffix(filename, filepath.Ext(filename)) + ".webp"
}
