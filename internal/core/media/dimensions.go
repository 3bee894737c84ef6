package media

import (
	"fmt"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ImageDimensions decodes an image and returns its displayed size, honoring the
// EXIF orientation tag so rotated phone photos report swapped dimensions.
func ImageDimensions(file File) (width, height int, err error) {
	if file.Open == nil {
		return 0, 0, fmt.Errorf("file has no content")
	}
	rc, err := file.Open()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Printf("Warning: failed to close image reader: %v", closeErr)
		}
	}()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}
