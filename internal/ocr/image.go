package ocr

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// CheckImage verifies that imagePath names a readable, decodable image and
// returns its bounds. The file is closed before CheckImage returns.
func CheckImage(imagePath string) (image.Rectangle, error) {
	const op = "CheckImage"

	info, err := os.Stat(imagePath)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return image.Rectangle{}, NewError(op, KindFileAccess, ErrImageNotFound, imagePath)
		case os.IsPermission(err):
			return image.Rectangle{}, NewError(op, KindFileAccess, err, "permission denied accessing image file")
		default:
			return image.Rectangle{}, NewError(op, KindFileAccess, err, "error accessing image file")
		}
	}

	if !info.Mode().IsRegular() {
		return image.Rectangle{}, NewError(op, KindFileAccess, ErrInvalidImage, fmt.Sprintf("not a regular file: %s", imagePath))
	}
	if info.Size() == 0 {
		return image.Rectangle{}, NewError(op, KindFileAccess, ErrInvalidImage, fmt.Sprintf("empty file: %s", imagePath))
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		if os.IsPermission(err) {
			return image.Rectangle{}, NewError(op, KindFileAccess, err, "permission denied reading image file")
		}
		return image.Rectangle{}, NewError(op, KindFileAccess, ErrInvalidImage, fmt.Sprintf("%s: %v", imagePath, err))
	}

	return img.Bounds(), nil
}
