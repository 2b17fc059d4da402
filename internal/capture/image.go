package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrImageNotFound is returned when an image file cannot be read or decoded.
var ErrImageNotFound = errors.New("could not load image")

// LoadImage reads a still image from disk in BGR colour order.
// The caller is responsible for closing the returned Mat.
func LoadImage(path string) (*gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	return &img, nil
}

// DecodeImage decodes encoded image bytes (JPEG, PNG, ...) in BGR colour order.
// The caller is responsible for closing the returned Mat.
func DecodeImage(data []byte) (*gocv.Mat, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode image: empty input")
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("decode image: unsupported or corrupt data")
	}
	return &img, nil
}

// EncodeJPEG encodes img as JPEG bytes.
func EncodeJPEG(img *gocv.Mat) ([]byte, error) {
	if img == nil || img.Empty() {
		return nil, fmt.Errorf("encode jpeg: empty image")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *img)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
