package wizard

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxImageBytes is the largest profile image the server accepts.
const MaxImageBytes = 5 << 20

var (
	ErrInvalidImage  = errors.New("file is not a supported image")
	ErrImageTooLarge = errors.New("image exceeds the size limit")
)

var imageExt = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|heic|heif)$`)

// Image is the picked profile picture. Filename is sent unchanged.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewImage accepts files whose MIME type is image/* or whose name carries a
// known image extension.
func NewImage(filename, contentType string, data []byte) (*Image, error) {
	isImageType := strings.HasPrefix(contentType, "image/")
	if !isImageType && !imageExt.MatchString(filename) {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	return &Image{Filename: filename, ContentType: contentType, Data: data}, nil
}

// LoadImage reads an image from disk and sniffs its content type.
func LoadImage(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return NewImage(filepath.Base(path), http.DetectContentType(data), data)
}
