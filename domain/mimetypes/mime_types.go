package mimetypes

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown MIME = "unknown"

	ImageJPEG MIME = "image/jpeg"
	ImagePNG  MIME = "image/png"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
	ImageBMP  MIME = "image/bmp"
	ImageSVG  MIME = "image/svg+xml"
)

// AllowedImages is the fixed list of image types a chat accepts.
var AllowedImages = []MIME{ImageJPEG, ImagePNG, ImageGIF, ImageWEBP, ImageBMP, ImageSVG}

// aliases seen in the wild that do not map cleanly through the registry.
var aliases = map[string]MIME{
	"image/jpg":       ImageJPEG,
	"image/pjpeg":     ImageJPEG,
	"image/svg":       ImageSVG,
	"image/x-ms-bmp":  ImageBMP,
	"image/x-bmp":     ImageBMP,
	"image/x-png":     ImagePNG,
	"image/x-windows": ImageBMP,
}

// Normalize strips parameters and lower-cases the media type, then resolves
// aliases known to the detection registry. Unparseable input yields Unknown.
func Normalize(declared string) MIME {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(declared))
	if err != nil {
		return Unknown
	}
	mt = strings.ToLower(mt)
	if alias, ok := aliases[mt]; ok {
		return alias
	}
	for _, allowed := range AllowedImages {
		if known := mimetype.Lookup(string(allowed)); known != nil && known.Is(mt) {
			return allowed
		}
	}
	return MIME(mt)
}

// IsImage reports whether the type is in the image/* family, allowed or not.
func IsImage(m MIME) bool {
	return strings.HasPrefix(string(m), "image/")
}

func IsAllowedImage(m MIME) bool {
	for _, allowed := range AllowedImages {
		if m == allowed {
			return true
		}
	}
	return false
}

// Known reports whether the type is one the detection registry knows about.
func Known(m MIME) bool {
	if m == Unknown || m == "" {
		return false
	}
	return mimetype.Lookup(string(m)) != nil
}
