package enums

import "fmt"

// MediaKind distinguishes gallery media.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// IsValid reports whether the value is a known MediaKind.
func (m MediaKind) IsValid() bool {
	return m == MediaKindImage || m == MediaKindVideo
}

// ParseMediaKind converts raw input into a MediaKind. Empty input is an image.
func ParseMediaKind(value string) (MediaKind, error) {
	if value == "" {
		return MediaKindImage, nil
	}
	kind := MediaKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid media kind %q", value)
	}
	return kind, nil
}
