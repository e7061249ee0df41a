// Package codec converts canvas fragments and layout snapshots to and from
// their wire formats.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"atelier/internal/domain"
)

// ErrUnknownFormat is returned for a format no codec handles
var ErrUnknownFormat = errors.New("unknown format")

// Importer interface for importing fragments from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Fragment, error)
	Format() string
}

// Exporter interface for exporting fragments to various formats
type Exporter interface {
	Export(fragment *domain.Fragment, w io.Writer) error
	Format() string
}

// Codec both parses and exports a format
type Codec interface {
	Importer
	Exporter
	ContentType() string
}

// ForFormat returns the codec for a format name. Empty means JSON.
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromPath guesses the format from a file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
