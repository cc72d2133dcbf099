// Package codec serializes network snapshots to and from interchange
// formats. Codecs only ever see plain snapshot data, never the live
// network.
package codec

import (
	"io"
	"path/filepath"

	"mycelia/internal/domain"
)

// Importer parses snapshot data from an interchange format
type Importer interface {
	Parse(r io.Reader) (*domain.Snapshot, error)
	Format() string
}

// Exporter writes snapshot data in an interchange format
type Exporter interface {
	Export(snap *domain.Snapshot, w io.Writer) error
	Format() string
}

// Codec both parses and exports one format
type Codec interface {
	Importer
	Exporter
}

// ForPath returns the codec matching a file extension; YAML is the
// default for unknown extensions
func ForPath(path string) Codec {
	switch filepath.Ext(path) {
	case ".json":
		return NewJSONCodec()
	default:
		return NewYAMLCodec()
	}
}
