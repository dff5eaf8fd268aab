// cmd/tarmirror/compression.go
package main

import (
	"fmt"
	"strings"
)

// Compression pairs the archiver flag with the archive file extension.
type Compression struct {
	Name      string
	Flag      string // empty for no compression
	Extension string // appended after ".tar"
}

var compressions = map[string]Compression{
	"gzip": {Name: "gzip", Flag: "-z", Extension: ".gz"},
	"bzip": {Name: "bzip", Flag: "-j", Extension: ".bz"},
	"xz":   {Name: "xz", Flag: "-J", Extension: ".xz"},
	"none": {Name: "none", Flag: "", Extension: ""},
}

const defaultCompression = "gzip"

// ParseCompression looks up a compression mode by name.
func ParseCompression(name string) (Compression, error) {
	c, ok := compressions[name]
	if !ok {
		return Compression{}, &ConfigError{
			Key: "compression",
			Err: fmt.Errorf("unknown compression %q, possible values are: %s", name, strings.Join(CompressionNames(), ", ")),
		}
	}
	return c, nil
}

// CompressionNames lists the recognized compression names, sorted.
func CompressionNames() []string {
	return mapsKeys(compressions)
}

// ArchiveName returns "<name>.tar<ext>".
func (c Compression) ArchiveName(name string) string {
	return name + ".tar" + c.Extension
}
