// Package dataset loads the people a resolver suggests from.
//
// Two file formats are understood: TOML with one [[people]] table per
// person, and msgpack holding an array of people. The format is picked from
// the file extension.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files whose extension maps to no format.
var ErrUnsupportedFormat = errors.New("unsupported data set format")

// FileFormat represents the supported data set encodings
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatTOML               // [[people]] tables
	FormatMsgpack            // msgpack array of people
)

// FormatInfo contains metadata about a data set file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML People Table",
		Extensions:  []string{".toml"},
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "Msgpack People Array",
		Extensions:  []string{".bin", ".msgpack", ".mpk"},
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// DetectFormat maps a filename to its format by extension.
func DetectFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if ext == e {
				return format
			}
		}
	}
	return FormatUnknown
}

// ValidateFile checks that filename exists, is a regular file and has a
// known extension.
func ValidateFile(filename string) (FileFormat, error) {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to stat data set %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return FormatUnknown, fmt.Errorf("data set %s is a directory", filename)
	}
	format := DetectFormat(filename)
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%s (extension %q): %w", filename, filepath.Ext(filename), ErrUnsupportedFormat)
	}
	return format, nil
}
