// Package iptc reads the IPTC keyword list (dataset 2:25) embedded in images.
package iptc

import (
	"bytes"
	"io"
	"os"

	"github.com/bep/imagemeta"
)

// keywordsTag is the imagemeta name of IPTC dataset 2:25.
const keywordsTag = "Keywords"

// source is what imagemeta needs to walk an image.
type source interface {
	io.ReadSeeker
	io.ReaderAt
}

// Reader reads keywords from image files on disk.
type Reader struct{}

// ReadKeywords implements tagging.KeywordReader.
func (Reader) ReadKeywords(path string) ([]string, bool) {
	return ReadKeywords(path)
}

// ReadKeywords opens the image at path and returns its IPTC keywords in file
// order. The boolean is false when the file cannot be read, its format is not
// supported, or it carries no keyword dataset. It never returns an error.
func ReadKeywords(path string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	return decode(f)
}

// DecodeKeywords is ReadKeywords for an in-memory image.
func DecodeKeywords(data []byte) ([]string, bool) {
	if len(data) == 0 {
		return nil, false
	}
	return decode(bytes.NewReader(data))
}

func decode(r source) ([]string, bool) {
	format, ok := detectFormat(r)
	if !ok {
		return nil, false
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, false
	}

	var keywords []string
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:           r,
		ImageFormat: format,
		Sources:     imagemeta.IPTC,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Source == imagemeta.IPTC && ti.Tag == keywordsTag
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			values := tagValueStrings(ti.Value)
			if values == nil {
				return nil
			}
			keywords = append(keywords, values...)
			found = true
			return nil
		},
	})
	if err != nil || !found {
		return nil, false
	}
	return keywords, true
}

// tagValueStrings flattens a tag value. Repeatable IPTC datasets may arrive
// as a single string per call or as a list.
func tagValueStrings(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// detectFormat sniffs the container format from the first bytes.
func detectFormat(r io.ReaderAt) (imagemeta.ImageFormat, bool) {
	var head [12]byte
	n, _ := r.ReadAt(head[:], 0)
	b := head[:n]

	switch {
	case bytes.HasPrefix(b, []byte{0xFF, 0xD8, 0xFF}):
		return imagemeta.JPEG, true
	case bytes.HasPrefix(b, []byte{0x89, 'P', 'N', 'G'}):
		return imagemeta.PNG, true
	case bytes.HasPrefix(b, []byte("II*\x00")), bytes.HasPrefix(b, []byte("MM\x00*")):
		return imagemeta.TIFF, true
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return imagemeta.WebP, true
	default:
		var unknown imagemeta.ImageFormat
		return unknown, false
	}
}
