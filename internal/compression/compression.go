// Package compression provides the stream codecs used for compressed data
// files.
package compression

import (
	"fmt"
	"io"
	"strings"
)

// Algorithm defines compression types
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
	Zstd   Algorithm = 2
	LZ4    Algorithm = 3
)

// File suffixes recognized by ForPath
const (
	SnappyExt = ".sz"
	ZstdExt   = ".zst"
	LZ4Ext    = ".lz4"
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// ForPath picks the stream algorithm from a file name
func ForPath(path string) Algorithm {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, SnappyExt):
		return Snappy
	case strings.HasSuffix(lower, ZstdExt):
		return Zstd
	case strings.HasSuffix(lower, LZ4Ext):
		return LZ4
	default:
		return None
	}
}

// NewReader wraps r with a decoder for algo. Close releases the decoder but
// does not close r.
func NewReader(r io.Reader, algo Algorithm) (io.ReadCloser, error) {
	switch algo {
	case None:
		return io.NopCloser(r), nil
	case Snappy:
		return io.NopCloser(newSnappyReader(r)), nil
	case Zstd:
		return newZstdReader(r)
	case LZ4:
		return io.NopCloser(newLZ4Reader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// NewWriter wraps w with an encoder for algo. Close flushes the encoder but
// does not close w.
func NewWriter(w io.Writer, algo Algorithm) (io.WriteCloser, error) {
	switch algo {
	case None:
		return nopCloser{w}, nil
	case Snappy:
		return newSnappyWriter(w), nil
	case Zstd:
		return newZstdWriter(w)
	case LZ4:
		return newLZ4Writer(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
