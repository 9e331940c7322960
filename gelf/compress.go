package gelf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

type CompressionType int

const (
	CompressGzip CompressionType = iota
	CompressZlib
	CompressNone
)

// DefaultCompressionLevel defers to the compressor's own default.
const DefaultCompressionLevel = -1

func (c CompressionType) String() string {
	switch c {
	case CompressGzip:
		return "gzip"
	case CompressZlib:
		return "zlib"
	case CompressNone:
		return "none"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "", "gzip":
		return CompressGzip, nil
	case "zlib":
		return CompressZlib, nil
	case "none":
		return CompressNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func compress(c CompressionType, level int, payload []byte) ([]byte, error) {
	if c == CompressNone {
		return payload, nil
	}

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch c {
	case CompressGzip:
		w, err = gzip.NewWriterLevel(&buf, level)
	case CompressZlib:
		w, err = zlib.NewWriterLevel(&buf, level)
	default:
		return nil, fmt.Errorf("unknown compression %v", c)
	}
	if err != nil {
		return nil, fmt.Errorf("%v writer: %w", c, err)
	}
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("%v compress: %w", c, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%v compress: %w", c, err)
	}
	return buf.Bytes(), nil
}
