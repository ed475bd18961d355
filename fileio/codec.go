package fileio

import (
	"bytes"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Codec compresses and decompresses file contents
type Codec interface {
	Name() string                           // Name returns the name of this Codec
	Compress(data []byte) ([]byte, error)   // Compress encodes data
	Decompress(data []byte) ([]byte, error) // Decompress decodes data produced by Compress
}

// CodecFor returns the Codec matching a file's extension, or nil if the file is uncompressed
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzipCodec{}
	case ".zst":
		return zstdCodec{}
	case ".lz4":
		return lz4Codec{}
	}
	return nil
}

func compressWith(w io.WriteCloser, buf *bytes.Buffer, data []byte) ([]byte, error) {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type gzipCodec struct{}

func (gzipCodec) Name() string {
	return "gzip"
}

func (gzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	return compressWith(gzip.NewWriter(&buf), &buf, data)
}

func (gzipCodec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

type zstdCodec struct{}

func (zstdCodec) Name() string {
	return "zstd"
}

func (zstdCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "zstd")
	}
	return compressWith(w, &buf, data)
}

func (zstdCodec) Decompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "zstd")
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

type lz4Codec struct{}

func (lz4Codec) Name() string {
	return "lz4"
}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	return compressWith(lz4.NewWriter(&buf), &buf, data)
}

func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	return ioutil.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
