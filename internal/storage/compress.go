package storage

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipWriter compresses into an underlying object writer. Close flushes the
// gzip trailer before closing the object.
type gzipWriter struct {
	*gzip.Writer
	dst io.WriteCloser
}

func newGzipWriter(dst io.WriteCloser) *gzipWriter {
	return &gzipWriter{Writer: gzip.NewWriter(dst), dst: dst}
}

func (w *gzipWriter) Close() error {
	if err := w.Writer.Close(); err != nil {
		_ = w.dst.Close()
		return err
	}
	return w.dst.Close()
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
