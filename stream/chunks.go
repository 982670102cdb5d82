package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
)

const defaultChunkSize = 4096

// Chunks returns a lazy, finite sequence of chunks read from r. Each chunk is
// a fresh slice. The sequence consumes r and cannot be restarted; a read
// failure is yielded once as the final element.
func Chunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = defaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		if r == nil {
			yield(nil, ErrNilReader)
			return
		}
		for {
			buf := make([]byte, size)
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// Decode drains chunks through a new Decoder and returns the accumulated
// text. Read failures and context cancellation are fatal; per-record decode
// failures are not.
func Decode(ctx context.Context, chunks iter.Seq2[[]byte, error], opts ...Option) (string, error) {
	d := NewDecoder(opts...)
	for chunk, err := range chunks {
		if err != nil {
			return "", fmt.Errorf("read stream: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		d.Write(chunk)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.Finish(), nil
}
