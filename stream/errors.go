package stream

import (
	"errors"
	"fmt"
)

// ErrNilReader is returned by Chunks consumers when no body was supplied.
var ErrNilReader = errors.New("stream reader is nil")

// DecodeError describes a content record that could not be decoded. It is
// always recovered: the record is skipped and decoding continues.
type DecodeError struct {
	Line    int    // 1-based record number within the stream.
	Payload string // Raw payload, truncated for logging.
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
