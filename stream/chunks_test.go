package stream_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/tailored-agentic-units/chat/stream"
)

func TestChunks_Sizes(t *testing.T) {
	body := "0123456789"

	var got []string
	for chunk, err := range stream.Chunks(strings.NewReader(body), 4) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(chunk))
	}

	want := []string{"0123", "4567", "89"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunks_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(boom))

	var chunks int
	var last error
	for _, err := range stream.Chunks(r, 0) {
		if err != nil {
			last = err
			continue
		}
		chunks++
	}

	if chunks != 1 {
		t.Errorf("got %d chunks, want 1", chunks)
	}
	if !errors.Is(last, boom) {
		t.Errorf("got error %v, want %v", last, boom)
	}
}

func TestChunks_NilReader(t *testing.T) {
	for _, err := range stream.Chunks(nil, 0) {
		if !errors.Is(err, stream.ErrNilReader) {
			t.Errorf("got %v, want ErrNilReader", err)
		}
	}
}

func TestChunks_EarlyBreak(t *testing.T) {
	r := strings.NewReader("aaaabbbbcccc")

	for range stream.Chunks(r, 4) {
		break
	}

	rest, _ := io.ReadAll(r)
	if string(rest) != "bbbbcccc" {
		t.Errorf("got remaining %q, want %q", rest, "bbbbcccc")
	}
}

func TestDecode(t *testing.T) {
	body := "0:{\"content\":\"Hello\"}\n2:[{\"meta\":true}]\n0:{\"content\":\" world\"}\n"

	// OneByteReader forces every record across many chunk boundaries.
	text, err := stream.Decode(context.Background(), stream.Chunks(iotest.OneByteReader(strings.NewReader(body)), 0))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("got %q, want %q", text, "Hello world")
	}
}

func TestDecode_ReadErrorIsFatal(t *testing.T) {
	boom := errors.New("unexpected EOF")
	r := io.MultiReader(strings.NewReader("0:{\"content\":\"a\"}\n"), iotest.ErrReader(boom))

	text, err := stream.Decode(context.Background(), stream.Chunks(r, 0))
	if !errors.Is(err, boom) {
		t.Fatalf("got error %v, want %v", err, boom)
	}
	if text != "" {
		t.Errorf("got text %q on failure, want empty", text)
	}
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stream.Decode(ctx, stream.Chunks(strings.NewReader("0:{\"content\":\"a\"}\n"), 0))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
