package stream_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/chat/stream"
)

func feed(d *stream.Decoder, chunks ...string) string {
	for _, c := range chunks {
		d.Write([]byte(c))
	}
	return d.Finish()
}

func TestDecoder_Records(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{
			name:   "single record",
			chunks: []string{"0:{\"content\":\"Hello\"}\n"},
			want:   "Hello",
		},
		{
			name:   "record split across chunks",
			chunks: []string{"0:{\"content\":\"Hel", "lo\"}\n0:{\"content\":\" world\"}\n"},
			want:   "Hello world",
		},
		{
			name:   "byte at a time",
			chunks: splitBytes("0:{\"content\":\"ab\"}\n0:{\"content\":\"cd\"}\n"),
			want:   "abcd",
		},
		{
			name:   "multibyte rune split across chunks",
			chunks: []string{"0:{\"content\":\"caf\xc3", "\xa9\"}\n"},
			want:   "café",
		},
		{
			name:   "unrecognized tag ignored",
			chunks: []string{"9:{\"x\":1}\n"},
			want:   "",
		},
		{
			name:   "malformed record skipped",
			chunks: []string{"0:{not json}\n0:{\"content\":\"ok\"}\n"},
			want:   "ok",
		},
		{
			name:   "non-string content skipped",
			chunks: []string{"0:{\"content\":42}\n0:{\"content\":\"ok\"}\n"},
			want:   "ok",
		},
		{
			name:   "record without content field",
			chunks: []string{"0:{\"other\":\"x\"}\n"},
			want:   "",
		},
		{
			name:   "carriage returns stripped",
			chunks: []string{"0:{\"content\":\"a\"}\r\n0:{\"content\":\"b\"}\r\n"},
			want:   "ab",
		},
		{
			name:   "blank lines and untagged lines",
			chunks: []string{"\n\nnoise\n0:{\"content\":\"x\"}\n"},
			want:   "x",
		},
		{
			name:   "unterminated trailing record discarded",
			chunks: []string{"0:{\"content\":\"kept\"}\n0:{\"content\":\"lost\"}"},
			want:   "kept",
		},
		{
			name:   "escaped newline in content",
			chunks: []string{"0:{\"content\":\"line1\\nline2\"}\n"},
			want:   "line1\nline2",
		},
		{
			name:   "empty stream",
			chunks: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feed(stream.NewDecoder(), tt.chunks...)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecoder_Stats(t *testing.T) {
	d := stream.NewDecoder()

	feed(d,
		"0:{\"content\":\"a\"}\n",
		"9:{\"x\":1}\n",
		"0:{not json}\n",
		"0:{\"content\":\"b\"}\n",
		"0:{\"content\":\"tail",
	)

	stats := d.Stats()
	if stats.Records != 2 {
		t.Errorf("got Records %d, want 2", stats.Records)
	}
	if stats.Ignored != 1 {
		t.Errorf("got Ignored %d, want 1", stats.Ignored)
	}
	if stats.Skipped != 1 {
		t.Errorf("got Skipped %d, want 1", stats.Skipped)
	}
	if stats.Discarded != len("0:{\"content\":\"tail") {
		t.Errorf("got Discarded %d, want %d", stats.Discarded, len("0:{\"content\":\"tail"))
	}
}

func TestDecoder_FragmentHandler(t *testing.T) {
	var fragments, accumulated []string
	d := stream.NewDecoder(stream.WithFragmentHandler(func(fragment, acc string) {
		fragments = append(fragments, fragment)
		accumulated = append(accumulated, acc)
	}))

	feed(d, "0:{\"content\":\"Hel\"}\n0:{\"content\":\"lo\"}\n")

	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(fragments))
	}
	if fragments[1] != "lo" {
		t.Errorf("got fragment %q, want %q", fragments[1], "lo")
	}
	if accumulated[1] != "Hello" {
		t.Errorf("got accumulated %q, want %q", accumulated[1], "Hello")
	}
}

func TestDecoder_SkipHandler(t *testing.T) {
	var skipped []*stream.DecodeError
	d := stream.NewDecoder(stream.WithSkipHandler(func(err *stream.DecodeError) {
		skipped = append(skipped, err)
	}))

	got := feed(d, "0:{\"content\":\"a\"}\n0:{not json}\n0:{\"content\":\"b\"}\n")

	if got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
	if len(skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(skipped))
	}
	if skipped[0].Line != 2 {
		t.Errorf("got line %d, want 2", skipped[0].Line)
	}
	if skipped[0].Payload != "{not json}" {
		t.Errorf("got payload %q, want %q", skipped[0].Payload, "{not json}")
	}
	if errors.Unwrap(skipped[0]) == nil {
		t.Error("DecodeError should wrap the parse error")
	}
}

func TestDecoder_WriteAfterFinish(t *testing.T) {
	d := stream.NewDecoder()
	d.Finish()

	if _, err := d.Write([]byte("0:{\"content\":\"x\"}\n")); err == nil {
		t.Error("expected error writing to finished decoder")
	}
	if d.Finish() != "" {
		t.Error("finished decoder should not accumulate")
	}
}

func TestDecoder_Text(t *testing.T) {
	d := stream.NewDecoder()
	d.Write([]byte("0:{\"content\":\"par\"}\n0:{\"content\":\"tial"))

	if got := d.Text(); got != "par" {
		t.Errorf("got %q, want %q", got, "par")
	}
}

func splitBytes(s string) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i : i+1]
	}
	return out
}
