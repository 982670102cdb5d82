// Package stream decodes the line-framed streaming reply of the chat
// completion endpoint into a single accumulated text value.
//
// The body is UTF-8 text delivered in arbitrarily sized chunks. Records are
// newline separated and shaped <tag>:<payload>. Only the content tag "0" is
// consumed; its payload is a JSON object whose string "content" field is
// appended to the accumulator. Other tags are ignored, malformed payloads are
// skipped, and an unterminated trailing record is discarded.
//
//	text, err := stream.Decode(ctx, stream.Chunks(resp.Body, 0))
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ContentTag identifies records that carry reply text.
const ContentTag = "0"

const maxPayloadLog = 200

// FragmentHandler observes each decoded content fragment together with the
// text accumulated so far. It is a preview channel only.
type FragmentHandler func(fragment, accumulated string)

// SkipHandler observes records skipped because they failed to decode.
type SkipHandler func(err *DecodeError)

// Stats summarizes what a Decoder has seen.
type Stats struct {
	Records   int // Content records appended to the accumulator.
	Ignored   int // Records with an unrecognized tag or no tag.
	Skipped   int // Content records that failed to decode.
	Discarded int // Bytes of unterminated trailing data dropped by Finish.
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithFragmentHandler registers a live preview observer.
func WithFragmentHandler(fn FragmentHandler) Option {
	return func(d *Decoder) { d.onFragment = fn }
}

// WithSkipHandler registers an observer for recovered decode errors.
func WithSkipHandler(fn SkipHandler) Option {
	return func(d *Decoder) { d.onSkip = fn }
}

// Decoder folds stream chunks into accumulated reply text. A record split
// across chunks is reassembled from a carry buffer before parsing.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	carry      []byte
	text       strings.Builder
	line       int
	stats      Stats
	finished   bool
	onFragment FragmentHandler
	onSkip     SkipHandler
}

// NewDecoder creates an empty Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Write folds one chunk into the decoder. It never fails; it implements
// io.Writer so a response body can be copied straight in.
func (d *Decoder) Write(chunk []byte) (int, error) {
	if d.finished {
		return 0, errors.New("write to finished decoder")
	}

	d.carry = append(d.carry, chunk...)
	for {
		i := bytes.IndexByte(d.carry, '\n')
		if i < 0 {
			break
		}
		d.record(d.carry[:i])
		d.carry = d.carry[i+1:]
	}

	// Release the consumed prefix once the carry is drained.
	if len(d.carry) == 0 {
		d.carry = nil
	}
	return len(chunk), nil
}

// Finish ends the stream, discards any unterminated trailing record, and
// returns the accumulated text. Further writes fail.
func (d *Decoder) Finish() string {
	if !d.finished {
		d.stats.Discarded = len(d.carry)
		d.carry = nil
		d.finished = true
	}
	return d.text.String()
}

// Text returns the text accumulated so far.
func (d *Decoder) Text() string {
	return d.text.String()
}

// Stats returns counters for the records seen so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) record(raw []byte) {
	d.line++
	raw = bytes.TrimSuffix(raw, []byte("\r"))
	if len(raw) == 0 {
		return
	}

	tag, payload, found := bytes.Cut(raw, []byte(":"))
	if !found || string(tag) != ContentTag {
		d.stats.Ignored++
		return
	}

	fragment, err := parseContent(payload)
	if err != nil {
		d.skip(payload, err)
		return
	}

	d.stats.Records++
	if fragment == "" {
		return
	}
	d.text.WriteString(fragment)
	if d.onFragment != nil {
		d.onFragment(fragment, d.text.String())
	}
}

func (d *Decoder) skip(payload []byte, err error) {
	d.stats.Skipped++
	if d.onSkip == nil {
		return
	}
	raw := string(payload)
	if len(raw) > maxPayloadLog {
		raw = raw[:maxPayloadLog]
	}
	d.onSkip(&DecodeError{Line: d.line, Payload: raw, Err: err})
}

func parseContent(payload []byte) (string, error) {
	var rec struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return "", err
	}
	if len(rec.Content) == 0 || string(rec.Content) == "null" {
		return "", nil
	}

	var content string
	if err := json.Unmarshal(rec.Content, &content); err != nil {
		return "", err
	}
	return content, nil
}
