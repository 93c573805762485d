package transport

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pierrec/lz4/v3"

	"github.com/cello-mesh/refresh/cmn/nlog"
	"github.com/cello-mesh/refresh/refresh"
)

// compressionThreshold gates lz4 compression: small control messages
// (heartbeats, particle batches) aren't worth the framing overhead.
const compressionThreshold = 4096

// Stream is a single point-to-point delivery channel to one processing
// element, the in-process stand-in for aistore's streaming transport.Stream.
type Stream struct {
	dest string
	ch   chan envelope
}

type envelope struct {
	blockKey string
	payload  []byte
	packed   bool
}

func newStream(dest string, depth int) *Stream {
	return &Stream{dest: dest, ch: make(chan envelope, depth)}
}

// enqueue encodes msg, optionally compressing, and pushes it onto the
// stream's delivery channel. It blocks if the channel is full, mirroring
// the backpressure a real network stream would apply.
func (s *Stream) enqueue(ctx context.Context, blockKey string, msg refresh.Msg) error {
	raw, err := refresh.Encode(msg)
	if err != nil {
		return fmt.Errorf("transport: encode: %w", err)
	}
	env := envelope{blockKey: blockKey, payload: raw}
	if len(raw) > compressionThreshold {
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("transport: compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("transport: compress close: %w", err)
		}
		env.payload = buf.Bytes()
		env.packed = true
	}
	select {
	case s.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver decodes the next envelope off the stream, blocking until one
// arrives or the context is cancelled.
func (s *Stream) deliver(ctx context.Context) (string, refresh.Msg, error) {
	select {
	case env := <-s.ch:
		raw := env.payload
		if env.packed {
			r := lz4.NewReader(bytes.NewReader(env.payload))
			var buf bytes.Buffer
			if _, err := buf.ReadFrom(r); err != nil {
				return "", refresh.Msg{}, fmt.Errorf("transport: decompress: %w", err)
			}
			raw = buf.Bytes()
		}
		msg, err := refresh.Decode(raw)
		if err != nil {
			return "", refresh.Msg{}, fmt.Errorf("transport: decode: %w", err)
		}
		return env.blockKey, msg, nil
	case <-ctx.Done():
		return "", refresh.Msg{}, ctx.Err()
	}
}

// StreamBundle owns one Stream per destination processing element, created
// lazily — mirrors aistore's transport/bundle.Streams pool keyed by target.
type StreamBundle struct {
	streams map[string]*Stream
	depth   int
}

func NewStreamBundle(depth int) *StreamBundle {
	return &StreamBundle{streams: map[string]*Stream{}, depth: depth}
}

func (b *StreamBundle) streamFor(dest string) *Stream {
	s, ok := b.streams[dest]
	if !ok {
		s = newStream(dest, b.depth)
		b.streams[dest] = s
		nlog.Infof("transport: opened stream to %s", dest)
	}
	return s
}
