package persistence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Codec serializes table snapshots before they reach the Store.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec stores snapshots as JSON arrays, the layout the browser console
// kept in local storage.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CBORCodec stores snapshots with Core Deterministic Encoding, so identical
// tables always produce identical bytes.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec configures deterministic encoding with nanosecond RFC 3339 times.
func NewCBORCodec() (*CBORCodec, error) {
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	enc, err := encOptions.EncMode()
	if err != nil {
		return nil, fmt.Errorf("persistence: cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("persistence: cbor decoder: %w", err)
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

func (c *CBORCodec) Name() string { return "cbor" }

func (c *CBORCodec) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

func (c *CBORCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

// ZstdCodec compresses the output of another codec.
type ZstdCodec struct {
	inner   Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCodec wraps inner with zstd compression at the default level.
func NewZstdCodec(inner Codec) (*ZstdCodec, error) {
	if inner == nil {
		inner = JSONCodec{}
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("persistence: zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: zstd decoder: %w", err)
	}
	return &ZstdCodec{inner: inner, encoder: encoder, decoder: decoder}, nil
}

func (c *ZstdCodec) Name() string { return c.inner.Name() + "+zstd" }

func (c *ZstdCodec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *ZstdCodec) Unmarshal(data []byte, v any) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("persistence: zstd decode: %w", err)
	}
	return c.inner.Unmarshal(raw, v)
}

// ParseCodec resolves a configured codec name ("json" or "cbor"), optionally
// wrapped in zstd compression.
func ParseCodec(name string, compress bool) (Codec, error) {
	var codec Codec
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		codec = JSONCodec{}
	case "cbor":
		c, err := NewCBORCodec()
		if err != nil {
			return nil, err
		}
		codec = c
	default:
		return nil, fmt.Errorf("persistence: unknown codec %q", name)
	}
	if !compress {
		return codec, nil
	}
	return NewZstdCodec(codec)
}
