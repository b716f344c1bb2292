/*
Copyright 2014 The Perkeep Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package codec compresses and decompresses blob payloads under a small,
// closed set of algorithms. The algorithm used for a blob is recorded in
// its owning snapshot, not alongside the blob itself, so decoding always
// requires the caller to supply the kind.
package codec

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"but-next.dev/pkg/pools"
)

// Kind identifies a compression algorithm. The zero value is Zstd.
type Kind int

const (
	Zstd Kind = iota
	Gzip
	None
)

// String returns the lowercase on-the-wire name used in snapshot JSON.
func (k Kind) String() string {
	switch k {
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// ParseKind maps a snapshot's lowercase compression name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "zstd":
		return Zstd, true
	case "gzip":
		return Gzip, true
	case "none":
		return None, true
	default:
		return 0, false
	}
}

// Compress encodes data under kind. level is a standard zstd level in
// [1, 22]; it is ignored by Gzip and None. Callers are expected to have
// already clamped level.
func Compress(data []byte, kind Kind, level int) ([]byte, error) {
	switch kind {
	case Zstd:
		return compressZstd(data, level)
	case Gzip:
		return compressGzip(data)
	case None:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	default:
		return nil, &unsupportedKindError{kind}
	}
}

// Decompress reverses Compress for the same kind.
func Decompress(data []byte, kind Kind) ([]byte, error) {
	switch kind {
	case Zstd:
		return decompressZstd(data)
	case Gzip:
		return decompressGzip(data)
	case None:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	default:
		return nil, &unsupportedKindError{kind}
	}
}

type unsupportedKindError struct{ kind Kind }

func (e *unsupportedKindError) Error() string {
	return "codec: unsupported compression kind"
}

func compressZstd(data []byte, level int) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// compressGzip produces a standard RFC 1952 gzip stream, using
// klauspost/compress's faster drop-in implementation of the stdlib gzip
// API. This keeps gzip-compressed blobs interoperable with any ordinary
// gzip tool, which the reference implementation's ad hoc wrapper format
// was not.
func compressGzip(data []byte) ([]byte, error) {
	buf := pools.BytesBuffer()
	defer pools.PutBuffer(buf)

	w := gzip.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decompressGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := pools.BytesBuffer()
	defer pools.PutBuffer(buf)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
