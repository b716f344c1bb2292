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

// Package blob defines the content hash that addresses a but-next blob.
package blob

import (
	"fmt"
	"io"
	"os"

	"but-next.dev/pkg/pools"
	"lukechampine.com/blake3"
)

// HashSize is the length in bytes of a BLAKE3-256 digest.
const HashSize = 32

// chunkSize is the read buffer used when streaming a file through the
// hasher. Large enough to keep syscall overhead down, small enough that
// hashing a multi-gigabyte file doesn't pull it into memory.
const chunkSize = 64 * 1024

// Hash is the lowercase hex encoding of a BLAKE3-256 digest. It is the
// identity of a blob: two blobs with equal Hash are defined to have equal
// content.
type Hash string

// Valid reports whether h looks like a well-formed hash: 64 lowercase hex
// characters.
func (h Hash) Valid() bool {
	if len(h) != HashSize*2 {
		return false
	}
	for _, r := range string(h) {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

func (h Hash) String() string { return string(h) }

// Shard splits h into a 2-character directory prefix and the remaining
// suffix, the layout used by the blob store to avoid putting millions of
// files in a single directory. Inputs shorter than two characters return an
// empty suffix; this only matters for tests.
func (h Hash) Shard() (prefix, suffix string) {
	s := string(h)
	if len(s) < 2 {
		return s, ""
	}
	return s[:2], s[2:]
}

// HashBytes returns the BLAKE3 hash of data, hex-encoded.
func HashBytes(data []byte) Hash {
	sum := blake3.Sum256(data)
	return Hash(fmt.Sprintf("%x", sum[:]))
}

// HashFile streams path through a BLAKE3 hasher in fixed-size chunks,
// never holding the whole file in memory, and returns its hex digest.
func HashFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(HashSize, nil)
	buf := pools.GetChunk(chunkSize)
	defer pools.PutChunk(buf)

	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return "", werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return Hash(fmt.Sprintf("%x", h.Sum(nil))), nil
}
