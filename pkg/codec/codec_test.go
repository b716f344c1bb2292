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

package codec

import (
	"bytes"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("compress me please "), 500)
	for _, kind := range []Kind{Zstd, Gzip, None} {
		t.Run(kind.String(), func(t *testing.T) {
			compressed, err := Compress(data, kind, 3)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Decompress(compressed, kind)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("round trip mismatch for %s", kind)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"zstd": Zstd, "gzip": Gzip, "none": None}
	for name, want := range cases {
		got, ok := ParseKind(name)
		if !ok || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, true", name, got, ok, want)
		}
	}
	if _, ok := ParseKind("lzma"); ok {
		t.Error("ParseKind accepted an unsupported name")
	}
}

func TestKindString(t *testing.T) {
	if Zstd.String() != "zstd" || Gzip.String() != "gzip" || None.String() != "none" {
		t.Fatal("unexpected Kind.String() output")
	}
}

func TestGzipIsRealRFC1952(t *testing.T) {
	// The first two bytes of any conforming gzip stream are the magic
	// number 0x1f 0x8b, unlike the reference tool's ad hoc wrapper format.
	compressed, err := Compress([]byte("hello"), Gzip, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) < 2 || compressed[0] != 0x1f || compressed[1] != 0x8b {
		t.Fatalf("gzip output does not start with the standard magic number: %x", compressed[:2])
	}
}
