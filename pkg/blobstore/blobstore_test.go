/*
Copyright 2011 Google Inc.

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

package blobstore

import (
	"bytes"
	"testing"

	"but-next.dev/pkg/blob"
)

func TestStoreExistsReadRemove(t *testing.T) {
	repo := t.TempDir()
	if err := Init(repo); err != nil {
		t.Fatal(err)
	}

	h := blob.HashBytes([]byte("payload"))
	if Exists(repo, h) {
		t.Fatal("blob reported present before being stored")
	}

	if err := Store(repo, h, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if !Exists(repo, h) {
		t.Fatal("blob not reported present after Store")
	}

	got, err := Read(repo, h)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("Read = %q, want %q", got, "payload")
	}

	if err := Remove(repo, h); err != nil {
		t.Fatal(err)
	}
	if Exists(repo, h) {
		t.Fatal("blob still present after Remove")
	}
	// Removing an already-absent blob must not be an error.
	if err := Remove(repo, h); err != nil {
		t.Fatalf("Remove of already-removed blob returned error: %v", err)
	}
}

func TestPathIsSharded(t *testing.T) {
	h := blob.HashBytes([]byte("x"))
	prefix, suffix := h.Shard()
	path := Path("/repo", h)
	want := "/repo/blobs/" + prefix + "/" + suffix
	if path != want {
		t.Fatalf("Path = %s, want %s", path, want)
	}
}

func TestLockExcludesSecondHolder(t *testing.T) {
	repo := t.TempDir()
	if err := Init(repo); err != nil {
		t.Fatal(err)
	}

	l1, err := Lock(repo)
	if err != nil {
		t.Fatal(err)
	}
	defer l1.Unlock()

	if _, err := Lock(repo); err == nil {
		t.Fatal("second Lock on an already-locked repository succeeded")
	}
}
