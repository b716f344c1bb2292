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

package manifest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"but-next.dev/pkg/blob"
	"but-next.dev/pkg/blobstore"
	"but-next.dev/pkg/codec"
)

func mustInit(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	if err := blobstore.Init(repo); err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := mustInit(t)
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	snap := New(repo, "home", "/home/user", at, codec.Zstd, false)
	snap.AddFile("a.txt", FileEntry{Hash: blob.HashBytes([]byte("a")), Size: 1, Mode: 0o644})

	if err := Save(repo, snap); err != nil {
		t.Fatal(err)
	}

	got, err := Load(repo, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != snap.ID || got.Target != "home" || len(got.Files) != 1 {
		t.Fatalf("loaded snapshot mismatch: %+v", got)
	}
	if got.Compression != codec.Zstd {
		t.Fatalf("compression kind not preserved: got %v", got.Compression)
	}
	if diff := cmp.Diff(snap.Files["a.txt"], got.Files["a.txt"]); diff != "" {
		t.Fatalf("FileEntry changed across a save/load round trip (-want +got):\n%s", diff)
	}
}

func TestGenerateIDFormat(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	id := GenerateID("home", at)
	if id != "20260102-150405-home" {
		t.Fatalf("GenerateID = %s, want 20260102-150405-home", id)
	}
}

func TestNewDisambiguatesCollidingID(t *testing.T) {
	repo := mustInit(t)
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)

	first := New(repo, "home", "/home/user", at, codec.Zstd, false)
	if err := Save(repo, first); err != nil {
		t.Fatal(err)
	}

	second := New(repo, "home", "/home/user", at, codec.Zstd, false)
	if second.ID == first.ID {
		t.Fatalf("second snapshot reused the first's ID: %s", second.ID)
	}
	if second.ID != first.ID+"-2" {
		t.Fatalf("second.ID = %s, want %s-2", second.ID, first.ID)
	}
}

func TestListSortsOldestFirst(t *testing.T) {
	repo := mustInit(t)
	older := New(repo, "home", "/home", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), codec.Zstd, false)
	newer := New(repo, "home", "/home", time.Date(2026, 1, 2, 0, 0, 0, 0, time.Local), codec.Zstd, false)
	if err := Save(repo, newer); err != nil {
		t.Fatal(err)
	}
	if err := Save(repo, older); err != nil {
		t.Fatal(err)
	}

	all, err := List(repo)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != older.ID || all[1].ID != newer.ID {
		t.Fatalf("List did not return oldest-first order: %v, %v", all[0].ID, all[1].ID)
	}
}

func TestFindExactAndPrefix(t *testing.T) {
	repo := mustInit(t)
	snap := New(repo, "home", "/home", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), codec.Zstd, false)
	if err := Save(repo, snap); err != nil {
		t.Fatal(err)
	}

	if got, err := Find(repo, snap.ID); err != nil || got.ID != snap.ID {
		t.Fatalf("Find(exact) = %v, %v", got, err)
	}
	if got, err := Find(repo, snap.ID[:8]); err != nil || got.ID != snap.ID {
		t.Fatalf("Find(prefix) = %v, %v", got, err)
	}
	if _, err := Find(repo, "nonexistent"); err == nil {
		t.Fatal("Find succeeded for a nonexistent ID")
	}
}

func TestFindAmbiguousPrefix(t *testing.T) {
	repo := mustInit(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	a := New(repo, "home", "/home", at, codec.Zstd, false)
	if err := Save(repo, a); err != nil {
		t.Fatal(err)
	}
	b := New(repo, "home", "/home", at, codec.Zstd, false) // forces a "-2" suffix, shares a's prefix
	if err := Save(repo, b); err != nil {
		t.Fatal(err)
	}

	if _, err := Find(repo, a.ID); err != nil {
		t.Fatalf("exact match on the shorter ID should still win: %v", err)
	}
	if _, err := Find(repo, a.ID[:len(a.ID)-1]); err == nil {
		t.Fatal("ambiguous prefix resolved without error")
	}
}

func TestDeleteSweepsUnreferencedBlobsOnly(t *testing.T) {
	repo := mustInit(t)
	shared := blob.HashBytes([]byte("shared"))
	onlyInOld := blob.HashBytes([]byte("only-in-old"))

	if err := blobstore.Store(repo, shared, []byte("shared-bytes")); err != nil {
		t.Fatal(err)
	}
	if err := blobstore.Store(repo, onlyInOld, []byte("stale-bytes")); err != nil {
		t.Fatal(err)
	}

	old := New(repo, "home", "/home", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), codec.Zstd, false)
	old.AddFile("shared.txt", FileEntry{Hash: shared, Size: 12})
	old.AddFile("gone.txt", FileEntry{Hash: onlyInOld, Size: 11})
	if err := Save(repo, old); err != nil {
		t.Fatal(err)
	}

	newer := New(repo, "home", "/home", time.Date(2026, 1, 2, 0, 0, 0, 0, time.Local), codec.Zstd, false)
	newer.AddFile("shared.txt", FileEntry{Hash: shared, Size: 12})
	if err := Save(repo, newer); err != nil {
		t.Fatal(err)
	}

	freed, err := Delete(repo, old.ID)
	if err != nil {
		t.Fatal(err)
	}
	if freed != 11 {
		t.Fatalf("freed = %d, want 11", freed)
	}
	if !blobstore.Exists(repo, shared) {
		t.Fatal("blob still referenced by a surviving snapshot was deleted")
	}
	if blobstore.Exists(repo, onlyInOld) {
		t.Fatal("orphaned blob was not swept")
	}
	if _, err := Load(repo, old.ID); err == nil {
		t.Fatal("deleted snapshot's manifest is still readable")
	}
}
