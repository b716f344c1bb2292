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

package prune

import (
	"testing"
	"time"

	"but-next.dev/pkg/blobstore"
	"but-next.dev/pkg/codec"
	"but-next.dev/pkg/manifest"
)

func makeSnapshot(t *testing.T, repo string, day int) *manifest.Snapshot {
	t.Helper()
	at := time.Date(2026, 1, day, 0, 0, 0, 0, time.Local)
	snap := manifest.New(repo, "home", "/home", at, codec.Zstd, false)
	if err := manifest.Save(repo, snap); err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestPruneKeepsMostRecent(t *testing.T) {
	repo := t.TempDir()
	if err := blobstore.Init(repo); err != nil {
		t.Fatal(err)
	}

	var snaps []*manifest.Snapshot
	for day := 1; day <= 5; day++ {
		snaps = append(snaps, makeSnapshot(t, repo, day))
	}

	res, err := Prune(repo, "home", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Deleted) != 3 {
		t.Fatalf("Deleted = %v, want 3 entries", res.Deleted)
	}

	remaining, err := manifest.ListForTarget(repo, "home")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d, want 2", len(remaining))
	}
	if remaining[0].ID != snaps[3].ID || remaining[1].ID != snaps[4].ID {
		t.Fatalf("Prune kept the wrong snapshots: %s, %s", remaining[0].ID, remaining[1].ID)
	}
}

func TestPruneNoopWhenUnderLimit(t *testing.T) {
	repo := t.TempDir()
	if err := blobstore.Init(repo); err != nil {
		t.Fatal(err)
	}
	makeSnapshot(t, repo, 1)

	res, err := Prune(repo, "home", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Deleted) != 0 {
		t.Fatalf("Deleted = %v, want none", res.Deleted)
	}
}

func TestPruneZeroKeepIsNoop(t *testing.T) {
	repo := t.TempDir()
	if err := blobstore.Init(repo); err != nil {
		t.Fatal(err)
	}
	makeSnapshot(t, repo, 1)

	res, err := Prune(repo, "home", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Deleted) != 0 {
		t.Fatalf("keep=0 deleted snapshots: %v", res.Deleted)
	}
}
