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

package diff

import (
	"testing"

	"but-next.dev/pkg/blob"
	"but-next.dev/pkg/manifest"
)

func snap(files map[string]manifest.FileEntry) *manifest.Snapshot {
	return &manifest.Snapshot{Files: files}
}

func TestDiffAddedModifiedRemoved(t *testing.T) {
	unchangedHash := blob.HashBytes([]byte("unchanged"))
	oldHash := blob.HashBytes([]byte("old content"))
	newHash := blob.HashBytes([]byte("new content"))

	older := snap(map[string]manifest.FileEntry{
		"unchanged.txt": {Hash: unchangedHash, Size: 9},
		"modified.txt":  {Hash: oldHash, Size: 11},
		"removed.txt":   {Hash: oldHash, Size: 11},
	})
	newer := snap(map[string]manifest.FileEntry{
		"unchanged.txt": {Hash: unchangedHash, Size: 9},
		"modified.txt":  {Hash: newHash, Size: 11},
		"added.txt":     {Hash: newHash, Size: 11},
	})

	res := Diff(older, newer)

	if len(res.Added) != 1 || res.Added[0].Path != "added.txt" {
		t.Fatalf("Added = %v", res.Added)
	}
	if len(res.Modified) != 1 || res.Modified[0].Path != "modified.txt" {
		t.Fatalf("Modified = %v", res.Modified)
	}
	if len(res.Removed) != 1 || res.Removed[0].Path != "removed.txt" {
		t.Fatalf("Removed = %v", res.Removed)
	}
	if res.AddedSize != 11 {
		t.Fatalf("AddedSize = %d, want 11", res.AddedSize)
	}
	if res.RemovedSize != 11 {
		t.Fatalf("RemovedSize = %d, want 11", res.RemovedSize)
	}
}

// TestDiffModifiedSizeDeltaIsSignedAndSeparateFromAdded is a regression
// test: a modified file that shrank must surface as a negative
// ModifiedSizeDelta, not cancel against AddedSize.
func TestDiffModifiedSizeDeltaIsSignedAndSeparateFromAdded(t *testing.T) {
	oldHash := blob.HashBytes([]byte("this content is long"))
	newHash := blob.HashBytes([]byte("short"))
	newAddedHash := blob.HashBytes([]byte("brand new"))

	older := snap(map[string]manifest.FileEntry{
		"shrunk.txt": {Hash: oldHash, Size: 100},
	})
	newer := snap(map[string]manifest.FileEntry{
		"shrunk.txt": {Hash: newHash, Size: 5},
		"added.txt":  {Hash: newAddedHash, Size: 9},
	})

	res := Diff(older, newer)

	if res.ModifiedSizeDelta != -95 {
		t.Fatalf("ModifiedSizeDelta = %d, want -95", res.ModifiedSizeDelta)
	}
	if res.AddedSize != 9 {
		t.Fatalf("AddedSize = %d, want 9 (unaffected by the shrinking modified file)", res.AddedSize)
	}
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	h := blob.HashBytes([]byte("x"))
	s := snap(map[string]manifest.FileEntry{"a.txt": {Hash: h, Size: 1}})
	res := Diff(s, s)
	if len(res.Added)+len(res.Modified)+len(res.Removed) != 0 {
		t.Fatalf("diffing a snapshot against itself produced changes: %+v", res)
	}
}
