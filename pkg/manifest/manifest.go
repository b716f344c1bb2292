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

// Package manifest records and retrieves snapshots: the JSON documents
// that describe, file by file, what a single backup run captured. A
// snapshot never embeds file contents — only the hashes that locate them
// in the blob store — so deleting a snapshot is a blob garbage-collection
// sweep first and a manifest removal second.
package manifest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"but-next.dev/pkg/blob"
	"but-next.dev/pkg/blobstore"
	"but-next.dev/pkg/codec"
	"but-next.dev/pkg/repoerr"
)

// FileEntry is one captured file's record inside a snapshot: the
// plaintext hash that locates its blob, its plaintext and post-pipeline
// sizes (StoredSize is 0 for a deduplicated entry, since nothing new was
// written), its POSIX permission bits, its modification time, and
// whether storing it was skipped because the hash already existed.
type FileEntry struct {
	Hash         blob.Hash `json:"hash"`
	Size         int64     `json:"size"`
	StoredSize   int64     `json:"stored_size"`
	Mode         uint32    `json:"permissions"`
	ModifiedUnix int64     `json:"modified"`
	Deduplicated bool      `json:"deduplicated"`
}

// Stats summarizes a completed backup run. ModifiedFiles is reserved for
// a future change-detection mode and is always 0 in this version.
type Stats struct {
	TotalFiles        int   `json:"total_files"`
	NewFiles          int   `json:"new_files"`
	ModifiedFiles     int   `json:"modified_files"`
	UnchangedFiles    int   `json:"unchanged_files"`
	TotalSize         int64 `json:"total_size"`
	StoredSize        int64 `json:"stored_size"`
	DeduplicatedBlobs int   `json:"deduplicated_blobs"`
	DurationMS        int64 `json:"duration_ms"`
}

// Snapshot is one complete, point-in-time capture of a single backup
// target. It is the unit of restore, diff, and prune. Files is keyed by
// the source-relative path, using forward slashes regardless of host
// path conventions.
type Snapshot struct {
	ID          string               `json:"id"`
	Target      string               `json:"target_name"`
	SourcePath  string               `json:"source_path"`
	CreatedAt   time.Time            `json:"created_at"`
	Compression codec.Kind           `json:"-"`
	Encrypted   bool                 `json:"encrypted"`
	Files       map[string]FileEntry `json:"files"`
	Stats       Stats                `json:"stats"`
}

// snapshotWire is the on-disk JSON shape. Compression is serialized as
// its lowercase name rather than codec.Kind's int value so that a
// hand-edited or foreign-tool-written manifest stays readable and
// portable. encoding/json marshals map keys in sorted order, which gives
// the lexicographic-by-path ordering the format requires for free.
type snapshotWire struct {
	ID          string               `json:"id"`
	Target      string               `json:"target_name"`
	SourcePath  string               `json:"source_path"`
	CreatedAt   time.Time            `json:"created_at"`
	Compression string               `json:"compression"`
	Encrypted   bool                 `json:"encrypted"`
	Files       map[string]FileEntry `json:"files"`
	Stats       Stats                `json:"stats"`
}

// GenerateID builds a snapshot ID of the form YYYYMMDD-HHMMSS-<target>,
// in local time.
func GenerateID(target string, at time.Time) string {
	return fmt.Sprintf("%s-%s", at.Format("20060102-150405"), target)
}

// New starts a fresh snapshot for target, rooted at sourcePath. If id
// would collide with an existing manifest on disk, a "-N" disambiguator
// is appended (N starting at 2) until a free ID is found, rather than
// silently overwriting a prior snapshot of the same target taken in the
// same second.
func New(repoPath, target, sourcePath string, at time.Time, compression codec.Kind, encrypted bool) *Snapshot {
	id := GenerateID(target, at)
	for n := 2; exists(repoPath, id); n++ {
		id = fmt.Sprintf("%s-%d", GenerateID(target, at), n)
	}
	return &Snapshot{
		ID:          id,
		Target:      target,
		SourcePath:  sourcePath,
		CreatedAt:   at,
		Compression: compression,
		Encrypted:   encrypted,
		Files:       make(map[string]FileEntry),
	}
}

func exists(repoPath, id string) bool {
	_, err := os.Stat(pathFor(repoPath, id))
	return err == nil
}

// AddFile records path's capture in the snapshot.
func (s *Snapshot) AddFile(path string, f FileEntry) {
	if s.Files == nil {
		s.Files = make(map[string]FileEntry)
	}
	s.Files[path] = f
}

// SortedPaths returns the snapshot's file paths in lexicographic order,
// the iteration order the format guarantees.
func (s *Snapshot) SortedPaths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func pathFor(repoPath, id string) string {
	return filepath.Join(blobstore.SnapshotsPath(repoPath), id+".json")
}

// Path returns the manifest file's path within repoPath.
func (s *Snapshot) Path(repoPath string) string {
	return pathFor(repoPath, s.ID)
}

// toWire and fromWire cross the Kind/string boundary described on
// snapshotWire.
func (s *Snapshot) toWire() snapshotWire {
	return snapshotWire{
		ID:          s.ID,
		Target:      s.Target,
		SourcePath:  s.SourcePath,
		CreatedAt:   s.CreatedAt,
		Compression: s.Compression.String(),
		Encrypted:   s.Encrypted,
		Files:       s.Files,
		Stats:       s.Stats,
	}
}

func fromWire(w snapshotWire) (*Snapshot, error) {
	kind, ok := codec.ParseKind(w.Compression)
	if !ok {
		return nil, &repoerr.Corrupted{Message: fmt.Sprintf("unknown compression kind %q in snapshot %s", w.Compression, w.ID)}
	}
	return &Snapshot{
		ID:          w.ID,
		Target:      w.Target,
		SourcePath:  w.SourcePath,
		CreatedAt:   w.CreatedAt,
		Compression: kind,
		Encrypted:   w.Encrypted,
		Files:       w.Files,
		Stats:       w.Stats,
	}, nil
}

// Save pretty-prints the snapshot to <repo>/snapshots/<id>.json. It is
// called only after every blob the snapshot references has already been
// durably stored, so a process crash between a blob write and the
// manifest write never leaves a manifest pointing at a missing blob.
func Save(repoPath string, s *Snapshot) error {
	data, err := json.MarshalIndent(s.toWire(), "", "  ")
	if err != nil {
		return &repoerr.ManifestWrite{Err: err}
	}
	path := s.Path(repoPath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &repoerr.ManifestWrite{Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &repoerr.ManifestWrite{Err: err}
	}
	return nil
}

// Load reads and parses one snapshot manifest by its exact ID.
func Load(repoPath, id string) (*Snapshot, error) {
	data, err := os.ReadFile(pathFor(repoPath, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &repoerr.SnapshotNotFound{ID: id}
		}
		return nil, err
	}
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &repoerr.Corrupted{Message: fmt.Sprintf("snapshot %s: %v", id, err)}
	}
	return fromWire(w)
}

// List returns every snapshot in the repository, oldest first by
// CreatedAt. A manifest file that fails to parse is skipped and logged
// rather than aborting the whole listing — one corrupt snapshot should
// not hide the rest of the repository's history.
func List(repoPath string) ([]*Snapshot, error) {
	return list(repoPath, "")
}

// ListForTarget returns only the snapshots belonging to target, oldest
// first.
func ListForTarget(repoPath, target string) ([]*Snapshot, error) {
	return list(repoPath, target)
}

func list(repoPath, target string) ([]*Snapshot, error) {
	dir := blobstore.SnapshotsPath(repoPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &repoerr.NotInitialized{Path: repoPath}
		}
		return nil, err
	}

	var out []*Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		snap, err := Load(repoPath, id)
		if err != nil {
			log.Printf("manifest: skipping unreadable snapshot %s: %v", e.Name(), err)
			continue
		}
		if target != "" && snap.Target != target {
			continue
		}
		out = append(out, snap)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Find resolves an ID or unambiguous ID prefix to a single snapshot. An
// exact ID match always wins even if it also happens to prefix other IDs.
// Otherwise every snapshot whose ID starts with prefix is collected: zero
// matches is SnapshotNotFound, more than one is AmbiguousSnapshot.
func Find(repoPath, idOrPrefix string) (*Snapshot, error) {
	if snap, err := Load(repoPath, idOrPrefix); err == nil {
		return snap, nil
	}

	all, err := List(repoPath)
	if err != nil {
		return nil, err
	}

	var matches []*Snapshot
	for _, snap := range all {
		if strings.HasPrefix(snap.ID, idOrPrefix) {
			matches = append(matches, snap)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &repoerr.SnapshotNotFound{ID: idOrPrefix}
	case 1:
		return matches[0], nil
	default:
		return nil, &repoerr.AmbiguousSnapshot{Prefix: idOrPrefix, Matches: len(matches)}
	}
}

// Delete sweeps any blob the snapshot referenced that no other surviving
// snapshot — of any target — still references, and only then removes the
// snapshot's manifest file. Blobs go first: a crash between the sweep and
// the manifest removal leaves a manifest that points at missing blobs,
// which verify catches harmlessly. Removing the manifest first would risk
// the opposite failure — a crash before the sweep finishes permanently
// orphans blobs with no manifest left to account for them.
func Delete(repoPath, id string) (freedBytes uint64, err error) {
	target, err := Load(repoPath, id)
	if err != nil {
		return 0, err
	}

	all, err := List(repoPath)
	if err != nil {
		return 0, err
	}
	live := make(map[blob.Hash]bool)
	for _, snap := range all {
		if snap.ID == target.ID {
			continue
		}
		for _, f := range snap.Files {
			live[f.Hash] = true
		}
	}

	seen := make(map[blob.Hash]bool)
	for _, f := range target.Files {
		if seen[f.Hash] || live[f.Hash] {
			continue
		}
		seen[f.Hash] = true
		if size, err := blobstore.Size(repoPath, f.Hash); err == nil {
			freedBytes += uint64(size)
		}
		if err := blobstore.Remove(repoPath, f.Hash); err != nil {
			log.Printf("manifest: failed to remove orphaned blob %s: %v", f.Hash, err)
		}
	}

	path := pathFor(repoPath, id)
	if err := os.Remove(path); err != nil {
		return freedBytes, err
	}

	return freedBytes, nil
}
