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

// Package blobstore implements the content-addressed blob store: blobs
// live in a forest of sharded directories at the repository root, keyed
// by the hex hash of their plaintext content. The bytes on disk are the
// post-pipeline representation (compressed, then optionally encrypted);
// the hash is always of the plaintext.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"

	"but-next.dev/pkg/blob"
	"but-next.dev/pkg/repoerr"
)

// SnapshotsDir and BlobsDir are the two top-level subdirectories that make
// a directory a valid repository. lockFile is the advisory lock taken by
// mutating operations; see Lock.
const (
	SnapshotsDir = "snapshots"
	BlobsDir     = "blobs"
	lockFile     = "lock"
)

// lockPath returns the path to the repository's advisory lock file.
func lockPath(repoPath string) string {
	return filepath.Join(repoPath, lockFile)
}

// lockedErr reports that another process already holds the repository lock.
func lockedErr(repoPath string) error {
	return &repoerr.Locked{Path: repoPath}
}

// Init idempotently ensures the repository's snapshots/ and blobs/
// subdirectories exist.
func Init(repoPath string) error {
	for _, dir := range [...]string{SnapshotsDir, BlobsDir} {
		if err := os.MkdirAll(filepath.Join(repoPath, dir), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotsPath returns the snapshots/ directory under repoPath.
func SnapshotsPath(repoPath string) string {
	return filepath.Join(repoPath, SnapshotsDir)
}

// shardDir returns the two-level-absent, single-prefix shard directory
// for h: blobs/<first 2 hex chars>.
func shardDir(repoPath string, h blob.Hash) string {
	prefix, _ := h.Shard()
	return filepath.Join(repoPath, BlobsDir, prefix)
}

// Path returns the deterministic on-disk path for the blob at h:
// <repo>/blobs/<prefix2>/<suffix62>.
func Path(repoPath string, h blob.Hash) string {
	prefix, suffix := h.Shard()
	return filepath.Join(repoPath, BlobsDir, prefix, suffix)
}

// Exists is an O(1) filesystem probe for whether a blob is already
// present, the basis of the backup pipeline's dedup check.
func Exists(repoPath string, h blob.Hash) bool {
	_, err := os.Stat(Path(repoPath, h))
	return err == nil
}

// Store writes data under h, creating the shard directory on demand.
// Blobs are content-addressed and therefore immutable: writing the same
// hash twice is safe (and a no-op in effect) because dedup skips the call
// whenever Exists already reports true, but Store itself does not refuse
// a write to an existing path — the bytes at a given hash are defined to
// never legitimately differ.
func Store(repoPath string, h blob.Hash, data []byte) error {
	dir := shardDir(repoPath, h)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := Path(repoPath, h)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Read returns the raw (still compressed and possibly encrypted) bytes
// stored at h.
func Read(repoPath string, h blob.Hash) ([]byte, error) {
	data, err := os.ReadFile(Path(repoPath, h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blobstore: blob %s not found: %w", h, err)
		}
		return nil, err
	}
	return data, nil
}

// Remove deletes the blob at h. It is not an error for the blob to
// already be gone.
func Remove(repoPath string, h blob.Hash) error {
	err := os.Remove(Path(repoPath, h))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Size returns the on-disk size in bytes of the blob at h.
func Size(repoPath string, h blob.Hash) (int64, error) {
	fi, err := os.Stat(Path(repoPath, h))
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
