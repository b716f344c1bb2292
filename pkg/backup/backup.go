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

// Package backup walks a target directory, hashes and deduplicates its
// files against the blob store, and records the result as a snapshot
// manifest.
package backup

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"but-next.dev/pkg/blob"
	"but-next.dev/pkg/blobstore"
	"but-next.dev/pkg/cipher"
	"but-next.dev/pkg/codec"
	"but-next.dev/pkg/manifest"
	"but-next.dev/pkg/repoerr"
)

// Target describes one named backup source: a directory tree to walk and
// the exclude patterns (see excluded) that prune it.
type Target struct {
	Name    string
	Path    string
	Exclude []string
}

// Options controls how a single BackupTarget run stores its blobs.
type Options struct {
	Compression codec.Kind
	ZstdLevel   int
	Password    string // empty disables encryption
	Verbose     bool
}

// Engine runs backups against a single repository.
type Engine struct {
	RepoPath string
}

// New returns an Engine rooted at repoPath. The repository's snapshots/
// and blobs/ directories are created on first use if absent.
func New(repoPath string) *Engine {
	return &Engine{RepoPath: repoPath}
}

// BackupTarget walks target.Path, storing one deduplicated blob per
// distinct file content and recording every file (new or deduplicated)
// in a new snapshot, which is saved before BackupTarget returns
// successfully. A per-file failure aborts the whole target: no partial
// snapshot is ever committed.
func (e *Engine) BackupTarget(target Target, opts Options) (*manifest.Snapshot, error) {
	if _, err := os.Stat(target.Path); err != nil {
		return nil, &repoerr.SourceNotFound{Path: target.Path}
	}
	if err := blobstore.Init(e.RepoPath); err != nil {
		return nil, err
	}

	lock, err := blobstore.Lock(e.RepoPath)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	start := time.Now()
	snap := manifest.New(e.RepoPath, target.Name, target.Path, start, opts.Compression, opts.Password != "")

	err = filepath.WalkDir(target.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(target.Path, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if excluded(rel, target.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		slashPath := filepath.ToSlash(rel)
		entry, err := e.storeFile(path, opts)
		if err != nil {
			return err
		}
		snap.AddFile(slashPath, entry)
		snap.Stats.TotalFiles++
		snap.Stats.TotalSize += entry.Size
		if entry.Deduplicated {
			snap.Stats.UnchangedFiles++
			snap.Stats.DeduplicatedBlobs++
		} else {
			snap.Stats.NewFiles++
			snap.Stats.StoredSize += entry.StoredSize
		}
		if opts.Verbose {
			log.Printf("backup: %s %s", verb(entry.Deduplicated), slashPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if snap.Stats.TotalFiles == 0 {
		return nil, &repoerr.NothingChanged{Target: target.Name}
	}

	snap.Stats.DurationMS = time.Since(start).Milliseconds()
	if err := manifest.Save(e.RepoPath, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func verb(deduplicated bool) string {
	if deduplicated {
		return "dedup"
	}
	return "store"
}

// storeFile hashes the file at path, storing a new blob only if its hash
// isn't already present in the repository.
func (e *Engine) storeFile(path string, opts Options) (manifest.FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return manifest.FileEntry{}, err
	}

	h, err := blob.HashFile(path)
	if err != nil {
		return manifest.FileEntry{}, &repoerr.HashFailed{Path: path, Err: err}
	}

	entry := manifest.FileEntry{
		Hash:         h,
		Size:         info.Size(),
		Mode:         uint32(info.Mode().Perm()),
		ModifiedUnix: info.ModTime().Unix(),
	}

	if blobstore.Exists(e.RepoPath, h) {
		entry.Deduplicated = true
		return entry, nil
	}

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return manifest.FileEntry{}, err
	}

	compressed, err := codec.Compress(plaintext, opts.Compression, opts.ZstdLevel)
	if err != nil {
		return manifest.FileEntry{}, &repoerr.CompressionFailed{Path: path, Err: err}
	}

	payload := compressed
	if opts.Password != "" {
		payload, err = cipher.Encrypt(compressed, opts.Password)
		if err != nil {
			return manifest.FileEntry{}, err
		}
	}

	if err := blobstore.Store(e.RepoPath, h, payload); err != nil {
		return manifest.FileEntry{}, err
	}
	entry.StoredSize = int64(len(payload))
	return entry, nil
}
