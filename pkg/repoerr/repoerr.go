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

// Package repoerr defines the structured error taxonomy for the backup
// and restore pipelines: errors that carry enough context (a path, a
// hash) for a caller to act on without parsing a message string.
package repoerr

import "fmt"

// SourceNotFound is returned when a backup target's source directory does
// not exist.
type SourceNotFound struct {
	Path string
}

func (e *SourceNotFound) Error() string {
	return fmt.Sprintf("source directory does not exist: %s", e.Path)
}

// HashFailed wraps an I/O failure encountered while hashing a file.
type HashFailed struct {
	Path string
	Err  error
}

func (e *HashFailed) Error() string {
	return fmt.Sprintf("failed to hash %s: %v", e.Path, e.Err)
}

func (e *HashFailed) Unwrap() error { return e.Err }

// CompressionFailed wraps a failure in the compress/decompress pipeline
// for a single file.
type CompressionFailed struct {
	Path string
	Err  error
}

func (e *CompressionFailed) Error() string {
	return fmt.Sprintf("compression failed for %s: %v", e.Path, e.Err)
}

func (e *CompressionFailed) Unwrap() error { return e.Err }

// ManifestWrite wraps a failure writing a snapshot manifest to disk.
type ManifestWrite struct {
	Err error
}

func (e *ManifestWrite) Error() string {
	return fmt.Sprintf("failed to write manifest: %v", e.Err)
}

func (e *ManifestWrite) Unwrap() error { return e.Err }

// SnapshotNotFound is returned when no snapshot matches a requested ID or
// prefix.
type SnapshotNotFound struct {
	ID string
}

func (e *SnapshotNotFound) Error() string {
	return fmt.Sprintf("snapshot not found: %s", e.ID)
}

// AmbiguousSnapshot is returned when a snapshot ID prefix matches more than
// one stored snapshot.
type AmbiguousSnapshot struct {
	Prefix  string
	Matches int
}

func (e *AmbiguousSnapshot) Error() string {
	return fmt.Sprintf("ambiguous snapshot prefix %q: matched %d snapshots", e.Prefix, e.Matches)
}

// BlobMissing is returned when a snapshot references a hash that has no
// corresponding blob in the store.
type BlobMissing struct {
	Hash string
}

func (e *BlobMissing) Error() string {
	return fmt.Sprintf("blob missing from repository: %s", e.Hash)
}

// IntegrityFailure is returned when a restored file's recomputed hash does
// not match the hash recorded in its manifest entry.
type IntegrityFailure struct {
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityFailure) Error() string {
	return fmt.Sprintf("integrity check failed for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// TargetExists is returned when a restore target directory already
// contains files and force was not requested.
type TargetExists struct {
	Path string
}

func (e *TargetExists) Error() string {
	return fmt.Sprintf("target directory already exists and is non-empty: %s", e.Path)
}

// DecompressionFailed wraps a failure decoding a blob under its recorded
// compression kind.
type DecompressionFailed struct {
	Err error
}

func (e *DecompressionFailed) Error() string {
	return fmt.Sprintf("decompression failed: %v", e.Err)
}

func (e *DecompressionFailed) Unwrap() error { return e.Err }

// NotInitialized is returned when an operation expects an initialized
// repository layout that isn't there.
type NotInitialized struct {
	Path string
}

func (e *NotInitialized) Error() string {
	return fmt.Sprintf("repository not initialized at %s", e.Path)
}

// Corrupted is returned when repository state fails a structural check.
type Corrupted struct {
	Message string
}

func (e *Corrupted) Error() string {
	return fmt.Sprintf("corrupted repository: %s", e.Message)
}

// Locked is returned when a mutating operation cannot acquire the
// repository's advisory lock.
type Locked struct {
	Path string
}

func (e *Locked) Error() string {
	return fmt.Sprintf("repository is locked (another instance may be running): %s", e.Path)
}

// DecryptionFailed covers both tampered ciphertext and a wrong password;
// the two are indistinguishable by design.
type DecryptionFailed struct{}

func (e *DecryptionFailed) Error() string {
	return "decryption failed: authentication tag mismatch (corrupted data or wrong password)"
}

// InvalidKeyLength is returned when a derived key isn't the size AES-256
// requires. Only reachable if key derivation is misconfigured.
type InvalidKeyLength struct{}

func (e *InvalidKeyLength) Error() string {
	return "invalid key length for AES-256-GCM"
}

// PasswordRequired is returned when decrypting an encrypted snapshot
// without a password.
type PasswordRequired struct{}

func (e *PasswordRequired) Error() string {
	return "snapshot is encrypted but no password was provided"
}

// AlreadyExists is returned when an operation that creates a new
// repository artifact — a config file, an initialized repository layout —
// finds one already there.
type AlreadyExists struct {
	Path string
}

func (e *AlreadyExists) Error() string {
	return fmt.Sprintf("already exists: %s", e.Path)
}

// NothingChanged is returned when a backup target contains no files to
// record after exclusions are applied, so there is nothing a new
// snapshot would usefully capture.
type NothingChanged struct {
	Target string
}

func (e *NothingChanged) Error() string {
	return fmt.Sprintf("nothing to back up for target %q: no files found after exclusions", e.Target)
}

// KeyDerivation wraps a failure deriving an encryption key from a
// password. BLAKE3's derive-key function as used by pkg/cipher cannot
// itself fail, so this is only reachable if a future key-derivation
// backend replaces it with one that can.
type KeyDerivation struct {
	Err error
}

func (e *KeyDerivation) Error() string {
	return fmt.Sprintf("key derivation failed: %v", e.Err)
}

func (e *KeyDerivation) Unwrap() error { return e.Err }
