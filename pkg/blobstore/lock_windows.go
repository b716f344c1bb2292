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

//go:build windows

package blobstore

import (
	"os"

	"golang.org/x/sys/windows"
)

// RepoLock is an exclusive advisory lock held on the repository's lock
// file for the duration of a mutating operation (backup, prune).
type RepoLock struct {
	f *os.File
}

// Lock opens (creating if necessary) <repoPath>/lock and takes a
// non-blocking exclusive byte-range lock on it, via LockFileEx.
func Lock(repoPath string) (*RepoLock, error) {
	f, err := os.OpenFile(lockPath(repoPath), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	ol := new(windows.Overlapped)
	err = windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, ol)
	if err != nil {
		f.Close()
		return nil, lockedErr(repoPath)
	}
	return &RepoLock{f: f}, nil
}

// Unlock releases the lock and closes the underlying file.
func (l *RepoLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	ol := new(windows.Overlapped)
	_ = windows.UnlockFileEx(windows.Handle(l.f.Fd()), 0, 1, 0, ol)
	return l.f.Close()
}
