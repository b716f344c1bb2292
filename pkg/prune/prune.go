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

// Package prune retires old snapshots of a target, keeping only the most
// recent N, and reclaims the blobs that become unreferenced as a result.
package prune

import (
	"but-next.dev/pkg/blobstore"
	"but-next.dev/pkg/manifest"
)

// Result summarizes one Prune call.
type Result struct {
	Deleted    []string
	FreedBytes uint64
}

// Prune keeps the keep most recent snapshots of target and deletes the
// rest, oldest first. keep <= 0 is treated as "delete nothing" rather
// than "delete everything" — an empty keep count almost always means a
// caller forgot to set it, not that they want the whole target's history
// gone.
func Prune(repoPath, target string, keep int) (Result, error) {
	var res Result
	if keep <= 0 {
		return res, nil
	}

	snaps, err := manifest.ListForTarget(repoPath, target)
	if err != nil {
		return res, err
	}
	if len(snaps) <= keep {
		return res, nil
	}

	lock, err := blobstore.Lock(repoPath)
	if err != nil {
		return res, err
	}
	defer lock.Unlock()

	toDelete := snaps[:len(snaps)-keep]
	for _, snap := range toDelete {
		freed, err := manifest.Delete(repoPath, snap.ID)
		if err != nil {
			return res, err
		}
		res.Deleted = append(res.Deleted, snap.ID)
		res.FreedBytes += freed
	}
	return res, nil
}
