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

package backup

import (
	"path/filepath"
	"strings"
)

// excluded reports whether relPath — a target-relative path using the OS
// separator — should be skipped. Three primitive forms are supported,
// deliberately short of general glob syntax:
//
//	"*suffix" matches when the whole relative path ends in suffix
//	"prefix*" matches when the whole relative path starts with prefix
//	"name"    matches when any single path component equals name exactly
//	          (a trailing "/" on name is ignored, so "node_modules/" works)
//
// The suffix/prefix rules apply to the full relative path, not to
// individual components, so "*.tmp" excludes "a/b/c.tmp" but "*foo" does
// not exclude "foo/bar.txt". Only the exact-match rule is evaluated
// per component, which is what lets a pattern like "node_modules" prune
// an entire subtree rather than only a file named exactly that.
func excluded(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	relStr := filepath.ToSlash(relPath)
	for _, pat := range patterns {
		switch {
		case strings.HasPrefix(pat, "*"):
			if strings.HasSuffix(relStr, pat[1:]) {
				return true
			}
		case strings.HasSuffix(pat, "*"):
			if strings.HasPrefix(relStr, pat[:len(pat)-1]) {
				return true
			}
		default:
			name := strings.TrimRight(pat, "/")
			for _, part := range strings.Split(relStr, "/") {
				if part == name {
					return true
				}
			}
		}
	}
	return false
}
