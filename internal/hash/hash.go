// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hash implements jbundle's content-addressing primitive: a stable
// 16-hex-digit identifier derived from the first 8 bytes of SHA-256 of a
// file's contents.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// ContentHash hashes path and returns the 16-lowercase-hex-char prefix of
// its SHA-256. It is a cache-identity token only, not a security primitive.
func ContentHash(path string) (string, error) {
	full, err := FullSHA256(path)
	if err != nil {
		return "", err
	}
	return full[:16], nil
}

// FullSHA256 returns the full 64-hex-char SHA-256 digest of path's contents.
func FullSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
