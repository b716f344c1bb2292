/*
Copyright 2013 Google Inc.

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

// Package cipher provides authenticated encryption for blobs at rest,
// using AES-256-GCM with a key derived deterministically from a
// user-supplied password.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"but-next.dev/pkg/repoerr"
	"lukechampine.com/blake3"
)

// keyContext is the fixed BLAKE3 derive-key domain-separation string.
// It must never change: repositories created by any conforming
// implementation key their blobs against this exact context, so altering
// it would silently make every existing encrypted repository unreadable.
const keyContext = "but-next v1 encryption key"

// nonceSize is the standard 96-bit GCM nonce length.
const nonceSize = 12

// deriveKey turns a password into a deterministic 256-bit AES key, keyed
// on keyContext so the same password yields different keys in different
// applications.
func deriveKey(password string) [32]byte {
	var key [32]byte
	blake3.DeriveKey(key[:], keyContext, []byte(password))
	return key
}

func newGCM(password string) (cipher.AEAD, error) {
	key := deriveKey(password)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, &repoerr.InvalidKeyLength{}
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a key derived from password, prepending a
// fresh random 96-bit nonce to the returned ciphertext: nonce ‖ ciphertext
// ‖ tag. Every call uses a new nonce, so two calls on identical input
// produce different output.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	gcm, err := newGCM(password)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := gcm.Seal(nonce, nonce, plaintext, nil)
	return out, nil
}

// Decrypt reverses Encrypt. Wrong password and corrupted ciphertext are
// indistinguishable and both report DecryptionFailed, matching the
// authenticated-encryption guarantee that a tag mismatch carries no
// further information.
func Decrypt(data []byte, password string) ([]byte, error) {
	if len(data) < nonceSize {
		return nil, &repoerr.DecryptionFailed{}
	}

	gcm, err := newGCM(password)
	if err != nil {
		return nil, err
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &repoerr.DecryptionFailed{}
	}
	return plaintext, nil
}
