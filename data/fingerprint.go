/*
Copyright 2023 - 2026 Dima Krasner

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

package data

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// FingerprintKey returns a short, log-friendly fingerprint of a signing
// key's public half: "z" followed by the base58 encoding of the first 8
// bytes of the SHA-256 hash of its DER-encoded SubjectPublicKeyInfo.
//
// This mirrors the "z"-prefixed base58 (multibase) encoding commonly used
// for portable Ed25519 actor keys, generalized to any
// [crypto.Signer] so the same log format covers RSA signing keys too.
func FingerprintKey(key crypto.Signer) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key.Public())
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	hash := sha256.Sum256(der)
	return "z" + base58.Encode(hash[:8]), nil
}
