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
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrInvalidPrivateKey is returned by [ParsePrivateKey] when the supplied
// text is not a PEM block, or the block does not hold a private key in a
// format this package understands.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// ParsePrivateKey parses a PEM-encoded private key, as stored alongside an
// actor for signing outgoing requests. Keys are normally generated and
// stored in PKCS#8 form; PKCS#1 is accepted too for keys minted by older
// tooling (OpenSSL before 3.0 emits PKCS#1 RSA keys by default).
func ParsePrivateKey(pemString string) (any, error) {
	block, _ := pem.Decode([]byte(pemString))
	if block == nil {
		return nil, ErrInvalidPrivateKey
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	return nil, fmt.Errorf("%w: unrecognized key format", ErrInvalidPrivateKey)
}
