/*
Copyright 2024, 2025 Dima Krasner

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

package httpsig

// Key identifies the signing key an outgoing request is signed with.
//
// ID is the full key ID URL put in the Signature header's keyId parameter
// (e.g. an actor URL with a "#main-key" fragment). PrivateKey holds the
// parsed private key itself, as returned by [data.ParsePrivateKey]; only
// *rsa.PrivateKey is currently accepted by [Sign].
//
// Compat switches Sign to the legacy four-component header set some older
// federated servers still require, dropping "content-type" from the
// signed headers: a handful of pre-Mastodon-3 deployments reject a
// signature that covers a header they don't verify, so compat mode signs
// only what they actually check.
type Key struct {
	ID         string
	PrivateKey any
	Compat     bool
}
