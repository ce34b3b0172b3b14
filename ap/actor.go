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

package ap

type ActorType string

const (
	Person      ActorType = "Person"
	Group       ActorType = "Group"
	Application ActorType = "Application"
	Service     ActorType = "Service"
)

// Actor represents the sending identity of an outbound activity.
//
// Unlike a fully resolved ActivityPub actor document, Actor only carries
// what the delivery queue needs: an ID to sign requests as (also used as
// the Signature header's keyId), a public key ID (PublicKeyID, which the
// delivery path does not read), and the PEM-encoded private key material
// used to sign. It deliberately does not model inbound actor documents
// (public key verification, followers collections, avatars, ...) -- those
// belong to the inbound receiver, which is out of scope here.
type Actor struct {
	ID                string    `json:"id"`
	Type              ActorType `json:"type"`
	PreferredUsername string    `json:"preferredUsername"`
	Inbox             string    `json:"inbox"`
	Followers         string    `json:"followers,omitempty"`
	PublicKeyID       string    `json:"publicKeyId,omitempty"`

	// PrivateKeyPEMValue holds the actor's PEM-encoded signing key, if any.
	// Never serialized: actor documents published to the wire never
	// include private key material.
	PrivateKeyPEMValue string `json:"-"`
}

// ActorID returns the actor's identifying URL.
func (a *Actor) ActorID() string {
	return a.ID
}

// PrivateKeyPEM returns the actor's PEM-encoded private key, if the actor
// has one configured for signing outgoing requests.
func (a *Actor) PrivateKeyPEM() (string, bool) {
	if a.PrivateKeyPEMValue == "" {
		return "", false
	}

	return a.PrivateKeyPEMValue, true
}
