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

// Package apqueue wires the activity signing, canonicalization and queue
// packages together into the single entry point an application calls to
// deliver an activity: [Deliver].
package apqueue

import "errors"

// ErrMissingPrivateKey is returned by [Deliver] when the given actor has no
// private key to sign outgoing requests with.
var ErrMissingPrivateKey = errors.New("actor has no private key")

// ErrInvalidPrivateKey is returned by [Deliver] when the actor's private
// key PEM fails to parse.
var ErrInvalidPrivateKey = errors.New("invalid private key")
