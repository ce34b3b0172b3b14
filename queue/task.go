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

package queue

import (
	"log/slog"

	"github.com/oklog/ulid/v2"
)

// SendTask is an immutable, cheaply-copyable description of one delivery:
// one activity signed and POSTed to one inbox. A SendTask is constructed by
// the Deliver adapter, travels by value through exactly one worker channel,
// and is dropped once its outcome has been folded into Stats.
type SendTask struct {
	// ID is a monotonic, lexicographically sortable trace id, distinct
	// from ActivityID: it identifies this particular delivery attempt
	// set (one SendTask, possibly several HTTP attempts), not the
	// activity document itself.
	ID ulid.ULID

	// ActorID is the absolute URL identifying the sending actor.
	ActorID string

	// ActivityID is the absolute URL identifying the activity, used only
	// for logging and tracing; it plays no role in delivery itself.
	ActivityID string

	// Inbox is the absolute URL of the remote HTTP endpoint to POST to.
	Inbox string

	// Body is the canonicalized, serialized JSON activity document.
	// Go slices already share their backing array cheaply across
	// copies of SendTask, satisfying the "reference-counted buffer"
	// requirement without an explicit wrapper type.
	Body []byte

	// SigningKey is a parsed asymmetric private key handle, reused
	// across every signing attempt for this task.
	SigningKey any

	// CompatMode toggles a signature-construction compatibility mode
	// forwarded as-is to the signer.
	CompatMode bool
}

// LogValue lets a SendTask be passed directly to a [slog.Logger] call.
func (t SendTask) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", t.ID.String()),
		slog.String("activity", t.ActivityID),
		slog.String("actor", t.ActorID),
		slog.String("inbox", t.Inbox),
	)
}
