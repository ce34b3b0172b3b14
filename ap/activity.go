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

import "log/slog"

type ActivityType string

const (
	Create   ActivityType = "Create"
	Follow   ActivityType = "Follow"
	Accept   ActivityType = "Accept"
	Undo     ActivityType = "Undo"
	Delete   ActivityType = "Delete"
	Announce ActivityType = "Announce"
	Update   ActivityType = "Update"
	Like     ActivityType = "Like"
	Dislike  ActivityType = "Dislike"
	Move     ActivityType = "Move"
)

// Public is the special audience member representing the public collection.
const Public = "https://www.w3.org/ns/activitystreams#Public"

// Activity represents an ActivityPub activity queued for outbound delivery.
//
// Object is left untyped: the queue never interprets it, it only needs the
// envelope fields (ID, Actor, To, CC) to pick recipients and build log
// lines, and ships Object to the wire exactly as the caller provided it.
type Activity struct {
	Context   any          `json:"@context,omitempty"`
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Actor     string       `json:"actor"`
	Object    any          `json:"object"`
	Target    string       `json:"target,omitempty"`
	To        Audience     `json:"to,omitzero"`
	CC        Audience     `json:"cc,omitzero"`
	Published *Time        `json:"published,omitempty"`
}

func (a *Activity) IsPublic() bool {
	return a.To.Contains(Public) || a.CC.Contains(Public)
}

// LogValue lets an [*Activity] be passed directly to a [slog.Logger] call
// without forcing every call site to pick apart which fields matter.
func (a *Activity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("type", string(a.Type)),
		slog.String("actor", a.Actor),
	)
}
