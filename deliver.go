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

package apqueue

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"

	"github.com/dimkr/apqueue/ap"
	"github.com/dimkr/apqueue/cfg"
	"github.com/dimkr/apqueue/data"
	"github.com/dimkr/apqueue/logcontext"
	"github.com/dimkr/apqueue/queue"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// SigningActor is the sending identity an activity is delivered on behalf
// of: it exposes the actor's URL and, if configured to sign outgoing
// requests, its PEM-encoded private key. [*ap.Actor] satisfies this.
type SigningActor interface {
	ActorID() string
	PrivateKeyPEM() (string, bool)
}

// Deliver serializes activity once, resolves actor's signing key, filters
// and deduplicates inboxes, and submits one [queue.SendTask] per surviving
// inbox to q. It implements the five-step contract of spec.md §4.1.
//
// Delivery outcomes (success, peer rejection, exhausted retries) are never
// propagated back through Deliver: once a task is accepted by q, its fate
// is observable only through q.Stats and logs. The only errors Deliver
// itself returns are pre-enqueue: a failure to serialize or canonicalize
// activity, a missing or invalid signing key, or a failure to submit (e.g.
// the queue has been shut down).
func Deliver(ctx context.Context, q *queue.ActivityQueue, activity *ap.Activity, actor SigningActor, inboxes []string, config cfg.Config) error {
	ctx = logcontext.Add(ctx, "activity", activity.ID, "actor", actor.ActorID())

	body, err := jsonAPI.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to serialize activity %s: %w", activity.ID, err)
	}

	canonical, err := queue.CanonicalBody(body)
	if err != nil {
		return fmt.Errorf("failed to canonicalize activity %s: %w", activity.ID, err)
	}

	pemKey, ok := actor.PrivateKeyPEM()
	if !ok {
		return fmt.Errorf("%s: %w", actor.ActorID(), ErrMissingPrivateKey)
	}

	key, err := data.ParsePrivateKey(pemKey)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", actor.ActorID(), ErrInvalidPrivateKey, err)
	}

	seen := make(data.OrderedMap[string, struct{}], len(inboxes))
	for _, inbox := range inboxes {
		seen.Store(inbox, struct{}{})
	}

	for _, inbox := range seen.Keys() {
		if config.IsLocalURL(inbox) {
			continue
		}

		if err := config.VerifyURLValid(ctx, inbox); err != nil {
			slog.DebugContext(ctx, "skipping invalid inbox", "inbox", inbox, "error", err)
			continue
		}

		task := queue.SendTask{
			ID:         ulid.Make(),
			ActorID:    actor.ActorID(),
			ActivityID: activity.ID,
			Inbox:      inbox,
			Body:       canonical,
			SigningKey: key,
			CompatMode: config.HTTPSignatureCompat,
		}

		if err := q.Submit(task); err != nil {
			return fmt.Errorf("failed to submit delivery to %s: %w", inbox, err)
		}

		snap := q.Stats().Snapshot()
		if snap.Running == int64(config.WorkerCount) {
			slog.WarnContext(ctx, "queue saturated", "inbox", inbox, "stats", snap)
		} else {
			slog.InfoContext(ctx, "queued delivery", "inbox", inbox, "stats", snap)
		}
	}

	return nil
}
