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
	"context"
	"crypto"
	"log/slog"
	"net/http"

	"github.com/dimkr/apqueue/cfg"
	"github.com/dimkr/apqueue/data"
)

// worker consumes tasks from a single channel until it's closed and
// drained, driving each one through Retry. It never panics on a delivery
// failure: every outcome, success or exhaustion, is folded into stats and
// logged.
func worker(ctx context.Context, tasks <-chan SendTask, client *http.Client, stats *Stats, config *cfg.Config, sign Signer) {
	for task := range tasks {
		stats.Pending.Add(-1)
		stats.Running.Add(1)

		keyFingerprint := fingerprintSigningKey(task.SigningKey)

		_, err := Retry(ctx, func() (deliveryOutcome, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
			defer cancel()
			return signAndSend(attemptCtx, client, sign, task, config.ContentType, config.MaxResponseBodySize)
		}, config.RetryPolicy)

		stats.Running.Add(-1)

		if err != nil {
			stats.DeadLastHour.Add(1)
			slog.Warn("delivery exhausted its retries", "task", task, "key", keyFingerprint, "error", err)
		} else {
			stats.CompletedLastHour.Add(1)
			slog.Debug("delivery finished", "task", task, "key", keyFingerprint)
		}
	}
}

// fingerprintSigningKey renders task.SigningKey through [data.FingerprintKey]
// for log lines, so a recurring dead peer can be traced back to which
// actor key signed the rejected requests without printing the key itself.
// An empty string means the key couldn't be fingerprinted (wrong type, or
// marshaling failed); the log line still carries the field, just empty.
func fingerprintSigningKey(key any) string {
	signer, ok := key.(crypto.Signer)
	if !ok {
		return ""
	}

	fingerprint, err := data.FingerprintKey(signer)
	if err != nil {
		return ""
	}

	return fingerprint
}
