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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gowebpki/jcs"
	"golang.org/x/net/http/httpguts"

	"github.com/dimkr/apqueue/httpsig"
)

// Signer augments a prepared HTTP request with signature headers. It is
// the external collaborator spec.md §4.4 leaves abstract; [httpsig.Sign]
// is the concrete binding used in production.
type Signer func(r *http.Request, key httpsig.Key, now time.Time) error

// deliveryOutcome records how a single HTTP attempt was classified, for
// logging only: every outcome but outcomeTransient is folded into a nil
// error and therefore never triggers a retry.
type deliveryOutcome int

const (
	outcomeSuccess deliveryOutcome = iota
	outcomeRejected
	outcomeAborted
	outcomeTransient
)

func (o deliveryOutcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeRejected:
		return "rejected"
	case outcomeAborted:
		return "aborted"
	case outcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// CanonicalBody canonicalizes a serialized JSON activity per RFC 8785 (JSON
// Canonicalization Scheme), so that retries of a semantically identical
// activity sign byte-identical bodies.
func CanonicalBody(body []byte) ([]byte, error) {
	canonical, err := jcs.Transform(body)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize body: %w", err)
	}

	return canonical, nil
}

// signAndSend builds a signed POST request for task, executes it through
// client with timeout, and classifies the response per the table in
// spec.md §4.4:
//
//   - 2xx: success, no retry.
//   - 4xx: authoritative peer rejection, no retry, counted as completed.
//   - 5xx or other non-2xx: transient failure, retry.
//   - transport/IO error: terminal, no retry, counted as completed.
//
// The request is rebuilt and re-signed on every call, so retries always
// carry a fresh Date header rather than replaying a stale signature.
func signAndSend(ctx context.Context, client *http.Client, sign Signer, task SendTask, contentType string, maxResponseBodySize int64) (deliveryOutcome, error) {
	req, err := buildRequest(ctx, task, contentType)
	if err != nil {
		slog.Warn("delivery aborted", "task", task, "error", err)
		return outcomeAborted, nil
	}

	key := httpsig.Key{ID: task.ActorID, PrivateKey: task.SigningKey, Compat: task.CompatMode}
	if err := sign(req, key, time.Now()); err != nil {
		slog.Warn("failed to sign request", "task", task, "error", err)
		return outcomeAborted, nil
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("delivery aborted", "task", task, "error", err)
		return outcomeAborted, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return outcomeSuccess, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		slog.Info("peer rejected activity", "task", task, "status", resp.StatusCode, "body", string(body))
		return outcomeRejected, nil
	}

	return outcomeTransient, fmt.Errorf("delivery to %s failed with status %d: %s", task.Inbox, resp.StatusCode, body)
}

// buildRequest assembles the POST request for task per the wire surface in
// spec.md §6.2: Content-Type, a Host header carrying an explicit port if
// present in the inbox URL, and Date is set by the signer itself as part
// of the signed header set.
func buildRequest(ctx context.Context, task SendTask, contentType string) (*http.Request, error) {
	u, err := url.Parse(task.Inbox)
	if err != nil {
		return nil, fmt.Errorf("invalid inbox URL %q: %w", task.Inbox, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, task.Inbox, bytes.NewReader(task.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request to %s: %w", task.Inbox, err)
	}

	req.Header.Set("Content-Type", contentType)

	if httpguts.ValidHeaderFieldValue(u.Host) {
		req.Host = u.Host
	}

	return req, nil
}

